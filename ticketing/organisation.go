package ticketing

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/internal/keys"
	"github.com/jacentio/marquee/store"
)

// Organisation is a tenant. Its key is derived from the slugified name, so
// renaming an organisation means creating a new one.
type Organisation struct {
	Name      string
	Email     string
	CreatedAt time.Time

	version int64
}

type organisationRow struct {
	Name      string `dynamodbav:"name"`
	Email     string `dynamodbav:"email,omitempty"`
	CreatedAt string `dynamodbav:"created_at,omitempty"`
}

// Slug returns the organisation's canonical identity token.
func (o *Organisation) Slug() string {
	return keys.Slugify(o.Name)
}

func (o *Organisation) EntityType() string { return "ORGANISATION" }

func (o *Organisation) EntityKey() store.Key {
	pk := "ORG#" + o.Slug()
	return store.Key{PK: pk, SK: pk}
}

func (o *Organisation) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(organisationRow{
		Name:      o.Name,
		Email:     o.Email,
		CreatedAt: formatOptionalTime(o.CreatedAt),
	})
}

func (o *Organisation) Version() int64     { return o.version }
func (o *Organisation) SetVersion(v int64) { o.version = v }

func (o *Organisation) Hydrate(rec store.Record) error {
	var row organisationRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	o.Name = row.Name
	o.Email = row.Email
	if err := parseOptionalTime(row.CreatedAt, &o.CreatedAt); err != nil {
		return err
	}
	o.version = versionOf(rec)
	return nil
}

// formatOptionalTime serializes a timestamp, leaving the zero value empty
// so omitempty drops the attribute.
func formatOptionalTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return store.FormatTime(t)
}

// parseOptionalTime fills dst from a stored timestamp, accepting absence.
func parseOptionalTime(s string, dst *time.Time) error {
	if s == "" {
		*dst = time.Time{}
		return nil
	}
	t, err := store.ParseTime(s)
	if err != nil {
		return err
	}
	*dst = t
	return nil
}

// versionOf reads the stored version attribute, defaulting to zero.
func versionOf(rec store.Record) int64 {
	var row struct {
		Version int64 `dynamodbav:"version"`
	}
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return 0
	}
	return row.Version
}
