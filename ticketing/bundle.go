package ticketing

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/store"
)

// Bundle groups several items under one price. The member items stay
// independent rows; the bundle only carries their identifiers.
type Bundle struct {
	ID           string
	EventID      string
	Name         string
	Description  string
	Status       Status
	PrimaryPrice float64
	ItemIDs      []string
	CreatedAt    time.Time

	version int64
}

type bundleRow struct {
	ID           string   `dynamodbav:"id"`
	EventID      string   `dynamodbav:"event_id"`
	Name         string   `dynamodbav:"name"`
	Description  string   `dynamodbav:"description,omitempty"`
	Status       string   `dynamodbav:"status"`
	PrimaryPrice float64  `dynamodbav:"primary_price,omitempty"`
	ItemIDs      []string `dynamodbav:"item_ids,omitempty"`
	CreatedAt    string   `dynamodbav:"created_at,omitempty"`
}

func (b *Bundle) EntityType() string { return "BUNDLE" }

func (b *Bundle) EntityKey() store.Key {
	return store.Key{PK: "BUNDLE#" + b.ID, SK: "EVENT#" + b.EventID}
}

func (b *Bundle) Attributes() (store.Record, error) {
	rec, err := attributevalue.MarshalMap(bundleRow{
		ID:          b.ID,
		EventID:     b.EventID,
		Name:        b.Name,
		Description: b.Description,
		Status:      string(b.Status),
		ItemIDs:     b.ItemIDs,
		CreatedAt:   formatOptionalTime(b.CreatedAt),
	})
	if err != nil {
		return nil, err
	}
	if b.PrimaryPrice != 0 {
		rec["primary_price"] = store.Decimal(b.PrimaryPrice)
	}
	return rec, nil
}

func (b *Bundle) Version() int64     { return b.version }
func (b *Bundle) SetVersion(v int64) { b.version = v }

func (b *Bundle) Hydrate(rec store.Record) error {
	var row bundleRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	b.ID = row.ID
	b.EventID = row.EventID
	b.Name = row.Name
	b.Description = row.Description
	b.Status = Status(row.Status)
	b.PrimaryPrice = row.PrimaryPrice
	b.ItemIDs = row.ItemIDs
	if err := parseOptionalTime(row.CreatedAt, &b.CreatedAt); err != nil {
		return err
	}
	b.version = versionOf(rec)
	return nil
}
