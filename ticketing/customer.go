package ticketing

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/store"
)

// Customer is a ticket buyer.
type Customer struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time

	version int64
}

type customerRow struct {
	ID        string `dynamodbav:"id"`
	Email     string `dynamodbav:"email"`
	Name      string `dynamodbav:"name,omitempty"`
	CreatedAt string `dynamodbav:"created_at,omitempty"`
}

func (c *Customer) EntityType() string { return "CUSTOMER" }

func (c *Customer) EntityKey() store.Key {
	pk := "CUSTOMER#" + c.ID
	return store.Key{PK: pk, SK: pk}
}

func (c *Customer) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(customerRow{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		CreatedAt: formatOptionalTime(c.CreatedAt),
	})
}

func (c *Customer) Version() int64     { return c.version }
func (c *Customer) SetVersion(v int64) { c.version = v }

func (c *Customer) Hydrate(rec store.Record) error {
	var row customerRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	c.ID = row.ID
	c.Email = row.Email
	c.Name = row.Name
	if err := parseOptionalTime(row.CreatedAt, &c.CreatedAt); err != nil {
		return err
	}
	c.version = versionOf(rec)
	return nil
}
