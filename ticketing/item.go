package ticketing

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/store"
)

// Item is a sellable ticket type within an event. Prices are decimal; the
// zero price is "unpriced", and an unpriced item cannot go live.
type Item struct {
	ID           string
	EventID      string
	Name         string
	Description  string
	Status       Status
	PrimaryPrice float64
	CreatedAt    time.Time

	version int64
}

type itemRow struct {
	ID           string  `dynamodbav:"id"`
	EventID      string  `dynamodbav:"event_id"`
	Name         string  `dynamodbav:"name"`
	Description  string  `dynamodbav:"description,omitempty"`
	Status       string  `dynamodbav:"status"`
	PrimaryPrice float64 `dynamodbav:"primary_price,omitempty"`
	CreatedAt    string  `dynamodbav:"created_at,omitempty"`
}

func (i *Item) EntityType() string { return "ITEM" }

func (i *Item) EntityKey() store.Key {
	return store.Key{PK: "ITEM#" + i.ID, SK: "EVENT#" + i.EventID}
}

func (i *Item) Attributes() (store.Record, error) {
	rec, err := attributevalue.MarshalMap(itemRow{
		ID:          i.ID,
		EventID:     i.EventID,
		Name:        i.Name,
		Description: i.Description,
		Status:      string(i.Status),
		CreatedAt:   formatOptionalTime(i.CreatedAt),
	})
	if err != nil {
		return nil, err
	}
	// Prices are money: stored as exact decimal text, absent when unpriced
	// so the publish gate can test attribute_exists.
	if i.PrimaryPrice != 0 {
		rec["primary_price"] = store.Decimal(i.PrimaryPrice)
	}
	return rec, nil
}

func (i *Item) Version() int64     { return i.version }
func (i *Item) SetVersion(v int64) { i.version = v }

func (i *Item) Hydrate(rec store.Record) error {
	var row itemRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	i.ID = row.ID
	i.EventID = row.EventID
	i.Name = row.Name
	i.Description = row.Description
	i.Status = Status(row.Status)
	i.PrimaryPrice = row.PrimaryPrice
	if err := parseOptionalTime(row.CreatedAt, &i.CreatedAt); err != nil {
		return err
	}
	i.version = versionOf(rec)
	return nil
}
