package ticketing

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/store"
)

// Location is where an event takes place. An event has at most one; a
// rewritten location replaces the previous one during assembly.
type Location struct {
	ID      string
	EventID string
	Name    string
	Address string
	City    string
	Country string
}

type locationRow struct {
	ID      string `dynamodbav:"id"`
	EventID string `dynamodbav:"event_id"`
	Name    string `dynamodbav:"name"`
	Address string `dynamodbav:"address,omitempty"`
	City    string `dynamodbav:"city,omitempty"`
	Country string `dynamodbav:"country,omitempty"`
}

func (l *Location) EntityType() string { return "LOCATION" }

func (l *Location) EntityKey() store.Key {
	return store.Key{PK: "LOCATION#" + l.ID, SK: "EVENT#" + l.EventID}
}

func (l *Location) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(locationRow{
		ID:      l.ID,
		EventID: l.EventID,
		Name:    l.Name,
		Address: l.Address,
		City:    l.City,
		Country: l.Country,
	})
}

func (l *Location) Hydrate(rec store.Record) error {
	var row locationRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	l.ID = row.ID
	l.EventID = row.EventID
	l.Name = row.Name
	l.Address = row.Address
	l.City = row.City
	l.Country = row.Country
	return nil
}
