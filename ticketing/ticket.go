package ticketing

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/store"
)

// Ticket is one admission issued from a completed checkout.
type Ticket struct {
	ID         string
	EventID    string
	OrderID    string
	CustomerID string
	ItemID     string
	Status     Status
	IssuedAt   time.Time

	version int64

	// Children are the attendee detail rows, assembled on read.
	Children []*TicketChild
}

type ticketRow struct {
	ID         string `dynamodbav:"id"`
	EventID    string `dynamodbav:"event_id"`
	OrderID    string `dynamodbav:"order_id"`
	CustomerID string `dynamodbav:"customer_id,omitempty"`
	ItemID     string `dynamodbav:"item_id"`
	Status     string `dynamodbav:"status"`
	IssuedAt   string `dynamodbav:"issued_at,omitempty"`
}

func (t *Ticket) EntityType() string { return "TICKET" }

func (t *Ticket) EntityKey() store.Key {
	return store.Key{PK: "TICKET#" + t.ID, SK: "EVENT#" + t.EventID}
}

func (t *Ticket) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(ticketRow{
		ID:         t.ID,
		EventID:    t.EventID,
		OrderID:    t.OrderID,
		CustomerID: t.CustomerID,
		ItemID:     t.ItemID,
		Status:     string(t.Status),
		IssuedAt:   formatOptionalTime(t.IssuedAt),
	})
}

func (t *Ticket) Version() int64     { return t.version }
func (t *Ticket) SetVersion(v int64) { t.version = v }

func (t *Ticket) Hydrate(rec store.Record) error {
	var row ticketRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	t.ID = row.ID
	t.EventID = row.EventID
	t.OrderID = row.OrderID
	t.CustomerID = row.CustomerID
	t.ItemID = row.ItemID
	t.Status = Status(row.Status)
	if err := parseOptionalTime(row.IssuedAt, &t.IssuedAt); err != nil {
		return err
	}
	t.version = versionOf(rec)
	return nil
}

func (t *Ticket) RelatedEntities() map[string]store.RelatedSpec {
	return map[string]store.RelatedSpec{
		"TICKETCHILD": {
			Cardinality: store.List,
			New:         func() store.Hydrator { return &TicketChild{} },
			Attach: func(root, child store.Entity) {
				tk := root.(*Ticket)
				tk.Children = append(tk.Children, child.(*TicketChild))
			},
		},
	}
}

// GetTicket loads one ticket with its attendee rows. The ticket row lives
// under its event partition while attendee rows point at the ticket, so
// the family spans two queries before assembly.
func GetTicket(ctx context.Context, st *store.Store, id string) (*Ticket, error) {
	rows, err := st.Query(ctx, store.Query{
		KeyCondition: "PK = :pk",
		Values:       store.Record{":pk": store.String("TICKET#" + id)},
	})
	if err != nil {
		return nil, err
	}

	children, err := st.Query(ctx, store.Query{
		Index:        invertedIndex,
		KeyCondition: "SK = :sk",
		Values:       store.Record{":sk": store.String("TICKET#" + id)},
	})
	if err != nil {
		return nil, err
	}

	var t Ticket
	if err := store.Assemble(&t, append(rows, children...)); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTickets returns every ticket issued for an event.
func ListTickets(ctx context.Context, st *store.Store, eventID string) ([]*Ticket, error) {
	entities, err := st.QueryList(ctx,
		func() store.Hydrator { return &Ticket{} },
		store.Query{
			Index:        invertedIndex,
			KeyCondition: "SK = :sk",
			Filter:       "entity_type = :et",
			Values: store.Record{
				":sk": store.String("EVENT#" + eventID),
				":et": store.String("TICKET"),
			},
		})
	if err != nil {
		return nil, err
	}

	tickets := make([]*Ticket, 0, len(entities))
	for _, e := range entities {
		tickets = append(tickets, e.(*Ticket))
	}
	return tickets, nil
}

// TicketChild carries per-attendee details under a ticket.
type TicketChild struct {
	ID       string
	TicketID string
	Name     string
	Email    string
}

type ticketChildRow struct {
	ID       string `dynamodbav:"id"`
	TicketID string `dynamodbav:"ticket_id"`
	Name     string `dynamodbav:"name,omitempty"`
	Email    string `dynamodbav:"email,omitempty"`
}

func (c *TicketChild) EntityType() string { return "TICKETCHILD" }

func (c *TicketChild) EntityKey() store.Key {
	return store.Key{PK: "TICKETCHILD#" + c.ID, SK: "TICKET#" + c.TicketID}
}

func (c *TicketChild) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(ticketChildRow{
		ID:       c.ID,
		TicketID: c.TicketID,
		Name:     c.Name,
		Email:    c.Email,
	})
}

func (c *TicketChild) Hydrate(rec store.Record) error {
	var row ticketChildRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	c.ID = row.ID
	c.TicketID = row.TicketID
	c.Name = row.Name
	c.Email = row.Email
	return nil
}
