package ticketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jacentio/marquee/internal/keys"
	"github.com/jacentio/marquee/store"
)

// ErrSoldOut is returned when an event's remaining capacity cannot cover a
// requested reservation.
var ErrSoldOut = errors.New("ticketing: insufficient remaining capacity")

// Order is the completed-checkout payload tickets are issued from.
type Order struct {
	ID         string      `json:"id"`
	EventID    string      `json:"event_id"`
	CustomerID string      `json:"customer_id"`
	Lines      []OrderLine `json:"lines"`
}

// OrderLine requests admissions for one item. Attendee details, when
// supplied, are attached positionally to the issued tickets.
type OrderLine struct {
	ItemID    string     `json:"item_id"`
	Quantity  int64      `json:"quantity"`
	Attendees []Attendee `json:"attendees,omitempty"`
}

// Attendee names the holder of one admission.
type Attendee struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// quantity sums the order's requested admissions.
func (o Order) quantity() int64 {
	var total int64
	for _, line := range o.Lines {
		total += line.Quantity
	}
	return total
}

// capacityDelta is a write-only entity carrying atomic adjustments to an
// event's capacity counters. Only the named deltas are applied; the event
// row's other fields are untouched.
type capacityDelta struct {
	eventID string
	fields  map[string]int64
}

func (d *capacityDelta) EntityType() string { return "EVENT" }

func (d *capacityDelta) EntityKey() store.Key {
	pk := "EVENT#" + d.eventID
	return store.Key{PK: pk, SK: pk}
}

func (d *capacityDelta) Attributes() (store.Record, error) {
	rec := store.Record{}
	for field, delta := range d.fields {
		rec[field] = store.Number(delta)
	}
	return rec, nil
}

// counterFields are the event attributes adjusted through ADD deltas.
var counterFields = []string{"remaining_capacity", "reserved", "number_sold"}

// ReserveCapacity atomically moves qty admissions from an event's
// remaining capacity into its reserved pool, gated on enough capacity
// being left. Two concurrent reservations both apply or the loser gets
// ErrSoldOut; there is no read-modify-write window.
func ReserveCapacity(ctx context.Context, st *store.Store, eventID string, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("ticketing: reservation quantity must be positive, got %d", qty)
	}

	delta := &capacityDelta{
		eventID: eventID,
		fields: map[string]int64{
			"remaining_capacity": -qty,
			"reserved":           qty,
		},
	}

	result, err := st.TransactUpsert(ctx, store.TransactInput{
		Entities:         []store.Entity{delta},
		AddFields:        counterFields,
		SkipVersionCheck: true,
		Condition:        "#remaining_capacity >= :qty",
		Names:            map[string]string{"#remaining_capacity": "remaining_capacity"},
		Values:           store.Record{":qty": store.Number(qty)},
	})
	if err != nil {
		return err
	}
	return reservationError(result)
}

// ReleaseCapacity returns previously reserved admissions to the pool, for
// abandoned checkouts.
func ReleaseCapacity(ctx context.Context, st *store.Store, eventID string, qty int64) error {
	if qty < 1 {
		return fmt.Errorf("ticketing: release quantity must be positive, got %d", qty)
	}

	delta := &capacityDelta{
		eventID: eventID,
		fields: map[string]int64{
			"remaining_capacity": qty,
			"reserved":           -qty,
		},
	}

	result, err := st.TransactUpsert(ctx, store.TransactInput{
		Entities:         []store.Entity{delta},
		AddFields:        counterFields,
		SkipVersionCheck: true,
	})
	if err != nil {
		return err
	}
	return reservationError(result)
}

// reservationError folds a single-item transact result into an error.
func reservationError(result *store.TransactResult) error {
	if len(result.Failures) == 0 {
		return nil
	}
	f := result.Failures[0]
	switch {
	case f.Inferred == store.InferredCapacityInsufficient:
		return ErrSoldOut
	case f.Code == store.CodeConditionalFailed:
		// The gate failed without a readable capacity attribute; treat it
		// the same, the caller cannot have the admissions.
		return ErrSoldOut
	case f.Code == store.CodeTransactionConflict:
		return store.ErrTransactionConflict
	case f.Code == store.CodeThrottled:
		return store.ErrThrottled
	}
	return fmt.Errorf("ticketing: capacity adjustment failed: %s", f.Message)
}

// IssueResult reports a partially successful issuance: some tickets
// written, others failed with per-row diagnostics.
type IssueResult struct {
	Issued   []*Ticket
	Failed   []store.Entity
	Failures []store.TransactFailure
}

// AllIssued reports whether every requested admission was written.
func (r *IssueResult) AllIssued() bool {
	return len(r.Failures) == 0
}

// IssueTickets writes the tickets and attendee rows for a completed order
// and settles the capacity accounting, moving the order's quantity from
// reserved to number_sold. Tickets and counters commit atomically per
// chunk; a failed chunk is reported row by row, never as a Go error.
func IssueTickets(ctx context.Context, st *store.Store, order Order) (*IssueResult, error) {
	if order.EventID == "" {
		return nil, errors.New("ticketing: order has no event")
	}
	total := order.quantity()
	if total < 1 {
		return nil, errors.New("ticketing: order has no admissions")
	}

	now := time.Now()
	var entities []store.Entity
	var tickets []*Ticket
	for _, line := range order.Lines {
		for n := int64(0); n < line.Quantity; n++ {
			t := &Ticket{
				ID:         keys.NewID(),
				EventID:    order.EventID,
				OrderID:    order.ID,
				CustomerID: order.CustomerID,
				ItemID:     line.ItemID,
				Status:     StatusIssued,
				IssuedAt:   now,
			}
			tickets = append(tickets, t)
			entities = append(entities, t)

			if n < int64(len(line.Attendees)) {
				a := line.Attendees[n]
				entities = append(entities, &TicketChild{
					ID:       keys.NewID(),
					TicketID: t.ID,
					Name:     a.Name,
					Email:    a.Email,
				})
			}
		}
	}

	entities = append(entities, &capacityDelta{
		eventID: order.EventID,
		fields: map[string]int64{
			"reserved":    -total,
			"number_sold": total,
		},
	})

	result, err := st.TransactUpsert(ctx, store.TransactInput{
		Entities:         entities,
		AddFields:        counterFields,
		SetOnce:          []string{"issued_at"},
		SkipVersionCheck: true,
	})
	if err != nil {
		return nil, err
	}

	issued := make([]*Ticket, 0, len(tickets))
	failed := map[store.Entity]bool{}
	for _, e := range result.Failed {
		failed[e] = true
	}
	for _, t := range tickets {
		if !failed[t] {
			issued = append(issued, t)
		}
	}

	return &IssueResult{
		Issued:   issued,
		Failed:   result.Failed,
		Failures: result.Failures,
	}, nil
}
