package ticketing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/internal/keys"
	"github.com/jacentio/marquee/store"
)

// invertedIndex swaps PK and SK, turning an event's sort key into a
// partition: one query fetches the event row and every child row pointing
// at it.
const invertedIndex = "IDXinv"

// eventListIndex projects events under a per-organisation partition for
// listing. KSUID event IDs make the sort key chronological.
const eventListIndex = "gsi1"

// Event is the aggregate root of the ticketing model. Capacity accounting
// lives on the event row: remaining_capacity and reserved move under
// atomic deltas, never read-modify-write.
type Event struct {
	ID                string
	OrganisationSlug  string
	Name              string
	Description       string
	Status            Status
	StartsAt          time.Time
	EndsAt            time.Time
	Capacity          int64
	RemainingCapacity int64
	NumberSold        int64
	Reserved          int64
	CreatedAt         time.Time

	version int64

	// Assembled children.
	Location *Location
	Items    []*Item
	Bundles  []*Bundle
	History  []*History
}

type eventRow struct {
	ID                string `dynamodbav:"id"`
	OrganisationSlug  string `dynamodbav:"organisation"`
	Name              string `dynamodbav:"name"`
	Description       string `dynamodbav:"description,omitempty"`
	Status            string `dynamodbav:"status"`
	StartsAt          string `dynamodbav:"starts_at,omitempty"`
	EndsAt            string `dynamodbav:"ends_at,omitempty"`
	Capacity          int64  `dynamodbav:"capacity"`
	RemainingCapacity int64  `dynamodbav:"remaining_capacity"`
	NumberSold        int64  `dynamodbav:"number_sold"`
	Reserved          int64  `dynamodbav:"reserved"`
	CreatedAt         string `dynamodbav:"created_at,omitempty"`
}

func (e *Event) EntityType() string { return "EVENT" }

func (e *Event) EntityKey() store.Key {
	pk := "EVENT#" + e.ID
	return store.Key{PK: pk, SK: pk}
}

func (e *Event) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(eventRow{
		ID:                e.ID,
		OrganisationSlug:  e.OrganisationSlug,
		Name:              e.Name,
		Description:       e.Description,
		Status:            string(e.Status),
		StartsAt:          formatOptionalTime(e.StartsAt),
		EndsAt:            formatOptionalTime(e.EndsAt),
		Capacity:          e.Capacity,
		RemainingCapacity: e.RemainingCapacity,
		NumberSold:        e.NumberSold,
		Reserved:          e.Reserved,
		CreatedAt:         formatOptionalTime(e.CreatedAt),
	})
}

func (e *Event) Version() int64     { return e.version }
func (e *Event) SetVersion(v int64) { e.version = v }

func (e *Event) IndexKeys() map[string]store.Key {
	if e.OrganisationSlug == "" {
		return nil
	}
	return map[string]store.Key{
		eventListIndex: {
			PK: "EVENTLIST#" + e.OrganisationSlug,
			SK: "EVENT#" + e.ID,
		},
	}
}

func (e *Event) Hydrate(rec store.Record) error {
	var row eventRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	e.ID = row.ID
	e.OrganisationSlug = row.OrganisationSlug
	e.Name = row.Name
	e.Description = row.Description
	e.Status = Status(row.Status)
	e.Capacity = row.Capacity
	e.RemainingCapacity = row.RemainingCapacity
	e.NumberSold = row.NumberSold
	e.Reserved = row.Reserved
	if err := parseOptionalTime(row.StartsAt, &e.StartsAt); err != nil {
		return err
	}
	if err := parseOptionalTime(row.EndsAt, &e.EndsAt); err != nil {
		return err
	}
	if err := parseOptionalTime(row.CreatedAt, &e.CreatedAt); err != nil {
		return err
	}
	e.version = versionOf(rec)
	return nil
}

func (e *Event) RelatedEntities() map[string]store.RelatedSpec {
	return map[string]store.RelatedSpec{
		"LOCATION": {
			Cardinality: store.Single,
			New:         func() store.Hydrator { return &Location{} },
			Attach: func(root, child store.Entity) {
				root.(*Event).Location = child.(*Location)
			},
		},
		"ITEM": {
			Cardinality: store.List,
			New:         func() store.Hydrator { return &Item{} },
			Attach: func(root, child store.Entity) {
				ev := root.(*Event)
				ev.Items = append(ev.Items, child.(*Item))
			},
		},
		"BUNDLE": {
			Cardinality: store.List,
			New:         func() store.Hydrator { return &Bundle{} },
			Attach: func(root, child store.Entity) {
				ev := root.(*Event)
				ev.Bundles = append(ev.Bundles, child.(*Bundle))
			},
		},
		"HISTORY": {
			Cardinality: store.List,
			New:         func() store.Hydrator { return &History{} },
			Attach: func(root, child store.Entity) {
				ev := root.(*Event)
				ev.History = append(ev.History, child.(*History))
			},
		},
	}
}

// ValidateLive reports why the event cannot go live, or nil.
func (e *Event) ValidateLive() error {
	switch {
	case e.Name == "":
		return errors.New("ticketing: live event requires a name")
	case e.Description == "":
		return errors.New("ticketing: live event requires a description")
	case e.StartsAt.IsZero() || e.EndsAt.IsZero():
		return errors.New("ticketing: live event requires a schedule")
	case e.Capacity < 1:
		return errors.New("ticketing: live event requires capacity")
	}
	return nil
}

// CreateEvent assigns identity and initial capacity accounting, then
// persists the event. created_at is written set-once so replays keep the
// original timestamp.
func CreateEvent(ctx context.Context, st *store.Store, e *Event) error {
	if e.ID == "" {
		e.ID = keys.NewID()
	}
	if e.Status == "" {
		e.Status = StatusDraft
	}
	if !e.Status.Valid() {
		return fmt.Errorf("ticketing: invalid event status %q", e.Status)
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.RemainingCapacity = e.Capacity
	if e.Status == StatusLive {
		if err := e.ValidateLive(); err != nil {
			return err
		}
	}

	_, err := st.Upsert(ctx, e, store.UpsertOptions{
		SetOnce: []string{"created_at"},
	})
	return err
}

// SaveEvent persists an edited event under optimistic concurrency. A live
// event must stay valid.
func SaveEvent(ctx context.Context, st *store.Store, e *Event) error {
	if e.Status == StatusLive {
		if err := e.ValidateLive(); err != nil {
			return err
		}
	}
	_, err := st.Upsert(ctx, e, store.UpsertOptions{
		SetOnce: []string{"created_at"},
	})
	return err
}

// GetEvent loads one event with all its child rows assembled, via the
// inverted index on the sort key.
func GetEvent(ctx context.Context, st *store.Store, id string) (*Event, error) {
	var e Event
	err := st.QueryAssemble(ctx, &e, store.Query{
		Index:        invertedIndex,
		KeyCondition: "SK = :sk",
		Values:       store.Record{":sk": store.String("EVENT#" + id)},
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns an organisation's events, newest first.
func ListEvents(ctx context.Context, st *store.Store, orgSlug string) ([]*Event, error) {
	entities, err := st.QueryList(ctx,
		func() store.Hydrator { return &Event{} },
		store.Query{
			Index:        eventListIndex,
			KeyCondition: "#pk = :pk",
			Names:        map[string]string{"#pk": eventListIndex + "PK"},
			Values:       store.Record{":pk": store.String("EVENTLIST#" + orgSlug)},
			Descending:   true,
		})
	if err != nil {
		return nil, err
	}

	events := make([]*Event, 0, len(entities))
	for _, e := range entities {
		events = append(events, e.(*Event))
	}
	return events, nil
}
