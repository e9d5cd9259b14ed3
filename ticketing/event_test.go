package ticketing

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/marquee/store"
	"github.com/jacentio/marquee/store/storetest"
)

func mustRecord(t *testing.T, e store.Entity) store.Record {
	t.Helper()
	rec, err := store.Marshal(e, true)
	require.NoError(t, err)
	return rec
}

func TestEventKeys(t *testing.T) {
	e := &Event{ID: "2abc", OrganisationSlug: "the-organisation"}

	key := e.EntityKey()
	assert.Equal(t, "EVENT#2abc", key.PK)
	assert.Equal(t, "EVENT#2abc", key.SK)

	ix := e.IndexKeys()
	require.Contains(t, ix, "gsi1")
	assert.Equal(t, "EVENTLIST#the-organisation", ix["gsi1"].PK)
	assert.Equal(t, "EVENT#2abc", ix["gsi1"].SK)
}

func TestEventIndexKeysWithoutOrganisation(t *testing.T) {
	e := &Event{ID: "2abc"}
	assert.Empty(t, e.IndexKeys())
}

func TestEventRoundTrip(t *testing.T) {
	starts := time.Date(2026, 9, 12, 19, 30, 0, 0, time.UTC)
	e := &Event{
		ID:                "2abc",
		OrganisationSlug:  "the-organisation",
		Name:              "Launch Night",
		Description:       "doors at seven",
		Status:            StatusLive,
		StartsAt:          starts,
		EndsAt:            starts.Add(4 * time.Hour),
		Capacity:          500,
		RemainingCapacity: 350,
		NumberSold:        120,
		Reserved:          30,
		CreatedAt:         starts.Add(-30 * 24 * time.Hour),
	}
	e.SetVersion(7)

	var got Event
	require.NoError(t, got.Hydrate(mustRecord(t, e)))

	assert.Equal(t, e.Name, got.Name)
	assert.Equal(t, StatusLive, got.Status)
	assert.Equal(t, starts, got.StartsAt)
	assert.Equal(t, int64(350), got.RemainingCapacity)
	assert.Equal(t, int64(7), got.Version())
}

func TestEventAssemblesFamily(t *testing.T) {
	event := &Event{ID: "2abc", OrganisationSlug: "org", Name: "Launch Night", Status: StatusLive}
	location := &Location{ID: "loc1", EventID: "2abc", Name: "Town Hall"}
	item := &Item{ID: "it1", EventID: "2abc", Name: "General", Status: StatusLive, PrimaryPrice: 25.5}
	bundle := &Bundle{ID: "bn1", EventID: "2abc", Name: "Pair", Status: StatusDraft, ItemIDs: []string{"it1"}}
	history := NewHistory("EVENT#2abc", "published", "system", "")

	rows := []store.Record{
		mustRecord(t, item),
		mustRecord(t, event),
		mustRecord(t, location),
		mustRecord(t, bundle),
		mustRecord(t, history),
	}

	var got Event
	require.NoError(t, store.Assemble(&got, rows))

	assert.Equal(t, "Launch Night", got.Name)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Town Hall", got.Location.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 25.5, got.Items[0].PrimaryPrice)
	require.Len(t, got.Bundles, 1)
	assert.Equal(t, []string{"it1"}, got.Bundles[0].ItemIDs)
	require.Len(t, got.History, 1)
	assert.Equal(t, "published", got.History[0].Action)
}

func TestValidateLive(t *testing.T) {
	starts := time.Now().Add(24 * time.Hour)
	valid := Event{
		Name:        "Launch Night",
		Description: "doors at seven",
		StartsAt:    starts,
		EndsAt:      starts.Add(time.Hour),
		Capacity:    100,
	}

	tests := []struct {
		name   string
		mutate func(*Event)
		ok     bool
	}{
		{"complete", func(e *Event) {}, true},
		{"missing name", func(e *Event) { e.Name = "" }, false},
		{"missing description", func(e *Event) { e.Description = "" }, false},
		{"missing schedule", func(e *Event) { e.EndsAt = time.Time{} }, false},
		{"zero capacity", func(e *Event) { e.Capacity = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.ValidateLive()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestCreateEventAssignsIdentity(t *testing.T) {
	client := &storetest.Client{}
	st := store.New(client, store.Config{Table: "marquee-test"})

	e := &Event{OrganisationSlug: "org", Name: "Launch Night", Capacity: 200}
	require.NoError(t, CreateEvent(context.Background(), st, e))

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, StatusDraft, e.Status)
	assert.Equal(t, int64(200), e.RemainingCapacity)
	assert.False(t, e.CreatedAt.IsZero())
	assert.Equal(t, int64(1), e.Version())

	require.Len(t, client.UpdateItemCalls, 1)
	expr := *client.UpdateItemCalls[0].UpdateExpression
	assert.Contains(t, expr, "if_not_exists(#created_at, :created_at)")
}

func TestCreateEventRejectsInvalidLive(t *testing.T) {
	st := store.New(&storetest.Client{}, store.Config{Table: "marquee-test"})

	e := &Event{OrganisationSlug: "org", Name: "Launch Night", Status: StatusLive}
	assert.Error(t, CreateEvent(context.Background(), st, e))
}

func TestGetEventQueriesInvertedIndex(t *testing.T) {
	client := &storetest.Client{
		QueryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{
				Items: []store.Record{
					mustRecordStatic(&Event{ID: "2abc", OrganisationSlug: "org", Name: "Launch Night"}),
					mustRecordStatic(&Location{ID: "loc1", EventID: "2abc", Name: "Town Hall"}),
				},
			}, nil
		},
	}
	st := store.New(client, store.Config{Table: "marquee-test"})

	e, err := GetEvent(context.Background(), st, "2abc")
	require.NoError(t, err)
	assert.Equal(t, "Launch Night", e.Name)
	require.NotNil(t, e.Location)

	require.Len(t, client.QueryCalls, 1)
	assert.Equal(t, "IDXinv", *client.QueryCalls[0].IndexName)
}

func TestListEventsUsesListIndex(t *testing.T) {
	client := &storetest.Client{
		QueryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{
				Items: []store.Record{
					mustRecordStatic(&Event{ID: "2abd", OrganisationSlug: "org", Name: "Second"}),
					mustRecordStatic(&Event{ID: "2abc", OrganisationSlug: "org", Name: "First"}),
				},
			}, nil
		},
	}
	st := store.New(client, store.Config{Table: "marquee-test"})

	events, err := ListEvents(context.Background(), st, "org")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Second", events[0].Name)

	call := client.QueryCalls[0]
	assert.Equal(t, "gsi1", *call.IndexName)
	assert.False(t, *call.ScanIndexForward)
}

// mustRecordStatic is mustRecord for hooks that have no *testing.T.
func mustRecordStatic(e store.Entity) store.Record {
	rec, err := store.Marshal(e, true)
	if err != nil {
		panic(err)
	}
	return rec
}
