package ticketing

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"

	"github.com/jacentio/marquee/internal/keys"
	"github.com/jacentio/marquee/store"
)

// History is an append-only audit row attached to a resource. Rows are
// never updated or deleted; the KSUID identity keeps them chronological.
type History struct {
	ID          string
	ResourceKey string
	Action      string
	Actor       string
	Detail      string
	At          time.Time
}

type historyRow struct {
	ID          string `dynamodbav:"id"`
	ResourceKey string `dynamodbav:"resource_key"`
	Action      string `dynamodbav:"action"`
	Actor       string `dynamodbav:"actor,omitempty"`
	Detail      string `dynamodbav:"detail,omitempty"`
	At          string `dynamodbav:"at"`
}

// NewHistory builds an audit row for a resource key such as "EVENT#<id>".
func NewHistory(resourceKey, action, actor, detail string) *History {
	return &History{
		ID:          keys.NewID(),
		ResourceKey: resourceKey,
		Action:      action,
		Actor:       actor,
		Detail:      detail,
		At:          time.Now(),
	}
}

func (h *History) EntityType() string { return "HISTORY" }

func (h *History) EntityKey() store.Key {
	return store.Key{PK: "HISTORY#" + h.ID, SK: h.ResourceKey}
}

func (h *History) Attributes() (store.Record, error) {
	return attributevalue.MarshalMap(historyRow{
		ID:          h.ID,
		ResourceKey: h.ResourceKey,
		Action:      h.Action,
		Actor:       h.Actor,
		Detail:      h.Detail,
		At:          store.FormatTime(h.At),
	})
}

func (h *History) Hydrate(rec store.Record) error {
	var row historyRow
	if err := attributevalue.UnmarshalMap(rec, &row); err != nil {
		return err
	}
	h.ID = row.ID
	h.ResourceKey = row.ResourceKey
	h.Action = row.Action
	h.Actor = row.Actor
	h.Detail = row.Detail
	return parseOptionalTime(row.At, &h.At)
}

// AppendHistory bulk-writes audit rows. Audit is best-effort: rows the
// store could not take are returned for the caller to requeue or drop.
func AppendHistory(ctx context.Context, st *store.Store, entries ...*History) ([]*History, error) {
	entities := make([]store.Entity, len(entries))
	for i, h := range entries {
		entities[i] = h
	}

	_, unprocessed, err := st.BatchWrite(ctx, entities)
	if err != nil {
		return nil, err
	}

	var bounced []*History
	for _, e := range unprocessed {
		bounced = append(bounced, e.(*History))
	}
	return bounced, nil
}
