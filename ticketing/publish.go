package ticketing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jacentio/marquee/store"
)

// ErrNotPublishable is returned when a draft-to-live transition finds the
// resource already out of draft, or unpriced.
var ErrNotPublishable = errors.New("ticketing: resource is not publishable")

// PublishItem moves a draft item live. The transition is conditioned on
// the stored row still being a priced draft, so a double publish or a
// publish of an unpriced item fails cleanly instead of clobbering state.
func PublishItem(ctx context.Context, st *store.Store, item *Item) error {
	item.Status = StatusLive
	return publish(ctx, st, item)
}

// PublishBundle moves a draft bundle live under the same gate as items.
func PublishBundle(ctx context.Context, st *store.Store, bundle *Bundle) error {
	bundle.Status = StatusLive
	return publish(ctx, st, bundle)
}

func publish(ctx context.Context, st *store.Store, e store.Entity) error {
	result, err := st.TransactUpsert(ctx, store.TransactInput{
		Entities:  []store.Entity{e},
		SetOnce:   []string{"created_at"},
		Condition: "#status = :draft AND attribute_exists(#primary_price)",
		Names: map[string]string{
			"#status":        "status",
			"#primary_price": "primary_price",
		},
		Values: store.Record{":draft": store.String(string(StatusDraft))},
	})
	if err != nil {
		return err
	}
	if len(result.Failures) == 0 {
		return nil
	}

	f := result.Failures[0]
	switch {
	case f.Inferred == store.InferredVersionConflict:
		return &store.VersionConflictError{Entity: e, Attempted: f.AttemptedVersion}
	case f.Code == store.CodeConditionalFailed:
		return fmt.Errorf("publish %s: %w", f.Key.PK, ErrNotPublishable)
	case f.Code == store.CodeThrottled:
		return store.ErrThrottled
	case f.Code == store.CodeTransactionConflict:
		return store.ErrTransactionConflict
	}
	return fmt.Errorf("publish %s: %s", f.Key.PK, f.Message)
}

// ArchiveItem retires an item. Archived items stay queryable; nothing is
// deleted.
func ArchiveItem(ctx context.Context, st *store.Store, item *Item) error {
	item.Status = StatusArchived
	_, err := st.Upsert(ctx, item, store.UpsertOptions{
		SetOnce: []string{"created_at"},
	})
	return err
}

// ArchiveBundle retires a bundle.
func ArchiveBundle(ctx context.Context, st *store.Store, bundle *Bundle) error {
	bundle.Status = StatusArchived
	_, err := st.Upsert(ctx, bundle, store.UpsertOptions{
		SetOnce: []string{"created_at"},
	})
	return err
}
