package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no matching row exists, or when an
	// assembly query returns no row of the root's entity type.
	ErrNotFound = errors.New("marquee: entity not found")

	// ErrConditionFailed is returned when a non-versioning write
	// precondition failed (e.g., "must not already exist").
	ErrConditionFailed = errors.New("marquee: condition failed")

	// ErrThrottled is returned when the backing store rejected a call due
	// to capacity limiting. Callers should retry with backoff; the store
	// never retries internally.
	ErrThrottled = errors.New("marquee: backing store throttled")

	// ErrTransactionConflict is returned when a concurrent transaction
	// collided on the same keys.
	ErrTransactionConflict = errors.New("marquee: transaction conflict")
)

// VersionConflictError signals that a versioned entity's stored version
// exceeds the writer's expectation. The caller is expected to re-read,
// re-apply, and retry.
type VersionConflictError struct {
	Entity    Entity
	Attempted int64
	Stored    int64
}

func (e *VersionConflictError) Error() string {
	key := e.Entity.EntityKey()
	if e.Stored > 0 {
		return fmt.Sprintf("marquee: version conflict on %s: attempted v%d, stored v%d", key.PK, e.Attempted, e.Stored)
	}
	return fmt.Sprintf("marquee: version conflict on %s: attempted v%d", key.PK, e.Attempted)
}

// InvalidConfigurationError signals a programming error in an entity
// declaration (unmapped cardinality, no updatable fields). It must
// propagate and fail loudly, never be handled generically.
type InvalidConfigurationError struct {
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return "marquee: invalid entity configuration: " + e.Reason
}
