// Package store provides a single-table DynamoDB data access layer with
// denormalized entity storage and aggregate assembly.
package store

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Record is a raw DynamoDB item.
type Record = map[string]types.AttributeValue

// Key is a partition/sort key pair.
type Key struct {
	PK string
	SK string
}

// IsZero reports whether neither key element is set.
func (k Key) IsZero() bool {
	return k.PK == "" && k.SK == ""
}

// DDB returns the key as DynamoDB attributes.
func (k Key) DDB() Record {
	return Record{
		"PK": &types.AttributeValueMemberS{Value: k.PK},
		"SK": &types.AttributeValueMemberS{Value: k.SK},
	}
}

// Entity is the base interface for all storable types.
type Entity interface {
	// EntityType returns the type discriminator stored on every row
	// (e.g., "EVENT").
	EntityType() string

	// EntityKey returns the primary key, derived deterministically from
	// identity fields.
	EntityKey() Key

	// Attributes returns the entity's declared fields as a DynamoDB item.
	// Key attributes are never part of this map; the store adds them where
	// an operation requires them.
	Attributes() (Record, error)
}

// Versioned is implemented by entity types guarded by optimistic
// concurrency. Mutations of a Versioned entity are conditioned on the
// stored version not exceeding the writer's copy.
type Versioned interface {
	Entity

	// Version returns the writer's current version.
	Version() int64

	// SetVersion records the version assigned by a successful write.
	SetVersion(v int64)
}

// Indexed is implemented by entities projected into secondary indexes.
type Indexed interface {
	// IndexKeys maps an index name (e.g., "gsi1") to its key pair.
	// A zero Key means the entity does not project into that index.
	// Index keys are stored as ordinary attributes named
	// "<index>PK"/"<index>SK".
	IndexKeys() map[string]Key
}

// Hydrator is implemented by entity types that can be loaded back from a
// stored row.
type Hydrator interface {
	Entity

	// Hydrate populates the receiver from a raw row.
	Hydrate(Record) error
}

// Cardinality describes how child rows attach to an aggregate root.
type Cardinality string

const (
	// Single attaches the last matching row, overwriting earlier ones.
	Single Cardinality = "single"
	// List accumulates matching rows in input order.
	List Cardinality = "list"
)

// RelatedSpec declares how rows of one child entity type fold into an
// aggregate during assembly.
type RelatedSpec struct {
	Cardinality Cardinality

	// New constructs an empty child entity to hydrate a row into.
	New func() Hydrator

	// Attach adds the hydrated child to the root.
	Attach func(root Entity, child Entity)
}

// Assembler is implemented by aggregate roots that absorb sibling rows
// returned from a single row-family query. Children are stored as separate
// rows sharing a sort-key relationship, never inline.
type Assembler interface {
	Hydrator

	// RelatedEntities maps a child entity_type discriminator to its
	// assembly declaration. Row types absent from the map are skipped.
	RelatedEntities() map[string]RelatedSpec
}
