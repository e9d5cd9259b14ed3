package store

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// FailureCode is the normalized classification of one failed item within a
// transactional batch.
type FailureCode string

const (
	// CodeConditionalFailed means the item's condition expression did not
	// hold (version clause, caller condition, or both).
	CodeConditionalFailed FailureCode = "conditional_failed"

	// CodeTransactionConflict means a concurrent transaction collided on
	// the same key. Retryable.
	CodeTransactionConflict FailureCode = "transaction_conflict"

	// CodeThrottled covers provisioned-throughput, generic throttling and
	// request-rate limits; all mean "retry later".
	CodeThrottled FailureCode = "throttled"

	// CodeItemCollectionLimit means the item collection exceeded its size
	// limit.
	CodeItemCollectionLimit FailureCode = "item_collection_limit"

	// CodeUnknown means the store cancelled the transaction without a
	// classifiable per-item reason.
	CodeUnknown FailureCode = "unknown"

	// CodeException means the whole chunk failed on an unclassifiable
	// store error (I/O, serialization).
	CodeException FailureCode = "exception"
)

// Inference is a secondary diagnosis for conditional failures, computed by
// inspecting the pre-failure stored state.
type Inference string

const (
	// InferredNone means no secondary diagnosis applied.
	InferredNone Inference = ""

	// InferredVersionConflict means the stored version exceeded the
	// attempted version.
	InferredVersionConflict Inference = "version_conflict"

	// InferredCapacityInsufficient means the stored remaining capacity
	// was exhausted. This is the signal "sold out" messaging keys off.
	InferredCapacityInsufficient Inference = "remaining_capacity_insufficient"
)

// capacityAttr is the remaining-capacity field inspected during inference.
const capacityAttr = "remaining_capacity"

// reasonNone is the cancellation reason DynamoDB reports for slots that did
// not themselves cause the abort.
const reasonNone = "None"

// TransactFailure describes one failed item of a transactional batch.
type TransactFailure struct {
	// Index is the item's position within its chunk.
	Index int

	// Key identifies the failed row.
	Key Key

	// Code is the normalized failure classification.
	Code FailureCode

	// RawCode is the backing store's verbatim reason code.
	RawCode string

	// Message is the store's failure message, when provided.
	Message string

	// OldItem is the pre-failure stored state, when the store returned it.
	OldItem Record

	// Inferred is the secondary diagnosis derived from OldItem.
	Inferred Inference

	// AttemptedVersion is the version the writer tried to commit, for
	// versioned items.
	AttemptedVersion int64
}

// TransactResult reports the outcome of a transactional upsert. Failed and
// Failures correspond by position.
type TransactResult struct {
	Successful []Entity
	Failed     []Entity
	Failures   []TransactFailure
}

// classifyReason normalizes a cancellation reason code.
func classifyReason(code string) FailureCode {
	switch code {
	case "ConditionalCheckFailed":
		return CodeConditionalFailed
	case "TransactionConflict":
		return CodeTransactionConflict
	case "ProvisionedThroughputExceeded", "ThrottlingError", "ThrottlingException", "RequestLimitExceeded":
		return CodeThrottled
	case "ItemCollectionSizeLimitExceeded":
		return CodeItemCollectionLimit
	default:
		return CodeUnknown
	}
}

// inferFailure inspects the pre-failure stored state of a conditional
// failure. The version check runs first and the capacity check second, so
// an exhausted capacity overwrites a simultaneous version conflict: it is
// the more actionable signal for callers surfacing "sold out".
func inferFailure(oldItem Record, plan *updatePlan) Inference {
	inferred := InferredNone
	if oldItem == nil {
		return inferred
	}
	if plan.versioned {
		if stored, ok := numberAttr(oldItem, "version"); ok && stored > plan.attemptedVersion {
			inferred = InferredVersionConflict
		}
	}
	if remaining, ok := numberAttr(oldItem, capacityAttr); ok && remaining < 1 {
		inferred = InferredCapacityInsufficient
	}
	return inferred
}

// reasonOldItem converts a cancellation reason's item, which may be nil.
func reasonOldItem(reason types.CancellationReason) Record {
	if len(reason.Item) == 0 {
		return nil
	}
	return reason.Item
}
