package store

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// maxBatchSize is DynamoDB's hard per-call item limit for batch and
// transactional writes.
const maxBatchSize = 25

// TransactInput describes a transactional multi-item upsert.
type TransactInput struct {
	// Entities are mutated together; each chunk of up to 25 is
	// all-or-nothing.
	Entities []Entity

	// SetOnce names fields written with if_not_exists semantics.
	SetOnce []string

	// Condition is an opaque condition expression ANDed onto every item.
	Condition string

	// Names and Values supply placeholders referenced by Condition.
	Names  map[string]string
	Values Record

	// AddFields names fields written as atomic arithmetic deltas rather
	// than SET. Two concurrent "reserve one ticket" writes must both
	// apply their decrement, never lost-update each other.
	AddFields []string

	// SkipVersionCheck drops the version condition for every item, for
	// pure counter deltas that must apply regardless of an unrelated
	// version bump.
	SkipVersionCheck bool
}

// TransactUpsert atomically mutates a set of entities with all-or-nothing
// semantics per chunk. Business-level failures never surface as a Go
// error: the result carries per-item failure diagnostics so callers can
// report partial success without exception-driven control flow. Only
// programming errors (an item with nothing to update) return an error.
func (s *Store) TransactUpsert(ctx context.Context, in TransactInput) (*TransactResult, error) {
	result := &TransactResult{}

	for start := 0; start < len(in.Entities); start += maxBatchSize {
		end := min(start+maxBatchSize, len(in.Entities))
		chunk := in.Entities[start:end]

		plans := make([]*updatePlan, len(chunk))
		items := make([]types.TransactWriteItem, len(chunk))
		for i, e := range chunk {
			plan, err := buildUpdatePlan(e, in.SetOnce, in.AddFields, in.Condition, in.Names, in.Values, in.SkipVersionCheck)
			if err != nil {
				return nil, err
			}
			plans[i] = plan

			update := &types.Update{
				TableName:                           aws.String(s.table),
				Key:                                 plan.key.DDB(),
				UpdateExpression:                    aws.String(plan.update),
				ExpressionAttributeNames:            plan.names,
				ExpressionAttributeValues:           plan.values,
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			}
			if plan.condition != "" {
				update.ConditionExpression = aws.String(plan.condition)
			}
			items[i] = types.TransactWriteItem{Update: update}
		}

		_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems:      items,
			ClientRequestToken: aws.String(uuid.NewString()),
		})
		switch {
		case err == nil:
			for i, e := range chunk {
				if v, ok := e.(Versioned); ok && !in.SkipVersionCheck {
					v.SetVersion(plans[i].attemptedVersion + 1)
				}
				result.Successful = append(result.Successful, e)
			}
		default:
			s.recordChunkFailure(err, chunk, plans, result)
		}
	}
	return result, nil
}

// recordChunkFailure classifies a rejected chunk into per-item failures.
func (s *Store) recordChunkFailure(err error, chunk []Entity, plans []*updatePlan, result *TransactResult) {
	var cancelled *types.TransactionCanceledException
	if !errors.As(err, &cancelled) {
		// I/O or any other unexpected store error: the whole chunk failed
		// and no inference is possible.
		s.logger.Error("transaction failed", "error", err)
		for i, e := range chunk {
			result.Failed = append(result.Failed, e)
			result.Failures = append(result.Failures, TransactFailure{
				Index:            i,
				Key:              plans[i].key,
				Code:             CodeException,
				Message:          err.Error(),
				AttemptedVersion: plans[i].attemptedVersion,
			})
		}
		return
	}

	s.logger.Warn("transaction cancelled", "reasons", len(cancelled.CancellationReasons))
	if len(cancelled.CancellationReasons) == 0 {
		for i, e := range chunk {
			result.Failed = append(result.Failed, e)
			result.Failures = append(result.Failures, TransactFailure{
				Index:            i,
				Key:              plans[i].key,
				Code:             CodeUnknown,
				AttemptedVersion: plans[i].attemptedVersion,
			})
		}
		return
	}

	for i, reason := range cancelled.CancellationReasons {
		if i >= len(chunk) {
			break
		}
		// A "None" slot did not itself cause the abort; other items in
		// the same transaction did.
		if reason.Code == nil || *reason.Code == reasonNone {
			continue
		}

		failure := TransactFailure{
			Index:            i,
			Key:              plans[i].key,
			Code:             classifyReason(*reason.Code),
			RawCode:          *reason.Code,
			OldItem:          reasonOldItem(reason),
			AttemptedVersion: plans[i].attemptedVersion,
		}
		if reason.Message != nil {
			failure.Message = *reason.Message
		}
		if failure.Code == CodeConditionalFailed {
			failure.Inferred = inferFailure(failure.OldItem, plans[i])
		}

		result.Failed = append(result.Failed, chunk[i])
		result.Failures = append(result.Failures, failure)
	}
}
