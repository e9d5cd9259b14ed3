package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// UpsertOptions configures a single-item conditional create-or-update.
type UpsertOptions struct {
	// SetOnce names fields written with if_not_exists semantics: an
	// already-stored value is never overwritten (created_at, immutable
	// identifiers).
	SetOnce []string

	// Condition is an opaque DynamoDB condition expression ANDed with the
	// versioning condition, if any.
	Condition string

	// Names and Values supply placeholders referenced by Condition.
	Names  map[string]string
	Values Record
}

// Upsert conditionally creates or updates one entity and returns the
// post-write image. A Versioned entity has its version incremented before
// the write, conditioned on "no stored version, or stored version not
// newer"; a stale writer receives *VersionConflictError and is expected to
// re-read and retry. A failure of the caller-supplied condition surfaces
// as ErrConditionFailed instead, so "someone else already created this"
// stays distinguishable from "stale version".
func (s *Store) Upsert(ctx context.Context, e Entity, opts UpsertOptions) (Record, error) {
	plan, err := buildUpdatePlan(e, opts.SetOnce, nil, opts.Condition, opts.Names, opts.Values, false)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                           aws.String(s.table),
		Key:                                 plan.key.DDB(),
		UpdateExpression:                    aws.String(plan.update),
		ExpressionAttributeNames:            plan.names,
		ExpressionAttributeValues:           plan.values,
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}
	if plan.condition != "" {
		input.ConditionExpression = aws.String(plan.condition)
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		return nil, s.mapUpsertError(err, e, plan, opts.Condition != "")
	}

	if v, ok := e.(Versioned); ok {
		v.SetVersion(plan.attemptedVersion + 1)
	}
	return out.Attributes, nil
}

// mapUpsertError translates a failed conditional update into the package's
// error taxonomy.
func (s *Store) mapUpsertError(err error, e Entity, plan *updatePlan, hasExtraCondition bool) error {
	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		if plan.versioned && s.isVersionConflict(condErr.Item, plan, hasExtraCondition) {
			conflict := &VersionConflictError{Entity: e, Attempted: plan.attemptedVersion}
			if stored, ok := numberAttr(condErr.Item, "version"); ok {
				conflict.Stored = stored
			}
			return conflict
		}
		return fmt.Errorf("upsert %s: %w", plan.key.PK, ErrConditionFailed)
	}

	var throttleErr *types.ProvisionedThroughputExceededException
	if errors.As(err, &throttleErr) {
		return fmt.Errorf("upsert %s: %w", plan.key.PK, ErrThrottled)
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "RequestLimitExceeded":
			return fmt.Errorf("upsert %s: %w", plan.key.PK, ErrThrottled)
		}
	}
	return fmt.Errorf("upsert %s: %w", plan.key.PK, err)
}

// isVersionConflict decides whether a conditional failure on a versioned
// entity was the version clause. Without an extra caller condition the
// version clause is the only candidate. With one, the pre-failure image
// settles it: a stored version newer than the attempt is a conflict,
// anything else means the caller's condition failed.
func (s *Store) isVersionConflict(oldItem Record, plan *updatePlan, hasExtraCondition bool) bool {
	if !hasExtraCondition {
		return true
	}
	stored, ok := numberAttr(oldItem, "version")
	return ok && stored > plan.attemptedVersion
}
