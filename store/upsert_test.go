package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacentio/marquee/store"
	"github.com/jacentio/marquee/store/storetest"
)

func newTestStore(client *storetest.Client) *store.Store {
	return store.New(client, store.Config{Table: "marquee-test"})
}

func TestUpsertSuccessBumpsVersion(t *testing.T) {
	client := &storetest.Client{
		UpdateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return &dynamodb.UpdateItemOutput{
				Attributes: projectRecord("p1", "Launch", 50, 4),
			}, nil
		},
	}
	s := newTestStore(client)

	p := &Project{ID: "p1", Name: "Launch", Remaining: 50}
	p.SetVersion(3)

	img, err := s.Upsert(context.Background(), p, store.UpsertOptions{})
	require.NoError(t, err)
	assert.NotNil(t, img)
	assert.Equal(t, int64(4), p.Version())

	require.Len(t, client.UpdateItemCalls, 1)
	call := client.UpdateItemCalls[0]
	assert.Equal(t, "marquee-test", *call.TableName)
	assert.Contains(t, *call.ConditionExpression, "attribute_not_exists(#version)")
	assert.Equal(t, types.ReturnValueAllNew, call.ReturnValues)
}

func TestUpsertVersionConflict(t *testing.T) {
	client := &storetest.Client{
		UpdateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{
				Item: projectRecord("p1", "Launch", 50, 9),
			}
		},
	}
	s := newTestStore(client)

	p := &Project{ID: "p1", Name: "Launch"}
	p.SetVersion(3)

	_, err := s.Upsert(context.Background(), p, store.UpsertOptions{})

	var conflict *store.VersionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(3), conflict.Attempted)
	assert.Equal(t, int64(9), conflict.Stored)
	assert.Equal(t, int64(3), p.Version(), "a failed write must not bump the in-memory version")
}

func TestUpsertCallerConditionFailed(t *testing.T) {
	// The stored version does not exceed the attempt, so the failure must
	// be pinned on the caller's condition, not on versioning.
	client := &storetest.Client{
		UpdateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{
				Item: projectRecord("p1", "Launch", 0, 3),
			}
		},
	}
	s := newTestStore(client)

	p := &Project{ID: "p1", Name: "Launch"}
	p.SetVersion(3)

	_, err := s.Upsert(context.Background(), p, store.UpsertOptions{
		Condition: "#remaining_capacity >= :qty",
		Names:     map[string]string{"#remaining_capacity": "remaining_capacity"},
		Values:    store.Record{":qty": store.Number(1)},
	})
	assert.ErrorIs(t, err, store.ErrConditionFailed)
}

func TestUpsertCallerConditionStaleVersion(t *testing.T) {
	// With an extra condition in play, a newer stored version still
	// surfaces as a version conflict.
	client := &storetest.Client{
		UpdateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{
				Item: projectRecord("p1", "Launch", 50, 7),
			}
		},
	}
	s := newTestStore(client)

	p := &Project{ID: "p1", Name: "Launch"}
	p.SetVersion(3)

	_, err := s.Upsert(context.Background(), p, store.UpsertOptions{
		Condition: "#remaining_capacity >= :qty",
		Names:     map[string]string{"#remaining_capacity": "remaining_capacity"},
		Values:    store.Record{":qty": store.Number(1)},
	})

	var conflict *store.VersionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, int64(7), conflict.Stored)
}

func TestUpsertThrottled(t *testing.T) {
	client := &storetest.Client{
		UpdateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ProvisionedThroughputExceededException{}
		},
	}
	s := newTestStore(client)

	p := &Project{ID: "p1", Name: "Launch"}
	_, err := s.Upsert(context.Background(), p, store.UpsertOptions{})
	assert.ErrorIs(t, err, store.ErrThrottled)
}

func TestUpsertUnversionedConditionFailure(t *testing.T) {
	client := &storetest.Client{
		UpdateItemFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{}
		},
	}
	s := newTestStore(client)

	o := &Owner{ID: "o1", ProjectID: "p1", Name: "Ada"}
	_, err := s.Upsert(context.Background(), o, store.UpsertOptions{
		Condition: "attribute_not_exists(PK)",
	})
	assert.ErrorIs(t, err, store.ErrConditionFailed)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(&storetest.Client{})

	p := &Project{ID: "missing"}
	err := s.Get(context.Background(), p)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetHydrates(t *testing.T) {
	client := &storetest.Client{
		GetItemFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{
				Item: projectRecord("p1", "Launch", 42, 2),
			}, nil
		},
	}
	s := newTestStore(client)

	p := &Project{ID: "p1"}
	require.NoError(t, s.Get(context.Background(), p))
	assert.Equal(t, "Launch", p.Name)
	assert.Equal(t, int64(42), p.Remaining)
	assert.Equal(t, int64(2), p.Version())

	require.Len(t, client.GetItemCalls, 1)
	assert.True(t, *client.GetItemCalls[0].ConsistentRead)
}

func TestForOrganisationBindsTable(t *testing.T) {
	s := store.New(&storetest.Client{}, store.Config{
		Table:         "marquee",
		TableTemplate: "marquee-org_name",
	})

	bound := s.ForOrganisation("the-organisation")
	assert.Equal(t, "marquee-the-organisation", bound.TableName())
	assert.Equal(t, "marquee", s.TableName(), "binding must not mutate the parent store")
}
