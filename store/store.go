package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoClient is the subset of the DynamoDB API the store depends on.
// Satisfied by *dynamodb.Client and by test doubles.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store provides single-table DynamoDB operations over a denormalized
// entity family. A Store is stateless apart from its handles; every
// mutation reads current truth via the conditional-write mechanism, never
// via an in-memory cache.
type Store struct {
	client DynamoClient
	config Config
	logger *slog.Logger
	table  string
}

// New creates a new Store instance.
func New(client DynamoClient, config Config) *Store {
	return NewWithLogger(client, config, nil)
}

// NewWithLogger creates a new Store with a structured logger.
func NewWithLogger(client DynamoClient, config Config, logger *slog.Logger) *Store {
	config.validate()
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		client: client,
		config: config,
		logger: logger,
		table:  config.Table,
	}
}

// ForOrganisation returns a Store bound to the tenant's table.
func (s *Store) ForOrganisation(slug string) *Store {
	bound := *s
	bound.table = s.config.TableForOrganisation(slug)
	return &bound
}

// TableName returns the table this Store is bound to.
func (s *Store) TableName() string {
	return s.table
}

// Get loads a single entity by its derived primary key, returning
// ErrNotFound when no row exists.
func (s *Store) Get(ctx context.Context, dst Hydrator) error {
	key := dst.EntityKey()
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            key.DDB(),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("get %s: %w", key.PK, err)
	}
	if out.Item == nil {
		return ErrNotFound
	}
	return dst.Hydrate(out.Item)
}
