// Package storetest provides a scriptable fake DynamoDB client for tests.
package storetest

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Client is a fake of the store's DynamoDB client. Each operation records
// its inputs and delegates to an optional hook; a nil hook returns an
// empty success. Safe for concurrent use.
type Client struct {
	mu sync.Mutex

	GetItemFn            func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	PutItemFn            func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	UpdateItemFn         func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	QueryFn              func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	BatchWriteItemFn     func(*dynamodb.BatchWriteItemInput) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItemsFn func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)

	GetItemCalls            []*dynamodb.GetItemInput
	PutItemCalls            []*dynamodb.PutItemInput
	UpdateItemCalls         []*dynamodb.UpdateItemInput
	QueryCalls              []*dynamodb.QueryInput
	BatchWriteItemCalls     []*dynamodb.BatchWriteItemInput
	TransactWriteItemsCalls []*dynamodb.TransactWriteItemsInput
}

func (c *Client) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	c.GetItemCalls = append(c.GetItemCalls, params)
	fn := c.GetItemFn
	c.mu.Unlock()
	if fn == nil {
		return &dynamodb.GetItemOutput{}, nil
	}
	return fn(params)
}

func (c *Client) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	c.PutItemCalls = append(c.PutItemCalls, params)
	fn := c.PutItemFn
	c.mu.Unlock()
	if fn == nil {
		return &dynamodb.PutItemOutput{}, nil
	}
	return fn(params)
}

func (c *Client) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	c.UpdateItemCalls = append(c.UpdateItemCalls, params)
	fn := c.UpdateItemFn
	c.mu.Unlock()
	if fn == nil {
		return &dynamodb.UpdateItemOutput{}, nil
	}
	return fn(params)
}

func (c *Client) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	c.QueryCalls = append(c.QueryCalls, params)
	fn := c.QueryFn
	c.mu.Unlock()
	if fn == nil {
		return &dynamodb.QueryOutput{}, nil
	}
	return fn(params)
}

func (c *Client) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	c.mu.Lock()
	c.BatchWriteItemCalls = append(c.BatchWriteItemCalls, params)
	fn := c.BatchWriteItemFn
	c.mu.Unlock()
	if fn == nil {
		return &dynamodb.BatchWriteItemOutput{}, nil
	}
	return fn(params)
}

func (c *Client) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	c.mu.Lock()
	c.TransactWriteItemsCalls = append(c.TransactWriteItemsCalls, params)
	fn := c.TransactWriteItemsFn
	c.mu.Unlock()
	if fn == nil {
		return &dynamodb.TransactWriteItemsOutput{}, nil
	}
	return fn(params)
}
