package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Query describes one key-condition query against the table or one of its
// secondary indexes.
type Query struct {
	// KeyCondition is the DynamoDB key condition expression.
	KeyCondition string

	// Names and Values supply the expression's placeholders.
	Names  map[string]string
	Values Record

	// Index optionally names a secondary index.
	Index string

	// Filter is an optional filter expression.
	Filter string

	// Descending reverses the sort-key order.
	Descending bool

	// Limit caps the number of rows per page (0 = store default).
	Limit int32
}

// Query fetches every row matching the key condition, paginating through
// all result pages.
func (s *Store) Query(ctx context.Context, q Query) ([]Record, error) {
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table),
		KeyConditionExpression:    aws.String(q.KeyCondition),
		ExpressionAttributeValues: q.Values,
	}
	if len(q.Names) > 0 {
		input.ExpressionAttributeNames = q.Names
	}
	if q.Index != "" {
		input.IndexName = aws.String(q.Index)
	}
	if q.Filter != "" {
		input.FilterExpression = aws.String(q.Filter)
	}
	if q.Descending {
		input.ScanIndexForward = aws.Bool(false)
	}
	if q.Limit > 0 {
		input.Limit = aws.Int32(q.Limit)
	}

	var rows []Record
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("query: %w", err)
		}
		for _, raw := range page.Items {
			rows = append(rows, raw)
		}
	}
	return rows, nil
}

// QueryOne loads the single entity matching the key condition into dst,
// returning ErrNotFound for an empty result. When several rows match, the
// first is used.
func (s *Store) QueryOne(ctx context.Context, dst Hydrator, q Query) error {
	rows, err := s.Query(ctx, q)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return dst.Hydrate(rows[0])
}

// QueryList loads every matching row as an independent entity. A row that
// fails validation is logged and skipped rather than aborting the query: a
// single malformed historical row must not break listing.
func (s *Store) QueryList(ctx context.Context, newEntity func() Hydrator, q Query) ([]Entity, error) {
	rows, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	entities := make([]Entity, 0, len(rows))
	for _, row := range rows {
		e := newEntity()
		if herr := e.Hydrate(row); herr != nil {
			s.logger.Warn("skipping malformed row",
				"entityType", e.EntityType(),
				"error", herr,
			)
			continue
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// QueryAssemble fetches the row family matching the key condition and
// merges it into the root aggregate via its related-entity declarations.
func (s *Store) QueryAssemble(ctx context.Context, root Assembler, q Query) error {
	rows, err := s.Query(ctx, q)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return Assemble(root, rows)
}
