package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BatchWrite bulk-inserts entities in chunks of up to 25, with no
// atomicity and no conditions; it is strictly for independent,
// idempotent-safe creates. Entities the store reports as unprocessed
// (capacity throttling and the like) are matched back by structural
// equality of the serialized row and returned separately; retrying or
// requeueing them is the caller's job.
func (s *Store) BatchWrite(ctx context.Context, entities []Entity) (successful, unprocessed []Entity, err error) {
	for start := 0; start < len(entities); start += maxBatchSize {
		end := min(start+maxBatchSize, len(entities))
		chunk := entities[start:end]

		records := make([]Record, len(chunk))
		requests := make([]types.WriteRequest, len(chunk))
		for i, e := range chunk {
			rec, merr := Marshal(e, true)
			if merr != nil {
				return successful, unprocessed, merr
			}
			records[i] = rec
			requests[i] = types.WriteRequest{
				PutRequest: &types.PutRequest{Item: rec},
			}
		}

		out, werr := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.table: requests,
			},
		})
		if werr != nil {
			return successful, unprocessed, fmt.Errorf("batch write: %w", werr)
		}

		pending := out.UnprocessedItems[s.table]
		for i, e := range chunk {
			if batchLeftUnprocessed(records[i], pending) {
				unprocessed = append(unprocessed, e)
			} else {
				successful = append(successful, e)
			}
		}
	}
	return successful, unprocessed, nil
}

// batchLeftUnprocessed reports whether the serialized row appears among the
// store's unprocessed put requests.
func batchLeftUnprocessed(rec Record, pending []types.WriteRequest) bool {
	for _, req := range pending {
		if req.PutRequest != nil && recordsEqual(rec, req.PutRequest.Item) {
			return true
		}
	}
	return false
}
