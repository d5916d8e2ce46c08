package api

import (
	"context"

	"instastudio/internal/queue"
)

type RetryItemOutcome string

const (
	RetryItemUpdated      RetryItemOutcome = "retried"
	RetryItemNotFound     RetryItemOutcome = "not_found"
	RetryItemNotRetryable RetryItemOutcome = "not_retryable"
)

type RetryItemResult struct {
	ID        int64            `json:"id"`
	Outcome   RetryItemOutcome `json:"outcome"`
	NewStatus string           `json:"newStatus,omitempty"`
}

type RetryItemsResult struct {
	UpdatedCount int64             `json:"updatedCount"`
	Items        []RetryItemResult `json:"items"`
}

// RetryItemsByID validates IDs and retries only failed or review items.
func RetryItemsByID(ctx context.Context, store QueueStore, ids []int64) (RetryItemsResult, error) {
	result := RetryItemsResult{Items: make([]RetryItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			return RetryItemsResult{}, err
		}
		if item == nil {
			result.Items = append(result.Items, RetryItemResult{ID: id, Outcome: RetryItemNotFound})
			continue
		}
		if item.Status != queue.StatusFailed && item.Status != queue.StatusReview {
			result.Items = append(result.Items, RetryItemResult{ID: id, Outcome: RetryItemNotRetryable})
			continue
		}
		updated, err := store.Retry(ctx, id)
		if err != nil {
			return RetryItemsResult{}, err
		}
		result.UpdatedCount++
		result.Items = append(result.Items, RetryItemResult{
			ID:        id,
			Outcome:   RetryItemUpdated,
			NewStatus: string(updated.Status),
		})
	}
	return result, nil
}
