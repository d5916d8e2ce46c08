package api

import "context"

type RemoveItemOutcome string

const (
	RemoveItemRemoved  RemoveItemOutcome = "removed"
	RemoveItemNotFound RemoveItemOutcome = "not_found"
)

type RemoveItemResult struct {
	ID      int64             `json:"id"`
	Outcome RemoveItemOutcome `json:"outcome"`
}

type RemoveItemsResult struct {
	RemovedCount int64              `json:"removedCount"`
	Items        []RemoveItemResult `json:"items"`
}

// RemoveItemsByID removes queue items one-by-one so each ID can report removed/not_found.
func RemoveItemsByID(ctx context.Context, store QueueStore, ids []int64) (RemoveItemsResult, error) {
	result := RemoveItemsResult{Items: make([]RemoveItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := store.GetByID(ctx, id)
		if err != nil {
			return RemoveItemsResult{}, err
		}
		if item == nil {
			result.Items = append(result.Items, RemoveItemResult{ID: id, Outcome: RemoveItemNotFound})
			continue
		}
		if err := store.Remove(ctx, id); err != nil {
			return RemoveItemsResult{}, err
		}
		result.RemovedCount++
		result.Items = append(result.Items, RemoveItemResult{ID: id, Outcome: RemoveItemRemoved})
	}
	return result, nil
}
