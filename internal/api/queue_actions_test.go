package api

import (
	"context"
	"testing"

	"instastudio/internal/queue"
)

func TestRetryItemsByID(t *testing.T) {
	store := &mockQueueStore{items: map[int64]*queue.Item{
		1: {ID: 1, Status: queue.StatusFailed},
		2: {ID: 2, Status: queue.StatusCompleted},
		4: {ID: 4, Status: queue.StatusReview},
	}}

	result, err := RetryItemsByID(context.Background(), store, []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("RetryItemsByID: %v", err)
	}
	if result.UpdatedCount != 2 {
		t.Fatalf("UpdatedCount = %d, want 2", result.UpdatedCount)
	}
	if len(result.Items) != 4 {
		t.Fatalf("len(Items) = %d, want 4", len(result.Items))
	}

	if result.Items[0].Outcome != RetryItemUpdated || result.Items[0].NewStatus != string(queue.StatusPending) {
		t.Fatalf("item 1 = %+v, want retried/pending", result.Items[0])
	}
	if result.Items[1].Outcome != RetryItemNotRetryable {
		t.Fatalf("item 2 outcome = %s, want %s", result.Items[1].Outcome, RetryItemNotRetryable)
	}
	if result.Items[2].Outcome != RetryItemNotFound {
		t.Fatalf("item 3 outcome = %s, want %s", result.Items[2].Outcome, RetryItemNotFound)
	}
	if result.Items[3].Outcome != RetryItemUpdated {
		t.Fatalf("item 4 outcome = %s, want %s", result.Items[3].Outcome, RetryItemUpdated)
	}
	if store.items[1].Status != queue.StatusPending {
		t.Fatalf("item 1 status = %s, want pending", store.items[1].Status)
	}
}
