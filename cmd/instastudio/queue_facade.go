package main

import (
	"context"
	"strings"

	"instastudio/internal/api"
	"instastudio/internal/ipc"
	"instastudio/internal/queue"
)

// queueAPI abstracts queue operations so commands behave identically whether
// they talk to the daemon over IPC or to the queue database directly.
type queueAPI interface {
	List(ctx context.Context, statuses []string) ([]api.QueueItem, error)
	Describe(ctx context.Context, id int64) (*api.QueueItem, error)
	Health(ctx context.Context) (api.QueueHealth, error)
	Clear(ctx context.Context, completedOnly bool) (int64, error)
	ResetStuck(ctx context.Context) (int64, error)
	RetryAll(ctx context.Context) (int64, error)
	Retry(ctx context.Context, ids []int64) (api.RetryItemsResult, error)
	Remove(ctx context.Context, ids []int64) (api.RemoveItemsResult, error)
}

// --- IPC adapter ---

type queueIPCAdapter struct {
	client *ipc.Client
}

func (a *queueIPCAdapter) List(_ context.Context, statuses []string) ([]api.QueueItem, error) {
	resp, err := a.client.QueueList(statuses)
	if err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (a *queueIPCAdapter) Describe(_ context.Context, id int64) (*api.QueueItem, error) {
	resp, err := a.client.QueueDescribe(id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, nil
		}
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return &resp.Item, nil
}

func (a *queueIPCAdapter) Health(_ context.Context) (api.QueueHealth, error) {
	resp, err := a.client.QueueHealth()
	if err != nil {
		return api.QueueHealth{}, err
	}
	return api.QueueHealth{
		Total:      resp.Total,
		Pending:    resp.Pending,
		Processing: resp.Processing,
		Failed:     resp.Failed,
		Review:     resp.Review,
		Completed:  resp.Completed,
	}, nil
}

func (a *queueIPCAdapter) Clear(_ context.Context, completedOnly bool) (int64, error) {
	resp, err := a.client.QueueClear(completedOnly)
	if err != nil {
		return 0, err
	}
	return resp.Removed, nil
}

func (a *queueIPCAdapter) ResetStuck(_ context.Context) (int64, error) {
	resp, err := a.client.QueueReset()
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *queueIPCAdapter) RetryAll(_ context.Context) (int64, error) {
	resp, err := a.client.QueueRetry(nil)
	if err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (a *queueIPCAdapter) Retry(ctx context.Context, ids []int64) (api.RetryItemsResult, error) {
	result := api.RetryItemsResult{Items: make([]api.RetryItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := a.Describe(ctx, id)
		if err != nil {
			return api.RetryItemsResult{}, err
		}
		if item == nil {
			result.Items = append(result.Items, api.RetryItemResult{ID: id, Outcome: api.RetryItemNotFound})
			continue
		}
		if !statusIsRetryable(item.Status) {
			result.Items = append(result.Items, api.RetryItemResult{ID: id, Outcome: api.RetryItemNotRetryable})
			continue
		}
		resp, err := a.client.QueueRetry([]int64{id})
		if err != nil {
			return api.RetryItemsResult{}, err
		}
		if resp.Updated > 0 {
			result.UpdatedCount += resp.Updated
			result.Items = append(result.Items, api.RetryItemResult{ID: id, Outcome: api.RetryItemUpdated})
			continue
		}
		result.Items = append(result.Items, api.RetryItemResult{ID: id, Outcome: api.RetryItemNotRetryable})
	}
	return result, nil
}

func (a *queueIPCAdapter) Remove(ctx context.Context, ids []int64) (api.RemoveItemsResult, error) {
	result := api.RemoveItemsResult{Items: make([]api.RemoveItemResult, 0, len(ids))}
	for _, id := range ids {
		item, err := a.Describe(ctx, id)
		if err != nil {
			return api.RemoveItemsResult{}, err
		}
		if item == nil {
			result.Items = append(result.Items, api.RemoveItemResult{ID: id, Outcome: api.RemoveItemNotFound})
			continue
		}
		if _, err := a.client.QueueRemove([]int64{id}); err != nil {
			return api.RemoveItemsResult{}, err
		}
		result.RemovedCount++
		result.Items = append(result.Items, api.RemoveItemResult{ID: id, Outcome: api.RemoveItemRemoved})
	}
	return result, nil
}

// --- Store adapter ---

type queueStoreAdapter struct {
	store   *queue.Store
	service *api.QueueService
}

func (a *queueStoreAdapter) List(ctx context.Context, statuses []string) ([]api.QueueItem, error) {
	var filters []queue.Status
	for _, s := range statuses {
		if parsed, ok := queue.ParseStatus(s); ok {
			filters = append(filters, parsed)
		}
	}
	return a.service.List(ctx, filters...)
}

func (a *queueStoreAdapter) Describe(ctx context.Context, id int64) (*api.QueueItem, error) {
	return a.service.Describe(ctx, id)
}

func (a *queueStoreAdapter) Health(ctx context.Context) (api.QueueHealth, error) {
	return a.service.Health(ctx)
}

func (a *queueStoreAdapter) Clear(ctx context.Context, completedOnly bool) (int64, error) {
	return a.service.Clear(ctx, completedOnly)
}

func (a *queueStoreAdapter) ResetStuck(ctx context.Context) (int64, error) {
	return a.service.ResetStuck(ctx)
}

func (a *queueStoreAdapter) RetryAll(ctx context.Context) (int64, error) {
	items, err := a.store.List(ctx, queue.StatusFailed, queue.StatusReview)
	if err != nil {
		return 0, err
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	result, err := api.RetryItemsByID(ctx, a.store, ids)
	if err != nil {
		return 0, err
	}
	return result.UpdatedCount, nil
}

func (a *queueStoreAdapter) Retry(ctx context.Context, ids []int64) (api.RetryItemsResult, error) {
	return api.RetryItemsByID(ctx, a.store, ids)
}

func (a *queueStoreAdapter) Remove(ctx context.Context, ids []int64) (api.RemoveItemsResult, error) {
	return api.RemoveItemsByID(ctx, a.store, ids)
}

func statusIsRetryable(value string) bool {
	status, ok := queue.ParseStatus(value)
	return ok && (status == queue.StatusFailed || status == queue.StatusReview)
}
