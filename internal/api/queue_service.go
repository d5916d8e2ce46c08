package api

import (
	"context"

	"instastudio/internal/queue"
)

// QueueStore abstracts queue persistence interactions needed for API queries
// and queue maintenance actions.
type QueueStore interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Item, error)
	GetByID(ctx context.Context, id int64) (*queue.Item, error)
	Health(ctx context.Context) (queue.HealthSummary, error)
	Retry(ctx context.Context, id int64) (*queue.Item, error)
	Remove(ctx context.Context, id int64) error
	Clear(ctx context.Context, completedOnly bool) (int64, error)
	ResetStuckProcessing(ctx context.Context) (int64, error)
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	store QueueStore
}

// NewQueueService constructs a QueueService around the provided store.
func NewQueueService(store QueueStore) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// List returns queue items filtered by status.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	items, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromQueueItems(items), nil
}

// Health returns queue summary counts.
func (s *QueueService) Health(ctx context.Context) (QueueHealth, error) {
	if s == nil || s.store == nil {
		return QueueHealth{}, nil
	}
	summary, err := s.store.Health(ctx)
	if err != nil {
		return QueueHealth{}, err
	}
	return FromHealthSummary(summary), nil
}

// Describe fetches a single queue item.
func (s *QueueService) Describe(ctx context.Context, id int64) (*QueueItem, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	item, err := s.store.GetByID(ctx, id)
	if err != nil || item == nil {
		return nil, err
	}
	dto := FromQueueItem(item)
	return &dto, nil
}

// Clear deletes queue entries, optionally restricted to completed items.
func (s *QueueService) Clear(ctx context.Context, completedOnly bool) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.Clear(ctx, completedOnly)
}

// ResetStuck returns stuck processing items to pending.
func (s *QueueService) ResetStuck(ctx context.Context) (int64, error) {
	if s == nil || s.store == nil {
		return 0, nil
	}
	return s.store.ResetStuckProcessing(ctx)
}
