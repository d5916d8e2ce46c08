package api

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"instastudio/internal/queue"
)

type mockQueueStore struct {
	items     map[int64]*queue.Item
	health    queue.HealthSummary
	cleared   []bool
	reset     int64
	listErr   error
	getErr    error
	healthErr error
	removeErr error
}

func (m *mockQueueStore) List(context.Context, ...queue.Status) ([]*queue.Item, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*queue.Item, 0, len(m.items))
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

func (m *mockQueueStore) GetByID(_ context.Context, id int64) (*queue.Item, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.items[id], nil
}

func (m *mockQueueStore) Health(context.Context) (queue.HealthSummary, error) {
	return m.health, m.healthErr
}

func (m *mockQueueStore) Retry(_ context.Context, id int64) (*queue.Item, error) {
	item := m.items[id]
	if item == nil {
		return nil, fmt.Errorf("item %d not found", id)
	}
	if item.Status != queue.StatusFailed && item.Status != queue.StatusReview {
		return nil, fmt.Errorf("item %d is %s", id, item.Status)
	}
	item.Status = queue.StatusPending
	return item, nil
}

func (m *mockQueueStore) Remove(_ context.Context, id int64) error {
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.items, id)
	return nil
}

func (m *mockQueueStore) Clear(_ context.Context, completedOnly bool) (int64, error) {
	m.cleared = append(m.cleared, completedOnly)
	return int64(len(m.items)), nil
}

func (m *mockQueueStore) ResetStuckProcessing(context.Context) (int64, error) {
	return m.reset, nil
}

func TestQueueService_List(t *testing.T) {
	now := time.Now().UTC()
	store := &mockQueueStore{items: map[int64]*queue.Item{
		1: {
			ID:        1,
			JobType:   queue.JobEdit,
			Title:     "Example",
			Status:    queue.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}}
	svc := NewQueueService(store)
	got, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected item count: %d", len(got))
	}
	if got[0].Title != "Example" {
		t.Fatalf("unexpected title: %q", got[0].Title)
	}
	if got[0].Status != string(queue.StatusPending) {
		t.Fatalf("unexpected status: %q", got[0].Status)
	}
	if got[0].CreatedAt == "" || got[0].UpdatedAt == "" {
		t.Fatalf("expected timestamps to be formatted")
	}
}

func TestQueueService_ListError(t *testing.T) {
	errSentinel := errors.New("boom")
	svc := NewQueueService(&mockQueueStore{listErr: errSentinel})
	_, err := svc.List(context.Background())
	if !errors.Is(err, errSentinel) {
		t.Fatalf("expected error %v, got %v", errSentinel, err)
	}
}

func TestQueueService_Health(t *testing.T) {
	svc := NewQueueService(&mockQueueStore{health: queue.HealthSummary{
		Total: 3, Pending: 2, Failed: 1,
	}})
	got, err := svc.Health(context.Background())
	if err != nil {
		t.Fatalf("Health returned error: %v", err)
	}
	if got.Total != 3 || got.Pending != 2 || got.Failed != 1 {
		t.Fatalf("unexpected health counts: %+v", got)
	}
}

func TestQueueService_Describe(t *testing.T) {
	svc := NewQueueService(&mockQueueStore{items: map[int64]*queue.Item{
		7: {ID: 7, JobType: queue.JobRepurpose, Title: "Best Of"},
	}})
	item, err := svc.Describe(context.Background(), 7)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if item == nil {
		t.Fatal("Describe returned nil item")
	}
	if item.ID != 7 {
		t.Fatalf("unexpected id: %d", item.ID)
	}
}

func TestQueueService_DescribeMissing(t *testing.T) {
	svc := NewQueueService(&mockQueueStore{items: map[int64]*queue.Item{}})
	item, err := svc.Describe(context.Background(), 99)
	if err != nil {
		t.Fatalf("Describe returned error: %v", err)
	}
	if item != nil {
		t.Fatalf("expected nil item for missing id, got %+v", item)
	}
}

func TestQueueService_Clear(t *testing.T) {
	store := &mockQueueStore{items: map[int64]*queue.Item{1: {ID: 1}}}
	svc := NewQueueService(store)
	if _, err := svc.Clear(context.Background(), true); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if len(store.cleared) != 1 || !store.cleared[0] {
		t.Fatalf("expected completedOnly clear, got %+v", store.cleared)
	}
}
