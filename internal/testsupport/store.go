package testsupport

import (
	"context"
	"testing"

	"instastudio/internal/config"
	"instastudio/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewEditItem creates an edit job for tests using the provided store.
func NewEditItem(t testing.TB, store *queue.Store, sourcePath, command string) *queue.Item {
	t.Helper()

	item, err := store.NewItem(context.Background(), queue.NewItemParams{
		JobType:    queue.JobEdit,
		SourcePath: sourcePath,
		Command:    command,
	})
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
