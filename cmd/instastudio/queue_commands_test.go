package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"instastudio/internal/queue"
)

func TestQueueStatusAndList(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType:    queue.JobEdit,
		SourcePath: "/media/alpha.mp4",
		Command:    "trim the intro",
	}); err != nil {
		t.Fatalf("alpha item: %v", err)
	}

	beta, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType: queue.JobCompilation,
		Title:   "Beta Rewind",
		Command: "best of the month",
	})
	if err != nil {
		t.Fatalf("beta item: %v", err)
	}
	beta.SetFailed("render exploded")
	if err := env.store.Update(ctx, beta); err != nil {
		t.Fatalf("beta failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "Failed")

	out, _, err = runCLI(t, []string{"queue", "list"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "alpha.mp4")
	requireContains(t, out, "Beta Rewind")

	out, _, err = runCLI(t, []string{"queue", "list", "--status", "failed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --status failed: %v", err)
	}
	requireContains(t, out, "Beta Rewind")
	if strings.Contains(out, "alpha.mp4") {
		t.Fatalf("expected pending item to be filtered out, got:\n%s", out)
	}
}

func TestQueueRetryAndClear(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType:    queue.JobEdit,
		SourcePath: "/media/alpha.mp4",
		Command:    "add captions",
	})
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.SetFailed("translation failed")
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry: %v", err)
	}
	requireContains(t, out, "Retried 1 items")

	updated, err := env.store.GetByID(ctx, alpha.ID)
	if err != nil {
		t.Fatalf("lookup alpha: %v", err)
	}
	if updated.Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	updated.Status = queue.StatusCompleted
	if err := env.store.Update(ctx, updated); err != nil {
		t.Fatalf("mark completed: %v", err)
	}

	out, _, err = runCLI(t, []string{"queue", "clear", "--completed"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue clear --completed: %v", err)
	}
	requireContains(t, out, "Cleared 1 completed items")
}

func TestQueueRetrySpecificID(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	alpha, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType:    queue.JobEdit,
		SourcePath: "/media/alpha.mp4",
		Command:    "speed up 2x",
	})
	if err != nil {
		t.Fatalf("alpha: %v", err)
	}
	alpha.SetFailed("assembly failed")
	if err := env.store.Update(ctx, alpha); err != nil {
		t.Fatalf("alpha failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "retry", fmt.Sprintf("%d", alpha.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry specific: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d reset for retry", alpha.ID))

	out, _, err = runCLI(t, []string{"queue", "retry", "9999"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue retry missing: %v", err)
	}
	requireContains(t, out, "Item 9999 not found")
}

func TestQueueRemoveCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType: queue.JobRepurpose,
		Command: "make a highlight reel",
	})
	if err != nil {
		t.Fatalf("item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "remove", fmt.Sprintf("%d", item.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Item %d removed", item.ID))

	removed, err := env.store.GetByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("lookup removed: %v", err)
	}
	if removed != nil {
		t.Fatalf("expected item %d to be gone", item.ID)
	}
}

func TestQueueShowCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	item, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType:    queue.JobEdit,
		SourcePath: "/media/clip.mp4",
		Command:    "trim to 30 seconds",
		Caption:    "fresh cut",
	})
	if err != nil {
		t.Fatalf("item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "show", fmt.Sprintf("%d", item.ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue show: %v", err)
	}
	requireContains(t, out, "clip.mp4")
	requireContains(t, out, "trim to 30 seconds")
	requireContains(t, out, "Pending")
}

func TestQueueRetryInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"queue", "retry", "abc"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid item id") {
		t.Fatalf("expected invalid id error, got %v", err)
	}
}

func TestQueueListJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	if _, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType:    queue.JobEdit,
		SourcePath: "/media/alpha.mp4",
		Command:    "add music",
	}); err != nil {
		t.Fatalf("alpha item: %v", err)
	}
	if _, err := env.store.NewItem(ctx, queue.NewItemParams{
		JobType: queue.JobRepurpose,
		Command: "remix last week",
	}); err != nil {
		t.Fatalf("beta item: %v", err)
	}

	out, _, err := runCLI(t, []string{"queue", "list", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("queue list --json: %v", err)
	}

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	if len(payload.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(payload.Items))
	}
	for _, item := range payload.Items {
		if _, ok := item["id"]; !ok {
			t.Fatal("missing 'id' key in JSON item")
		}
		if _, ok := item["status"]; !ok {
			t.Fatal("missing 'status' key in JSON item")
		}
	}
}
