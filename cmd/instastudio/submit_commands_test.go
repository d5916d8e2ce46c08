package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"instastudio/internal/queue"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestEditCommandQueuesJob(t *testing.T) {
	env := setupCLITestEnv(t)
	source := writeTempFile(t, env.baseDir, "clip.mp4", "fake video")

	out, _, err := runCLI(t, []string{"edit", source, "trim", "the", "first", "5", "seconds"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	requireContains(t, out, "Queued edit job as item #")

	items, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.JobType != queue.JobEdit {
		t.Fatalf("expected edit job, got %s", item.JobType)
	}
	if item.Command != "trim the first 5 seconds" {
		t.Fatalf("unexpected command: %q", item.Command)
	}
	if item.SourcePath != source {
		t.Fatalf("unexpected source: %q", item.SourcePath)
	}
}

func TestEditCommandMissingSource(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"edit", filepath.Join(env.baseDir, "missing.mp4"), "trim it"}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing source file")
	}
	requireContains(t, err.Error(), "not found")
}

func TestRepurposeCommandQueuesJob(t *testing.T) {
	env := setupCLITestEnv(t)
	postsPath := writeTempFile(t, env.baseDir, "posts.json", `[
		{"media_id": "1", "media_url": "https://cdn.example.com/a.mp4", "media_type": "VIDEO"}
	]`)

	out, _, err := runCLI(t, []string{
		"repurpose",
		"--posts", postsPath,
		"--command", "make a 30 second highlight reel",
		"--type", "reel",
		"--seed", "42",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("repurpose: %v", err)
	}
	requireContains(t, out, "Queued repurpose job as item #")

	items, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.JobType != queue.JobRepurpose {
		t.Fatalf("expected repurpose job, got %s", item.JobType)
	}
	if item.ContentType != "reel" {
		t.Fatalf("expected reel content type, got %q", item.ContentType)
	}
	if item.Seed != 42 {
		t.Fatalf("expected seed 42, got %d", item.Seed)
	}
	if item.SourcePostsJSON == "" {
		t.Fatal("expected source posts to be stored")
	}
}

func TestRepurposeCommandRequiresPlanOrCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	postsPath := writeTempFile(t, env.baseDir, "posts.json", `[
		{"media_id": "1", "media_url": "https://cdn.example.com/a.mp4", "media_type": "VIDEO"}
	]`)

	_, _, err := runCLI(t, []string{"repurpose", "--posts", postsPath}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error without plan or command")
	}
	requireContains(t, err.Error(), "either a content plan or a planning command is required")
}

func TestCompilationCommandRequiresTwoPosts(t *testing.T) {
	env := setupCLITestEnv(t)
	postsPath := writeTempFile(t, env.baseDir, "posts.json", `[
		{"media_id": "1", "media_url": "https://cdn.example.com/a.mp4", "media_type": "VIDEO"}
	]`)

	_, _, err := runCLI(t, []string{
		"compilation",
		"--posts", postsPath,
		"--command", "best of the month",
	}, env.socketPath, env.configPath)
	if err == nil {
		t.Fatal("expected error for a single source post")
	}
	requireContains(t, err.Error(), "at least 2 source post(s) required")
}

func TestCompilationCommandQueuesJob(t *testing.T) {
	env := setupCLITestEnv(t)
	postsPath := writeTempFile(t, env.baseDir, "posts.json", `[
		{"media_id": "1", "media_url": "https://cdn.example.com/a.mp4", "media_type": "VIDEO"},
		{"media_id": "2", "media_url": "https://cdn.example.com/b.mp4", "media_type": "VIDEO"}
	]`)

	out, _, err := runCLI(t, []string{
		"compilation",
		"--posts", postsPath,
		"--command", "best of August",
		"--title", "August Rewind",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("compilation: %v", err)
	}
	requireContains(t, out, "Queued compilation job as item #")

	items, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Title != "August Rewind" {
		t.Fatalf("expected title, got %q", items[0].Title)
	}
}

func TestScheduleFlagStoresTime(t *testing.T) {
	env := setupCLITestEnv(t)
	source := writeTempFile(t, env.baseDir, "clip.mp4", "fake video")

	out, _, err := runCLI(t, []string{
		"edit", source, "add captions",
		"--publish",
		"--schedule", "2026-09-05 18:00",
	}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("edit with schedule: %v", err)
	}
	requireContains(t, out, "Scheduled for")

	items, err := env.store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if !item.NeedsPublish {
		t.Fatal("expected needs_publish to be set")
	}
	if item.ScheduledAt == nil {
		t.Fatal("expected scheduled time to be stored")
	}
}

func TestEditCommandJSONOutput(t *testing.T) {
	env := setupCLITestEnv(t)
	source := writeTempFile(t, env.baseDir, "clip.mp4", "fake video")

	out, _, err := runCLI(t, []string{"edit", source, "trim it", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("edit --json: %v", err)
	}
	requireContains(t, out, `"jobType": "edit"`)
	requireContains(t, out, fmt.Sprintf("%q", source))
}
