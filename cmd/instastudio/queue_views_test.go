package main

import (
	"testing"

	"instastudio/internal/api"
)

func TestQueueItemTitleFallbacks(t *testing.T) {
	cases := []struct {
		name     string
		item     api.QueueItem
		expected string
	}{
		{
			name:     "explicit title wins",
			item:     api.QueueItem{Title: "August Rewind", SourcePath: "/media/a.mp4"},
			expected: "August Rewind",
		},
		{
			name:     "source basename",
			item:     api.QueueItem{SourcePath: "/media/clips/beach.mp4"},
			expected: "beach.mp4",
		},
		{
			name:     "command fallback",
			item:     api.QueueItem{Command: "make a highlight reel"},
			expected: "make a highlight reel",
		},
		{
			name:     "untitled",
			item:     api.QueueItem{},
			expected: "Untitled",
		},
	}
	for _, tc := range cases {
		if got := queueItemTitle(tc.item); got != tc.expected {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.expected, got)
		}
	}
}

func TestFormatStatusLabel(t *testing.T) {
	cases := map[string]string{
		"pending":     "Pending",
		"translating": "Translating",
		"failed":      "Failed",
		"":            "",
	}
	for input, expected := range cases {
		if got := formatStatusLabel(input); got != expected {
			t.Fatalf("%q: expected %q, got %q", input, expected, got)
		}
	}
}

func TestFormatProgress(t *testing.T) {
	empty := api.QueueItem{}
	if got := formatProgress(empty); got != "-" {
		t.Fatalf("expected '-', got %q", got)
	}

	withPercent := api.QueueItem{Progress: api.QueueProgress{Stage: "Assembling", Percent: 45}}
	if got := formatProgress(withPercent); got != "Assembling 45%" {
		t.Fatalf("expected 'Assembling 45%%', got %q", got)
	}

	stageOnly := api.QueueItem{Progress: api.QueueProgress{Stage: "Translating"}}
	if got := formatProgress(stageOnly); got != "Translating" {
		t.Fatalf("expected 'Translating', got %q", got)
	}
}

func TestBuildQueueListRowsNewestFirst(t *testing.T) {
	items := []api.QueueItem{
		{ID: 1, JobType: "edit", Title: "Older", Status: "pending", CreatedAt: "2026-08-01T10:00:00Z"},
		{ID: 2, JobType: "edit", Title: "Newer", Status: "pending", CreatedAt: "2026-08-02T10:00:00Z"},
	}
	rows := buildQueueListRows(items)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][2] != "Newer" {
		t.Fatalf("expected newest item first, got %q", rows[0][2])
	}
	if rows[1][2] != "Older" {
		t.Fatalf("expected older item second, got %q", rows[1][2])
	}
}

func TestBuildQueueHealthRows(t *testing.T) {
	rows := buildQueueHealthRows(api.QueueHealth{Total: 5, Pending: 2, Processing: 1, Completed: 2})
	if len(rows) != 6 {
		t.Fatalf("expected 6 rows, got %d", len(rows))
	}
	if rows[0][0] != "Pending" || rows[0][1] != "2" {
		t.Fatalf("unexpected first row: %v", rows[0])
	}
	if rows[5][0] != "Total" || rows[5][1] != "5" {
		t.Fatalf("unexpected total row: %v", rows[5])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("expected unchanged, got %q", got)
	}
	long := truncate("a command that runs on far too long", 10)
	if len([]rune(long)) != 10 {
		t.Fatalf("expected 10 runes, got %d (%q)", len([]rune(long)), long)
	}
}
