package stage

import (
	"errors"
	"testing"

	"instastudio/internal/services"
)

func TestParseOperations_Valid(t *testing.T) {
	raw := `[{"type":"trim","params":{"start":0,"end":5}}]`
	ops, err := ParseOperations(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != "trim" {
		t.Fatalf("unexpected operations: %+v", ops)
	}
}

func TestParseOperations_Empty(t *testing.T) {
	_, err := ParseOperations("")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty input, got %v", err)
	}
}

func TestParseOperations_Invalid(t *testing.T) {
	_, err := ParseOperations("{invalid json")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for invalid JSON, got %v", err)
	}
}

func TestParsePlan_Valid(t *testing.T) {
	raw := `{"title":"Morning Routine","hook":"Wake up right","duration":"30s"}`
	p, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Title != "Morning Routine" {
		t.Fatalf("unexpected title: %q", p.Title)
	}
}

func TestParsePlan_Empty(t *testing.T) {
	_, err := ParsePlan("  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty input, got %v", err)
	}
}

func TestParseSourcePosts(t *testing.T) {
	posts, err := ParseSourcePosts(`[{"media_id":"m1","media_url":"https://cdn.example.com/a.mp4","media_type":"VIDEO"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(posts) != 1 || posts[0].MediaID != "m1" {
		t.Fatalf("unexpected posts: %+v", posts)
	}

	if posts, err := ParseSourcePosts(""); err != nil || posts != nil {
		t.Fatalf("empty input should yield no posts, got %v / %v", posts, err)
	}

	if _, err := ParseSourcePosts("not json"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
