package translation_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"instastudio/internal/config"
	"instastudio/internal/queue"
	"instastudio/internal/services"
	"instastudio/internal/translation"
)

func llmServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{
						"content": content,
					},
				},
			},
		}
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func testConfig(t *testing.T, llmURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.BaseURL = llmURL
	cfg.Paths.MusicDir = t.TempDir()
	return &cfg
}

func TestTranslatorEditJob(t *testing.T) {
	server := llmServer(t, `{
		"operations": [
			{"type": "trim", "params": {"start": 0, "end": 5}},
			{"type": "resize", "params": {"content_type": "reel"}}
		],
		"metadata": {"content_type": "reel", "description": "Trim and fit for reels"}
	}`)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{
		JobType:    queue.JobEdit,
		Command:    "trim the first 5 seconds and make it a reel",
		SourcePath: "/nonexistent/video.mp4",
	}
	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.OperationsJSON == "" {
		t.Fatalf("expected operations persisted on item")
	}
	if item.ContentType != "reel" {
		t.Fatalf("expected content type from metadata, got %q", item.ContentType)
	}
	if item.ProgressPercent != 100 {
		t.Fatalf("expected completed progress, got %v", item.ProgressPercent)
	}
}

func TestTranslatorPrepareRejectsMissingCommand(t *testing.T) {
	server := llmServer(t, `{}`)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{JobType: queue.JobEdit, SourcePath: "/in.mp4"}
	if err := handler.Prepare(context.Background(), item); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranslatorGeneratesPlanForRepurposeJob(t *testing.T) {
	server := llmServer(t, `{"reels": [{
		"title": "Morning Routine Hacks",
		"hook": "Wake up right",
		"duration": "30s",
		"caption": "Start your day #morning"
	}]}`)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{
		JobType:         queue.JobRepurpose,
		Command:         "fitness",
		SourcePostsJSON: `[{"media_id":"m1","media_url":"https://cdn.example.com/a.mp4","media_type":"VIDEO","caption":"leg day"}]`,
	}
	if err := handler.Prepare(context.Background(), item); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if item.PlanJSON == "" {
		t.Fatalf("expected generated plan persisted on item")
	}
	if item.Title != "Morning Routine Hacks" {
		t.Fatalf("expected title from plan, got %q", item.Title)
	}
	if item.Caption != "Start your day #morning" {
		t.Fatalf("expected caption from plan, got %q", item.Caption)
	}
}

func TestTranslatorAcceptsExistingPlan(t *testing.T) {
	server := llmServer(t, `{}`)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{
		JobType:         queue.JobCompilation,
		SourcePostsJSON: `[{"media_id":"m1","media_url":"https://cdn.example.com/a.mp4","media_type":"VIDEO"}]`,
		PlanJSON:        `{"title":"Best Of","duration":"45s"}`,
	}
	if err := handler.Execute(context.Background(), item); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if item.Title != "Best Of" {
		t.Fatalf("expected title copied from plan, got %q", item.Title)
	}
}

func TestTranslatorTransportFailureStaysRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{
		JobType:    queue.JobEdit,
		Command:    "trim it",
		SourcePath: "/in.mp4",
	}
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if got := services.FailureStatus(err); got != queue.StatusFailed {
		t.Fatalf("model transport failure must stay retryable, got status %q", got)
	}
}

func TestTranslatorMalformedResponseRoutesToReview(t *testing.T) {
	server := llmServer(t, `not json at all`)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{
		JobType:    queue.JobEdit,
		Command:    "trim it",
		SourcePath: "/in.mp4",
	}
	err := handler.Execute(context.Background(), item)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := services.FailureStatus(err); got != queue.StatusReview {
		t.Fatalf("unusable model output needs operator review, got status %q", got)
	}
}

func TestTranslatorRejectsMalformedExistingPlan(t *testing.T) {
	server := llmServer(t, `{}`)
	handler := translation.New(testConfig(t, server.URL), nil)

	item := &queue.Item{
		JobType:         queue.JobRepurpose,
		SourcePostsJSON: `[{"media_id":"m1","media_url":"https://cdn.example.com/a.mp4","media_type":"VIDEO"}]`,
		PlanJSON:        `{broken`,
	}
	if err := handler.Execute(context.Background(), item); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
