package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"instastudio/internal/plan"
	"instastudio/internal/queue"
	"instastudio/internal/renderspec"
	"instastudio/internal/repurpose"
)

// scheduleFormats are accepted layouts for job schedule timestamps.
var scheduleFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Submitter captures the queue operations job submission needs.
type Submitter interface {
	NewItem(ctx context.Context, params queue.NewItemParams) (*queue.Item, error)
}

// SubmitService validates job requests and creates queue entries for them.
// Both the CLI and the POST /api/jobs endpoint go through this service.
type SubmitService struct {
	store Submitter
}

// NewSubmitService constructs a SubmitService around the provided store.
func NewSubmitService(store Submitter) *SubmitService {
	if store == nil {
		return nil
	}
	return &SubmitService{store: store}
}

// EditRequest describes a natural-language edit job.
type EditRequest struct {
	SourcePath  string `json:"sourcePath"`
	Command     string `json:"command"`
	ContentType string `json:"contentType,omitempty"`
	Caption     string `json:"caption,omitempty"`
	Publish     bool   `json:"publish,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
}

// RepurposeRequest describes a repurpose job over existing posts.
type RepurposeRequest struct {
	Command     string                 `json:"command,omitempty"`
	Posts       []repurpose.SourcePost `json:"posts"`
	PlanJSON    string                 `json:"plan,omitempty"`
	ContentType string                 `json:"contentType,omitempty"`
	Caption     string                 `json:"caption,omitempty"`
	Publish     bool                   `json:"publish,omitempty"`
	Schedule    string                 `json:"schedule,omitempty"`
	Seed        int64                  `json:"seed,omitempty"`
}

// CompilationRequest describes a compilation job over existing posts.
type CompilationRequest struct {
	Command     string                 `json:"command,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Posts       []repurpose.SourcePost `json:"posts"`
	PlanJSON    string                 `json:"plan,omitempty"`
	ContentType string                 `json:"contentType,omitempty"`
	Caption     string                 `json:"caption,omitempty"`
	Publish     bool                   `json:"publish,omitempty"`
	Schedule    string                 `json:"schedule,omitempty"`
	Seed        int64                  `json:"seed,omitempty"`
}

// SubmitEdit validates an edit request and enqueues it.
func (s *SubmitService) SubmitEdit(ctx context.Context, req EditRequest) (*queue.Item, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("queue store is required")
	}
	source := strings.TrimSpace(req.SourcePath)
	if source == "" {
		return nil, fmt.Errorf("source file path is required")
	}
	source, _ = filepath.Abs(source)
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source file %q not found", source)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source path %q is a directory", source)
	}
	command := strings.TrimSpace(req.Command)
	if command == "" {
		return nil, fmt.Errorf("edit command is required")
	}
	contentType, err := normalizeContentType(req.ContentType)
	if err != nil {
		return nil, err
	}
	scheduledAt, err := parseSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	return s.store.NewItem(ctx, queue.NewItemParams{
		JobType:      queue.JobEdit,
		ContentType:  contentType,
		Command:      command,
		SourcePath:   source,
		Caption:      strings.TrimSpace(req.Caption),
		NeedsPublish: req.Publish,
		ScheduledAt:  scheduledAt,
	})
}

// SubmitRepurpose validates a repurpose request and enqueues it.
func (s *SubmitService) SubmitRepurpose(ctx context.Context, req RepurposeRequest) (*queue.Item, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("queue store is required")
	}
	postsJSON, err := encodeSourcePosts(req.Posts, 1)
	if err != nil {
		return nil, err
	}
	planJSON, err := normalizePlan(req.PlanJSON)
	if err != nil {
		return nil, err
	}
	if planJSON == "" && strings.TrimSpace(req.Command) == "" {
		return nil, fmt.Errorf("either a content plan or a planning command is required")
	}
	contentType, err := normalizeContentType(req.ContentType)
	if err != nil {
		return nil, err
	}
	scheduledAt, err := parseSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	return s.store.NewItem(ctx, queue.NewItemParams{
		JobType:         queue.JobRepurpose,
		ContentType:     contentType,
		Command:         strings.TrimSpace(req.Command),
		SourcePostsJSON: postsJSON,
		PlanJSON:        planJSON,
		Caption:         strings.TrimSpace(req.Caption),
		NeedsPublish:    req.Publish,
		ScheduledAt:     scheduledAt,
		Seed:            req.Seed,
	})
}

// SubmitCompilation validates a compilation request and enqueues it.
// Compilations need at least two source posts to stitch together.
func (s *SubmitService) SubmitCompilation(ctx context.Context, req CompilationRequest) (*queue.Item, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("queue store is required")
	}
	postsJSON, err := encodeSourcePosts(req.Posts, 2)
	if err != nil {
		return nil, err
	}
	planJSON, err := normalizePlan(req.PlanJSON)
	if err != nil {
		return nil, err
	}
	if planJSON == "" && strings.TrimSpace(req.Command) == "" {
		return nil, fmt.Errorf("either a content plan or a planning command is required")
	}
	contentType, err := normalizeContentType(req.ContentType)
	if err != nil {
		return nil, err
	}
	scheduledAt, err := parseSchedule(req.Schedule)
	if err != nil {
		return nil, err
	}

	return s.store.NewItem(ctx, queue.NewItemParams{
		JobType:         queue.JobCompilation,
		ContentType:     contentType,
		Title:           strings.TrimSpace(req.Title),
		Command:         strings.TrimSpace(req.Command),
		SourcePostsJSON: postsJSON,
		PlanJSON:        planJSON,
		Caption:         strings.TrimSpace(req.Caption),
		NeedsPublish:    req.Publish,
		ScheduledAt:     scheduledAt,
		Seed:            req.Seed,
	})
}

func normalizeContentType(value string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", nil
	}
	if _, err := renderspec.Lookup(trimmed); err != nil {
		return "", fmt.Errorf("unknown content type %q (known: %s)",
			trimmed, strings.Join(renderspec.ContentTypes(), ", "))
	}
	return trimmed, nil
}

func encodeSourcePosts(posts []repurpose.SourcePost, minPosts int) (string, error) {
	if len(posts) < minPosts {
		return "", fmt.Errorf("at least %d source post(s) required, got %d", minPosts, len(posts))
	}
	for i, post := range posts {
		if strings.TrimSpace(post.MediaURL) == "" {
			return "", fmt.Errorf("source post %d is missing a media url", i+1)
		}
	}
	raw, err := json.Marshal(posts)
	if err != nil {
		return "", fmt.Errorf("encode source posts: %w", err)
	}
	return string(raw), nil
}

func normalizePlan(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if _, err := plan.Decode([]byte(trimmed)); err != nil {
		return "", fmt.Errorf("invalid content plan: %w", err)
	}
	return trimmed, nil
}

func parseSchedule(value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	for _, layout := range scheduleFormats {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("invalid schedule %q (use RFC3339 or YYYY-MM-DD HH:MM)", trimmed)
}
