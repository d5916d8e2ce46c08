package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"instastudio/internal/notifications"
	"instastudio/internal/queue"
	"instastudio/internal/stage"
	"instastudio/internal/testsupport"
	"instastudio/internal/workflow"
)

// funcStage adapts a function to the stage handler contract for pipeline
// integration tests.
type funcStage struct {
	name string
	fn   func(context.Context, *queue.Item) error
}

func (f funcStage) Prepare(context.Context, *queue.Item) error { return nil }

func (f funcStage) Execute(ctx context.Context, item *queue.Item) error {
	return f.fn(ctx, item)
}

func (f funcStage) HealthCheck(context.Context) stage.Health { return stage.Healthy(f.name) }

func TestPipelineProcessesMixedQueue(t *testing.T) {
	outDir := t.TempDir()

	translator := funcStage{name: "translator", fn: func(_ context.Context, item *queue.Item) error {
		switch item.JobType {
		case queue.JobEdit:
			if strings.Contains(item.Command, "unreachable") {
				return errors.New("model endpoint unreachable")
			}
			item.OperationsJSON = `[{"type":"trim","params":{"start":0,"end":5}}]`
		default:
			item.PlanJSON = `{"title":"Weekly Highlights","duration":"30s"}`
			item.Title = "Weekly Highlights"
		}
		item.SetProgressComplete("Translated", "Command translated")
		return nil
	}}
	assembler := funcStage{name: "assembler", fn: func(_ context.Context, item *queue.Item) error {
		item.OutputPath = filepath.Join(outDir, fmt.Sprintf("item-%d.mp4", item.ID))
		item.SetProgressComplete("Rendered", filepath.Base(item.OutputPath))
		return nil
	}}
	publisher := funcStage{name: "publisher", fn: func(_ context.Context, item *queue.Item) error {
		item.SetProgressComplete("Completed", "Render kept locally")
		return nil
	}}

	h := newManagerHarness(t, workflow.StageSet{
		Translator: translator,
		Assembler:  assembler,
		Publisher:  publisher,
	})

	edit := testsupport.NewEditItem(t, h.store, "/in/a.mp4", "trim the intro")
	broken := testsupport.NewEditItem(t, h.store, "/in/b.mp4", "unreachable endpoint case")
	compilation, err := h.store.NewItem(context.Background(), queue.NewItemParams{
		JobType: queue.JobCompilation,
		Command: "fitness highlights",
		SourcePostsJSON: `[
			{"media_id":"m1","media_url":"https://cdn.example.com/a.mp4","media_type":"VIDEO"},
			{"media_id":"m2","media_url":"https://cdn.example.com/b.mp4","media_type":"VIDEO"}
		]`,
	})
	if err != nil {
		t.Fatalf("NewItem failed: %v", err)
	}

	h.start(t)

	finishedEdit := waitForStatus(t, h.store, edit.ID, queue.StatusCompleted)
	waitForStatus(t, h.store, broken.ID, queue.StatusFailed)
	finishedCompilation := waitForStatus(t, h.store, compilation.ID, queue.StatusCompleted)
	waitForEvent(t, h.notifier, notifications.EventQueueCompleted)
	h.manager.Stop()

	if finishedEdit.OperationsJSON == "" || finishedEdit.OutputPath == "" {
		t.Fatalf("edit item missing stage outputs: %+v", finishedEdit)
	}
	if finishedCompilation.PlanJSON == "" || finishedCompilation.Title != "Weekly Highlights" {
		t.Fatalf("compilation item missing plan: %+v", finishedCompilation)
	}

	summary, err := h.store.Health(context.Background())
	if err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if summary.Completed != 2 || summary.Failed != 1 || summary.Pending != 0 || summary.Processing != 0 {
		t.Fatalf("unexpected queue summary: %+v", summary)
	}

	payload, ok := h.notifier.payloadFor(notifications.EventQueueCompleted)
	if !ok {
		t.Fatalf("completion payload missing")
	}
	if payload["processed"] != 2 || payload["failed"] != 1 {
		t.Fatalf("unexpected completion payload: %+v", payload)
	}
}
