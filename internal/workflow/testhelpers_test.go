package workflow_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"instastudio/internal/config"
	"instastudio/internal/logging"
	"instastudio/internal/notifications"
	"instastudio/internal/queue"
	"instastudio/internal/stage"
	"instastudio/internal/testsupport"
	"instastudio/internal/workflow"
)

// stubStage is a configurable stage handler for manager tests.
type stubStage struct {
	name        string
	prepareHook func(*queue.Item)
	executeHook func(*queue.Item)
	prepareErr  error
	executeErr  error
	health      stage.Health

	mu       sync.Mutex
	logger   *slog.Logger
	executed int
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, item *queue.Item) error {
	if s.prepareHook != nil {
		s.prepareHook(item)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *queue.Item) error {
	s.mu.Lock()
	s.executed++
	s.mu.Unlock()
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func (s *stubStage) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

func (s *stubStage) executions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed
}

// recordingNotifier captures published events for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	events   []notifications.Event
	payloads []notifications.Payload
}

func (r *recordingNotifier) Publish(_ context.Context, event notifications.Event, payload notifications.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.payloads = append(r.payloads, payload)
	return nil
}

func (r *recordingNotifier) count(event notifications.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, e := range r.events {
		if e == event {
			total++
		}
	}
	return total
}

func (r *recordingNotifier) payloadFor(event notifications.Event) (notifications.Payload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.events {
		if e == event {
			return r.payloads[i], true
		}
	}
	return nil, false
}

type managerHarness struct {
	cfg      *config.Config
	store    *queue.Store
	manager  *workflow.Manager
	notifier *recordingNotifier
}

func newManagerHarness(t *testing.T, set workflow.StageSet) *managerHarness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1
	cfg.Workflow.HeartbeatInterval = 1
	cfg.Workflow.HeartbeatTimeout = 30

	store := testsupport.MustOpenStore(t, cfg)
	notifier := &recordingNotifier{}
	manager := workflow.NewManagerWithNotifier(cfg, store, logging.NewNop(), notifier)
	manager.ConfigureStages(set)
	return &managerHarness{cfg: cfg, store: store, manager: manager, notifier: notifier}
}

func (h *managerHarness) start(t *testing.T) {
	t.Helper()
	if err := h.manager.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(h.manager.Stop)
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Item {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		item, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(20 * time.Millisecond)
	}
	item, _ := store.GetByID(context.Background(), id)
	got := queue.Status("missing")
	if item != nil {
		got = item.Status
	}
	t.Fatalf("item %d never reached %s, last status %s", id, want, got)
	return nil
}

func waitForEvent(t *testing.T, notifier *recordingNotifier, event notifications.Event) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if notifier.count(event) > 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("notification %s never published", event)
}

func passthroughSet() (workflow.StageSet, *stubStage, *stubStage, *stubStage) {
	translator := newStubStage("translator")
	assembler := newStubStage("assembler")
	publisher := newStubStage("publisher")
	set := workflow.StageSet{Translator: translator, Assembler: assembler, Publisher: publisher}
	return set, translator, assembler, publisher
}
