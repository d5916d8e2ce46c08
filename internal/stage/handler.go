package stage

import (
	"context"
	"log/slog"

	"instastudio/internal/queue"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}

// LoggerAware lets the executor inject a stage-scoped logger before running a
// handler.
type LoggerAware interface {
	SetLogger(*slog.Logger)
}
