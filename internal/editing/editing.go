package editing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
	"instastudio/internal/media/ffmpeg"
)

// Sentinel errors for bad editing input. These are input errors in the
// service taxonomy: callers see them synchronously and nothing retries them.
var (
	ErrInvalidRange     = clip.ErrInvalidRange
	ErrEmptyTimeline    = errors.New("empty segment list")
	ErrInvalidTimeRange = errors.New("invalid time range")
	ErrEmptyClipList    = errors.New("empty clip list")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Segment is a [Start, End) time range in seconds on a clip's timeline.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// Validate checks the segment against a clip duration.
func (s Segment) Validate(clipDuration float64) error {
	if s.Start < 0 || s.Start >= s.End || s.End > clipDuration+0.05 {
		return fmt.Errorf("%w: segment [%v, %v) on %vs clip", ErrInvalidRange, s.Start, s.End, clipDuration)
	}
	return nil
}

// Engine applies editing primitives. Every primitive is a pure
// transformation: the input clips are never modified and each call renders a
// new workspace intermediate.
type Engine struct {
	loader *clip.Loader
	runner ffmpeg.Runner
	logger *slog.Logger
}

// NewEngine builds an Engine over a loader and runner.
func NewEngine(loader *clip.Loader, runner ffmpeg.Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{loader: loader, runner: runner, logger: logger}
}

// Loader exposes the engine's clip loader.
func (e *Engine) Loader() *clip.Loader {
	return e.loader
}

// render runs ffmpeg and adopts the produced file, removing it on failure.
func (e *Engine) render(ctx context.Context, args []string, out string) (clip.Clip, error) {
	if _, err := e.runner.Run(ctx, args); err != nil {
		_ = os.Remove(out)
		return clip.Clip{}, err
	}
	result, err := e.loader.Adopt(ctx, out)
	if err != nil {
		_ = os.Remove(out)
		return clip.Clip{}, err
	}
	return result, nil
}
