package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"instastudio/internal/editing"
	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
)

// defaultCTASeconds is how long a call-to-action overlay holds at the end of
// the clip when the operation does not say otherwise.
const defaultCTASeconds = 3.0

// Executor runs a translated operation list against a single accumulator
// clip. Execution is strictly sequential and stops at the first failure;
// the offending operation index is always part of the error.
type Executor struct {
	engine *editing.Engine
	logger *slog.Logger

	// TargetContentType is the fallback render target for resize operations
	// that do not name one.
	TargetContentType string
	// MusicDir resolves bare add_music track names.
	MusicDir string
}

// NewExecutor builds an Executor over an editing engine.
func NewExecutor(engine *editing.Engine, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{engine: engine, logger: logger, TargetContentType: "reel"}
}

// Execute applies the operations in order, threading the result of each as
// the input of the next. Superseded intermediates are released as execution
// advances; on failure the in-flight accumulator is released too.
func (x *Executor) Execute(ctx context.Context, source clip.Clip, ops []Operation) (clip.Clip, error) {
	current := source
	for i, op := range ops {
		next, err := x.apply(ctx, current, op)
		if err != nil {
			if current.Path != source.Path {
				clip.Release(current)
			}
			return clip.Clip{}, fmt.Errorf("operation %d (%s): %w", i, op.Kind, err)
		}
		if next.Path != current.Path && current.Path != source.Path {
			clip.Release(current)
		}
		x.logger.Debug("operation applied",
			logging.Int("index", i),
			logging.String("kind", op.Kind),
			logging.Float64("duration", next.Duration),
		)
		current = next
	}
	return current, nil
}

func (x *Executor) apply(ctx context.Context, current clip.Clip, op Operation) (clip.Clip, error) {
	params := op.Params
	if params == nil {
		params = map[string]any{}
	}

	switch op.Kind {
	case KindTrim:
		start, err := requiredFloatParam(params, "start")
		if err != nil {
			return clip.Clip{}, err
		}
		end, err := requiredFloatParam(params, "end")
		if err != nil {
			return clip.Clip{}, err
		}
		return x.engine.Trim(ctx, current, start, end)

	case KindJumpCuts:
		segments, err := segmentsParam(params, "segments")
		if err != nil {
			return clip.Clip{}, err
		}
		transition, err := floatParam(params, "transition_duration", 0)
		if err != nil {
			return clip.Clip{}, err
		}
		return x.engine.JumpCuts(ctx, current, segments, transition)

	case KindAutoJumpCuts:
		threshold, err := floatParam(params, "threshold", editing.DefaultSceneThreshold)
		if err != nil {
			return clip.Clip{}, err
		}
		minScene, err := floatParam(params, "min_scene_duration", editing.DefaultMinSceneSeconds)
		if err != nil {
			return clip.Clip{}, err
		}
		segments, err := x.engine.AutoJumpCuts(ctx, current, threshold, minScene)
		if err != nil {
			return clip.Clip{}, err
		}
		return x.engine.JumpCuts(ctx, current, segments, 0)

	case KindAddText:
		return x.applyText(ctx, current, params, false)

	case KindAddCTA:
		return x.applyText(ctx, current, params, true)

	case KindAddMusic:
		path, err := requiredStringParam(params, "path")
		if err != nil {
			return clip.Clip{}, err
		}
		volume, err := floatParam(params, "volume", 1.0)
		if err != nil {
			return clip.Clip{}, err
		}
		start, err := floatParam(params, "start_time", 0)
		if err != nil {
			return clip.Clip{}, err
		}
		fadeIn, err := floatParam(params, "fade_in", 0)
		if err != nil {
			return clip.Clip{}, err
		}
		fadeOut, err := floatParam(params, "fade_out", 0)
		if err != nil {
			return clip.Clip{}, err
		}
		loop, err := boolParam(params, "loop", false)
		if err != nil {
			return clip.Clip{}, err
		}
		return x.engine.AddAudio(ctx, current, editing.AudioOptions{
			Path:      x.resolveTrack(path),
			StartTime: start,
			Volume:    volume,
			FadeIn:    fadeIn,
			FadeOut:   fadeOut,
			Loop:      loop,
		})

	case KindSpeed:
		factor, err := requiredFloatParam(params, "factor")
		if err != nil {
			return clip.Clip{}, err
		}
		return x.engine.Speed(ctx, current, factor)

	case KindResize:
		contentType, err := stringParam(params, "content_type", x.TargetContentType)
		if err != nil {
			return clip.Clip{}, err
		}
		methodName, err := stringParam(params, "method", "")
		if err != nil {
			return clip.Clip{}, err
		}
		method, err := editing.ParseResizeMethod(methodName)
		if err != nil {
			return clip.Clip{}, err
		}
		return x.engine.ResizeForTarget(ctx, current, contentType, method)

	case KindConcatenate:
		// Needs multiple independent sources; the single-accumulator model
		// cannot express it. Multi-clip composition goes through the
		// repurposing engine.
		return clip.Clip{}, ErrNotSupportedHere

	default:
		return clip.Clip{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Kind)
	}
}

func (x *Executor) applyText(ctx context.Context, current clip.Clip, params map[string]any, cta bool) (clip.Clip, error) {
	text, err := requiredStringParam(params, "text")
	if err != nil {
		return clip.Clip{}, err
	}
	position, coordX, coordY, err := positionParam(params, "position", defaultTextPosition(cta))
	if err != nil {
		return clip.Clip{}, err
	}
	fontSize, err := intParam(params, "fontsize", 0)
	if err != nil {
		return clip.Clip{}, err
	}
	color, err := stringParam(params, "color", "")
	if err != nil {
		return clip.Clip{}, err
	}
	strokeColor, err := stringParam(params, "stroke_color", "")
	if err != nil {
		return clip.Clip{}, err
	}
	strokeWidth, err := intParam(params, "stroke_width", 0)
	if err != nil {
		return clip.Clip{}, err
	}

	var start, duration float64
	if cta {
		duration, err = floatParam(params, "duration", defaultCTASeconds)
		if err != nil {
			return clip.Clip{}, err
		}
		start = current.Duration - duration
		if start < 0 {
			start = 0
		}
	} else {
		start, err = floatParam(params, "start_time", 0)
		if err != nil {
			return clip.Clip{}, err
		}
		duration, err = floatParam(params, "duration", 0)
		if err != nil {
			return clip.Clip{}, err
		}
	}

	return x.engine.TextOverlay(ctx, current, editing.TextOptions{
		Text:        text,
		Position:    position,
		X:           coordX,
		Y:           coordY,
		StartTime:   start,
		Duration:    duration,
		FontSize:    fontSize,
		Color:       color,
		StrokeColor: strokeColor,
		StrokeWidth: strokeWidth,
	})
}

func defaultTextPosition(cta bool) string {
	if cta {
		return "bottom"
	}
	return "center"
}

func (x *Executor) resolveTrack(path string) string {
	if x.MusicDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(x.MusicDir, path)
}
