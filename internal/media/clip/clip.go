package clip

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"instastudio/internal/media/ffmpeg"
	"instastudio/internal/media/ffprobe"
)

// frameTolerance absorbs sub-frame rounding when validating ranges against
// probed durations.
const frameTolerance = 0.05

// ErrInvalidRange indicates a subrange outside the clip's timeline.
var ErrInvalidRange = errors.New("invalid clip range")

// Clip is an immutable handle to a media file. Transformations never modify
// a Clip in place; they produce a new Clip backed by a new file.
type Clip struct {
	Path     string
	Duration float64
	Width    int
	Height   int
	HasAudio bool

	workspace *Workspace
}

// Owned reports whether the backing file is a workspace intermediate.
func (c Clip) Owned() bool {
	return c.workspace != nil && c.workspace.owns(c.Path)
}

// ProbeFunc inspects a media file. DefaultProbe wraps ffprobe; tests supply
// their own.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// DefaultProbe returns a ProbeFunc backed by the ffprobe binary.
func DefaultProbe(binary string) ProbeFunc {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}

// Loader probes and materializes clips inside a workspace.
type Loader struct {
	workspace *Workspace
	runner    ffmpeg.Runner
	probe     ProbeFunc
}

// NewLoader builds a Loader bound to a workspace, ffmpeg runner, and probe.
// A nil probe falls back to the ffprobe binary from PATH.
func NewLoader(ws *Workspace, runner ffmpeg.Runner, probe ProbeFunc) *Loader {
	if probe == nil {
		probe = DefaultProbe("")
	}
	return &Loader{workspace: ws, runner: runner, probe: probe}
}

// Workspace returns the loader's workspace.
func (l *Loader) Workspace() *Workspace {
	return l.workspace
}

// Load probes an existing media file and returns a Clip referencing it. The
// source file itself is never owned by the workspace.
func (l *Loader) Load(ctx context.Context, path string) (Clip, error) {
	if strings.TrimSpace(path) == "" {
		return Clip{}, errors.New("load clip: empty path")
	}
	if _, err := os.Stat(path); err != nil {
		return Clip{}, fmt.Errorf("load clip %s: %w", path, err)
	}

	result, err := l.probe(ctx, path)
	if err != nil {
		return Clip{}, err
	}
	width, height := result.Dimensions()
	return Clip{
		Path:      path,
		Duration:  result.DurationSeconds(),
		Width:     width,
		Height:    height,
		HasAudio:  result.HasAudio(),
		workspace: l.workspace,
	}, nil
}

// LoadImage renders a still image as a video clip held for the requested
// number of seconds.
func (l *Loader) LoadImage(ctx context.Context, path string, seconds float64) (Clip, error) {
	if seconds <= 0 {
		return Clip{}, fmt.Errorf("%w: image duration %v", ErrInvalidRange, seconds)
	}
	if _, err := os.Stat(path); err != nil {
		return Clip{}, fmt.Errorf("load image %s: %w", path, err)
	}

	out, err := l.workspace.Intermediate("still", ".mp4")
	if err != nil {
		return Clip{}, err
	}
	args := []string{
		"-loop", "1",
		"-i", path,
		"-t", formatSeconds(seconds),
		"-vf", "scale=trunc(iw/2)*2:trunc(ih/2)*2,format=yuv420p",
		"-an",
		out,
	}
	if _, err := l.runner.Run(ctx, args); err != nil {
		_ = os.Remove(out)
		return Clip{}, fmt.Errorf("render still: %w", err)
	}
	return l.adopt(ctx, out)
}

// Subrange extracts [start, end) into a new Clip. The original clip is left
// untouched.
func (l *Loader) Subrange(ctx context.Context, c Clip, start, end float64) (Clip, error) {
	if start < 0 || start >= end || end > c.Duration+frameTolerance {
		return Clip{}, fmt.Errorf("%w: [%v, %v) of %vs clip", ErrInvalidRange, start, end, c.Duration)
	}

	out, err := l.workspace.Intermediate("sub", ".mp4")
	if err != nil {
		return Clip{}, err
	}
	args := []string{
		"-ss", formatSeconds(start),
		"-i", c.Path,
		"-t", formatSeconds(end - start),
		"-c:v", "libx264", "-preset", "veryfast",
	}
	if c.HasAudio {
		args = append(args, "-c:a", "aac")
	} else {
		args = append(args, "-an")
	}
	args = append(args, out)
	if _, err := l.runner.Run(ctx, args); err != nil {
		_ = os.Remove(out)
		return Clip{}, fmt.Errorf("extract subrange: %w", err)
	}
	return l.adopt(ctx, out)
}

// Adopt probes a freshly rendered workspace file into a Clip. The path must
// have been allocated by the workspace.
func (l *Loader) Adopt(ctx context.Context, path string) (Clip, error) {
	return l.adopt(ctx, path)
}

func (l *Loader) adopt(ctx context.Context, path string) (Clip, error) {
	result, err := l.probe(ctx, path)
	if err != nil {
		return Clip{}, err
	}
	width, height := result.Dimensions()
	return Clip{
		Path:      path,
		Duration:  result.DurationSeconds(),
		Width:     width,
		Height:    height,
		HasAudio:  result.HasAudio(),
		workspace: l.workspace,
	}, nil
}

// Release removes a clip's backing file when it is a workspace intermediate.
// Caller-supplied source files are never touched. Safe to call repeatedly.
func Release(c Clip) {
	if !c.Owned() {
		return
	}
	_ = os.Remove(c.Path)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
