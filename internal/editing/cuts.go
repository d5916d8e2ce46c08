package editing

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
)

const (
	// DefaultSceneThreshold is the scene-change score cutoff on a 0-100
	// scale. Lower values detect more boundaries.
	DefaultSceneThreshold = 20.0
	// DefaultMinSceneSeconds discards scenes shorter than this.
	DefaultMinSceneSeconds = 1.0
)

// Trim extracts [start, end) into a new clip.
func (e *Engine) Trim(ctx context.Context, c clip.Clip, start, end float64) (clip.Clip, error) {
	return e.loader.Subrange(ctx, c, start, end)
}

// JumpCuts extracts each segment in caller order and joins them, optionally
// cross-fading between consecutive segments. Segment order is preserved
// exactly; nothing is reordered or deduplicated.
func (e *Engine) JumpCuts(ctx context.Context, c clip.Clip, segments []Segment, transitionSeconds float64) (clip.Clip, error) {
	if len(segments) == 0 {
		return clip.Clip{}, ErrEmptyTimeline
	}
	for i, seg := range segments {
		if err := seg.Validate(c.Duration); err != nil {
			return clip.Clip{}, fmt.Errorf("segment %d: %w", i, err)
		}
	}

	pieces := make([]clip.Clip, 0, len(segments))
	releasePieces := func() {
		for _, piece := range pieces {
			clip.Release(piece)
		}
	}
	for i, seg := range segments {
		piece, err := e.loader.Subrange(ctx, c, seg.Start, seg.End)
		if err != nil {
			releasePieces()
			return clip.Clip{}, fmt.Errorf("segment %d: %w", i, err)
		}
		pieces = append(pieces, piece)
	}

	if len(pieces) == 1 {
		return pieces[0], nil
	}

	transition := TransitionNone
	if transitionSeconds > 0 {
		transition = TransitionCrossfade
	}
	joined, err := e.Concatenate(ctx, pieces, transition, transitionSeconds)
	if err != nil {
		releasePieces()
		return clip.Clip{}, err
	}
	releasePieces()
	return joined, nil
}

var showinfoPTS = regexp.MustCompile(`pts_time:([0-9]+(?:\.[0-9]+)?)`)

// AutoJumpCuts detects scene boundaries and returns the scenes between them
// as ordered segments. threshold is on a 0-100 scale; scenes shorter than
// minSceneSeconds are dropped. When nothing usable is detected the whole
// clip is returned as a single segment so downstream assembly still works.
func (e *Engine) AutoJumpCuts(ctx context.Context, c clip.Clip, threshold, minSceneSeconds float64) ([]Segment, error) {
	if threshold <= 0 {
		threshold = DefaultSceneThreshold
	}
	if minSceneSeconds <= 0 {
		minSceneSeconds = DefaultMinSceneSeconds
	}

	// ffmpeg's scene score is 0-1; the public threshold scale is 0-100.
	score := threshold / 100
	args := []string{
		"-i", c.Path,
		"-vf", fmt.Sprintf("select='gt(scene,%s)',showinfo", strconv.FormatFloat(score, 'f', 4, 64)),
		"-an",
		"-f", "null", "-",
	}
	output, err := e.runner.Run(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("scene detection: %w", err)
	}

	boundaries := parseSceneBoundaries(output, c.Duration)

	segments := make([]Segment, 0, len(boundaries)+1)
	prev := 0.0
	for _, boundary := range boundaries {
		if boundary-prev >= minSceneSeconds {
			segments = append(segments, Segment{Start: prev, End: boundary})
		}
		prev = boundary
	}
	if c.Duration-prev >= minSceneSeconds {
		segments = append(segments, Segment{Start: prev, End: c.Duration})
	}

	if len(segments) == 0 {
		e.logger.Warn("scene detection found no usable scenes, using whole clip",
			logging.String(logging.FieldEventType, "scene_fallback"),
			logging.String("path", c.Path),
			logging.Float64("threshold", threshold),
		)
		return []Segment{{Start: 0, End: c.Duration}}, nil
	}
	return segments, nil
}

func parseSceneBoundaries(output string, duration float64) []float64 {
	matches := showinfoPTS.FindAllStringSubmatch(output, -1)
	boundaries := make([]float64, 0, len(matches))
	seen := make(map[float64]struct{}, len(matches))
	for _, match := range matches {
		ts, err := strconv.ParseFloat(match[1], 64)
		if err != nil || ts <= 0 || ts >= duration {
			continue
		}
		if _, dup := seen[ts]; dup {
			continue
		}
		seen[ts] = struct{}{}
		boundaries = append(boundaries, ts)
	}
	sort.Float64s(boundaries)
	return boundaries
}
