package repurpose

import (
	"context"
	"fmt"
	"math"
	"strings"

	"instastudio/internal/editing"
	"instastudio/internal/export"
	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
)

const (
	compilationMinAssets  = 2
	compilationCrossfade  = 0.5
	compilationThemeSize  = 70
	compilationCaptionMax = 50
	captionFontSize       = 40
	defaultCompilationSec = 45.0
)

// CreateCompilation stitches a theme reel from multiple posts, giving each an
// even share of the target duration. Image posts become stills; captions are
// overlaid per segment when includeText is set.
func (e *Engine) CreateCompilation(ctx context.Context, posts []SourcePost, theme string, targetSeconds float64, includeText bool, destination string) (string, error) {
	if targetSeconds <= 0 {
		targetSeconds = defaultCompilationSec
	}

	downloaded := e.downloadAll(ctx, posts)
	if len(downloaded) < compilationMinAssets {
		err := fmt.Errorf("%w: compilation needs at least %d media files, got %d",
			ErrNoSourceMaterial, compilationMinAssets, len(downloaded))
		if len(posts) >= compilationMinAssets {
			err = fmt.Errorf("%w: %w", err, ErrDownloadsFailed)
		}
		return "", err
	}

	share := targetSeconds / float64(len(downloaded))

	pieces := make([]clip.Clip, 0, len(downloaded))
	releaseAll := func() {
		for _, p := range pieces {
			clip.Release(p)
		}
	}

	for _, d := range downloaded {
		segment, err := e.compilationSegment(ctx, d, share, includeText)
		if err != nil {
			releaseAll()
			return "", err
		}
		pieces = append(pieces, segment)
	}

	final, err := e.editor.Concatenate(ctx, pieces, editing.TransitionCrossfade, compilationCrossfade)
	if err != nil {
		releaseAll()
		return "", fmt.Errorf("concatenate compilation: %w", err)
	}
	for _, p := range pieces {
		if p.Path != final.Path {
			clip.Release(p)
		}
	}

	if strings.TrimSpace(theme) != "" {
		themed, err := e.editor.TextOverlay(ctx, final, editing.TextOptions{
			Text:      theme,
			Position:  "top",
			StartTime: 0,
			Duration:  hookSeconds,
			FontSize:  compilationThemeSize,
		})
		if err != nil {
			clip.Release(final)
			return "", fmt.Errorf("theme overlay: %w", err)
		}
		if themed.Path != final.Path {
			clip.Release(final)
		}
		final = themed
	}

	out, err := e.exporter.Export(ctx, final, destination, export.Options{Bitrate: reelBitrate, FPS: reelFPS})
	if err != nil {
		return "", err
	}
	e.logger.Info("compilation created",
		logging.String("theme", theme),
		logging.String("destination", out),
		logging.Int("segments", len(downloaded)),
	)
	return out, nil
}

// compilationSegment turns one downloaded asset into a reel-shaped segment of
// roughly share seconds.
func (e *Engine) compilationSegment(ctx context.Context, d downloadedAsset, share float64, includeText bool) (clip.Clip, error) {
	var segment clip.Clip
	if isVideo(d.post.MediaType) {
		source, err := e.editor.Loader().Load(ctx, d.path)
		if err != nil {
			return clip.Clip{}, fmt.Errorf("load %s: %w", d.post.MediaID, err)
		}
		segment = source
		if source.Duration > share {
			// Middle of the video tends to hold the subject.
			start := (source.Duration - share) / 2
			segment, err = e.editor.Trim(ctx, source, start, start+share)
			if err != nil {
				return clip.Clip{}, fmt.Errorf("trim %s: %w", d.post.MediaID, err)
			}
		}
	} else {
		still, err := e.editor.Loader().LoadImage(ctx, d.path, share)
		if err != nil {
			return clip.Clip{}, fmt.Errorf("load image %s: %w", d.post.MediaID, err)
		}
		segment = still
	}

	resized, err := e.editor.ResizeForTarget(ctx, segment, "reel", editing.ResizeCrop)
	if err != nil {
		clip.Release(segment)
		return clip.Clip{}, fmt.Errorf("resize %s: %w", d.post.MediaID, err)
	}
	if resized.Path != segment.Path {
		clip.Release(segment)
	}
	segment = resized

	caption := strings.TrimSpace(d.post.Caption)
	if includeText && caption != "" {
		if runes := []rune(caption); len(runes) > compilationCaptionMax {
			caption = string(runes[:compilationCaptionMax])
		}
		captioned, err := e.editor.TextOverlay(ctx, segment, editing.TextOptions{
			Text:     caption,
			Position: "bottom",
			FontSize: captionFontSize,
			Duration: math.Min(hookSeconds, share),
		})
		if err != nil {
			clip.Release(segment)
			return clip.Clip{}, fmt.Errorf("caption %s: %w", d.post.MediaID, err)
		}
		if captioned.Path != segment.Path {
			clip.Release(segment)
		}
		segment = captioned
	}
	return segment, nil
}
