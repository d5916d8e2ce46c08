package repurpose

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"instastudio/internal/assetcache"
	"instastudio/internal/editing"
	"instastudio/internal/export"
	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
	"instastudio/internal/plan"
	"instastudio/internal/textutil"
)

// Failure sentinels for the empty-input stages of a repurposing run.
// ErrDownloadsFailed always wraps ErrNoSourceMaterial and marks the case
// where posts existed but none could be fetched, which may clear on retry.
var (
	ErrNoSourceMaterial = errors.New("no downloadable source material")
	ErrDownloadsFailed  = errors.New("all downloads failed")
	ErrNoCandidateClips = errors.New("no candidate clips extracted")
)

const (
	maxSourceVideos  = 5
	maxClipsPerAsset = 3
	clipMinSeconds   = 3.0
	clipMaxSeconds   = 8.0
	sceneThreshold   = 15.0

	crossfadeSeconds = 0.3
	hookSeconds      = 3.0
	hookFontSize     = 60
	minTrimSeconds   = 3.0

	captionSimilarityMax = 0.9

	reelBitrate = "8000k"
	reelFPS     = 30
)

// SourcePost is a remote post descriptor handed to the engine.
type SourcePost struct {
	MediaID   string `json:"media_id"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
	Caption   string `json:"caption,omitempty"`
}

// candidate is one extractable sub-clip of a downloaded asset.
type candidate struct {
	path  string
	start float64
	end   float64
}

func (c candidate) duration() float64 { return c.end - c.start }

// Engine assembles new reels out of existing posts: download, scene-detect,
// select, stitch, export.
type Engine struct {
	editor   *editing.Engine
	cache    *assetcache.Cache
	exporter *export.Exporter
	logger   *slog.Logger
	rng      *rand.Rand
}

// Option customizes the engine.
type Option func(*Engine)

// WithRand injects the randomness source used for candidate shuffling.
// Selection is intentionally randomized per run; injecting a seeded source
// makes it reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// NewEngine builds a repurposing engine.
func NewEngine(editor *editing.Engine, cache *assetcache.Cache, exporter *export.Exporter, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		editor:   editor,
		cache:    cache,
		exporter: exporter,
		logger:   logging.NewComponentLogger(logger, "repurpose"),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateReel produces a reel for the plan from the source posts and writes it
// to destination. Any primitive failure during assembly aborts the whole
// attempt; no partial output is written.
func (e *Engine) CreateReel(ctx context.Context, p plan.ContentPlan, posts []SourcePost, destination string) (string, error) {
	videos := e.dedupeByCaption(filterVideos(posts))
	if len(videos) > maxSourceVideos {
		videos = videos[:maxSourceVideos]
	}
	if len(videos) == 0 {
		return "", fmt.Errorf("%w: no video posts", ErrNoSourceMaterial)
	}

	downloaded := e.downloadAll(ctx, videos)
	if len(downloaded) == 0 {
		return "", fmt.Errorf("%w: %w", ErrNoSourceMaterial, ErrDownloadsFailed)
	}

	var pool []candidate
	for _, d := range downloaded {
		candidates, err := e.extractCandidates(ctx, d.path)
		if err != nil {
			e.logger.Warn("candidate extraction failed",
				logging.String(logging.FieldEventType, "candidate_extraction_failed"),
				logging.String("media_id", d.post.MediaID),
				logging.Error(err),
			)
			continue
		}
		pool = append(pool, candidates...)
	}
	if len(pool) == 0 {
		return "", ErrNoCandidateClips
	}

	selected := e.selectForDuration(pool, p.TargetDuration())
	if len(selected) == 0 {
		return "", ErrNoCandidateClips
	}

	final, err := e.assemble(ctx, selected, p.Hook)
	if err != nil {
		return "", err
	}

	out, err := e.exporter.Export(ctx, final, destination, export.Options{Bitrate: reelBitrate, FPS: reelFPS})
	if err != nil {
		return "", err
	}
	e.logger.Info("reel created",
		logging.String("title", p.Title),
		logging.String("destination", out),
		logging.Int("clips", len(selected)),
	)
	return out, nil
}

type downloadedAsset struct {
	post SourcePost
	path string
}

// downloadAll fetches every post's media concurrently through the shared
// cache. Individual failures are tolerated; order follows the input.
func (e *Engine) downloadAll(ctx context.Context, posts []SourcePost) []downloadedAsset {
	paths := make([]string, len(posts))
	var wg sync.WaitGroup
	for i, post := range posts {
		if post.MediaURL == "" || post.MediaID == "" {
			continue
		}
		wg.Add(1)
		go func(i int, post SourcePost) {
			defer wg.Done()
			path, err := e.cache.Fetch(ctx, post.MediaURL, post.MediaID, post.MediaType)
			if err != nil {
				e.logger.Warn("media download failed",
					logging.String(logging.FieldEventType, "media_download_failed"),
					logging.String("media_id", post.MediaID),
					logging.Error(err),
				)
				return
			}
			paths[i] = path
		}(i, post)
	}
	wg.Wait()

	results := make([]downloadedAsset, 0, len(posts))
	for i, path := range paths {
		if path != "" {
			results = append(results, downloadedAsset{post: posts[i], path: path})
		}
	}
	return results
}

// extractCandidates finds the most promising sub-clips of one asset via
// scene detection, falling back to an even split when no scene fits the
// duration window.
func (e *Engine) extractCandidates(ctx context.Context, path string) ([]candidate, error) {
	source, err := e.editor.Loader().Load(ctx, path)
	if err != nil {
		return nil, err
	}

	segments, err := e.editor.AutoJumpCuts(ctx, source, sceneThreshold, clipMinSeconds)
	if err != nil {
		return nil, err
	}

	var valid []candidate
	for _, seg := range segments {
		if d := seg.Duration(); d >= clipMinSeconds && d <= clipMaxSeconds {
			valid = append(valid, candidate{path: path, start: seg.Start, end: seg.End})
		}
	}

	if len(valid) == 0 {
		share := math.Min(clipMaxSeconds, source.Duration/maxClipsPerAsset)
		for i := 0; i < maxClipsPerAsset; i++ {
			start := float64(i) * share
			end := math.Min(start+share, source.Duration)
			if end-start >= clipMinSeconds {
				valid = append(valid, candidate{path: path, start: start, end: end})
			}
		}
		if len(valid) > 0 {
			e.logger.Warn("no scenes in duration window, splitting evenly",
				logging.String(logging.FieldEventType, "even_split_fallback"),
				logging.String("path", path),
				logging.Float64("duration", source.Duration),
			)
		}
	}

	if len(valid) > maxClipsPerAsset {
		valid = valid[:maxClipsPerAsset]
	}
	return valid, nil
}

// selectForDuration shuffles the pool and greedily fills the target. A
// candidate longer than the remaining gap is trimmed to fit when at least
// minTrimSeconds remain; the total never exceeds the target.
func (e *Engine) selectForDuration(pool []candidate, target float64) []candidate {
	shuffled := make([]candidate, len(pool))
	copy(shuffled, pool)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	var selected []candidate
	total := 0.0
	for _, c := range shuffled {
		if total >= target {
			break
		}
		remaining := target - total
		switch {
		case c.duration() <= remaining:
			selected = append(selected, c)
			total += c.duration()
		case remaining >= minTrimSeconds:
			c.end = c.start + remaining
			selected = append(selected, c)
			total = target
		}
		if total >= target {
			break
		}
	}
	return selected
}

// assemble loads, trims, and resizes each selected candidate in order, then
// concatenates with crossfades and applies the hook overlay.
func (e *Engine) assemble(ctx context.Context, selected []candidate, hook string) (clip.Clip, error) {
	pieces := make([]clip.Clip, 0, len(selected))
	releaseAll := func() {
		for _, p := range pieces {
			clip.Release(p)
		}
	}

	for _, c := range selected {
		source, err := e.editor.Loader().Load(ctx, c.path)
		if err != nil {
			releaseAll()
			return clip.Clip{}, fmt.Errorf("load source: %w", err)
		}
		trimmed, err := e.editor.Trim(ctx, source, c.start, c.end)
		if err != nil {
			releaseAll()
			return clip.Clip{}, fmt.Errorf("trim candidate: %w", err)
		}
		resized, err := e.editor.ResizeForTarget(ctx, trimmed, "reel", editing.ResizeCrop)
		if err != nil {
			clip.Release(trimmed)
			releaseAll()
			return clip.Clip{}, fmt.Errorf("resize candidate: %w", err)
		}
		if resized.Path != trimmed.Path {
			clip.Release(trimmed)
		}
		pieces = append(pieces, resized)
	}

	final, err := e.editor.Concatenate(ctx, pieces, editing.TransitionCrossfade, crossfadeSeconds)
	if err != nil {
		releaseAll()
		return clip.Clip{}, fmt.Errorf("concatenate: %w", err)
	}
	for _, p := range pieces {
		if p.Path != final.Path {
			clip.Release(p)
		}
	}

	if strings.TrimSpace(hook) != "" {
		hooked, err := e.editor.TextOverlay(ctx, final, editing.TextOptions{
			Text:        hook,
			Position:    "center",
			StartTime:   0,
			Duration:    hookSeconds,
			FontSize:    hookFontSize,
			StrokeWidth: 3,
		})
		if err != nil {
			clip.Release(final)
			return clip.Clip{}, fmt.Errorf("hook overlay: %w", err)
		}
		if hooked.Path != final.Path {
			clip.Release(final)
		}
		final = hooked
	}
	return final, nil
}

// dedupeByCaption drops posts whose captions are near-duplicates of an
// earlier post's, keeping the first. Captions on one account share the same
// hashtag and CTA boilerplate, so term weights are IDF-adjusted over the
// batch before comparison. Posts without a judgeable caption are kept.
func (e *Engine) dedupeByCaption(posts []SourcePost) []SourcePost {
	if len(posts) < 2 {
		return posts
	}

	raw := make([]*textutil.Fingerprint, len(posts))
	corpus := textutil.NewCorpus()
	for i, p := range posts {
		raw[i] = textutil.NewFingerprint(p.Caption)
		corpus.Add(raw[i])
	}
	idf := corpus.IDF()

	kept := make([]SourcePost, 0, len(posts))
	var keptPrints []*textutil.Fingerprint
	for i, p := range posts {
		fp := raw[i].WithIDF(idf)
		if fp == nil {
			fp = raw[i]
		}
		duplicate := false
		for _, prev := range keptPrints {
			if textutil.CosineSimilarity(fp, prev) >= captionSimilarityMax {
				duplicate = true
				break
			}
		}
		if duplicate {
			e.logger.Debug("skipping near-duplicate source post",
				logging.String(logging.FieldEventType, "caption_duplicate_skipped"),
				logging.String("media_id", p.MediaID),
				logging.Int("caption_tokens", raw[i].TokenCount()),
			)
			continue
		}
		kept = append(kept, p)
		if fp != nil {
			keptPrints = append(keptPrints, fp)
		}
	}
	return kept
}

func filterVideos(posts []SourcePost) []SourcePost {
	var videos []SourcePost
	for _, p := range posts {
		if isVideo(p.MediaType) {
			videos = append(videos, p)
		}
	}
	return videos
}

func isVideo(mediaType string) bool {
	lower := strings.ToLower(mediaType)
	return strings.Contains(lower, "video") || strings.Contains(lower, "reel")
}
