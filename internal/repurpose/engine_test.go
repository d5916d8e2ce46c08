package repurpose

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"instastudio/internal/assetcache"
	"instastudio/internal/editing"
	"instastudio/internal/export"
	"instastudio/internal/plan"
	"instastudio/internal/testsupport"
)

type reelHarness struct {
	media  *testsupport.MediaHarness
	cache  *assetcache.Cache
	engine *Engine
	server *httptest.Server
	outDir string
}

func newReelHarness(t *testing.T) *reelHarness {
	t.Helper()
	media := testsupport.NewMediaHarness(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("source-media"))
	}))
	t.Cleanup(server.Close)

	cache, err := assetcache.New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("assetcache.New failed: %v", err)
	}

	editor := editing.NewEngine(media.Loader, media.Runner, nil)
	engine := NewEngine(editor, cache, export.NewExporter(media.Runner, nil), nil,
		WithRand(rand.New(rand.NewSource(1))))

	return &reelHarness{
		media:  media,
		cache:  cache,
		engine: engine,
		server: server,
		outDir: t.TempDir(),
	}
}

// post builds a source post served by the harness server and registers the
// metadata its cached download will probe to.
func (h *reelHarness) post(mediaID, mediaType string, duration float64, width, height int, caption string) SourcePost {
	h.media.Runner.Register(h.cache.Path(mediaID, mediaType), duration, width, height, true)
	return SourcePost{
		MediaID:   mediaID,
		MediaURL:  h.server.URL + "/" + mediaID,
		MediaType: mediaType,
		Caption:   caption,
	}
}

func TestCreateReelHappyPath(t *testing.T) {
	h := newReelHarness(t)
	h.media.Runner.SceneOutput = "pts_time:4.0 pts_time:8.0 pts_time:12.0 pts_time:16.0"

	posts := []SourcePost{
		h.post("vid-1", "VIDEO", 20, 1920, 1080, ""),
		h.post("vid-2", "VIDEO", 20, 1920, 1080, ""),
	}
	p := plan.ContentPlan{Title: "Best moments", Hook: "Wait for it", Duration: "10s"}

	dest := filepath.Join(h.outDir, "reel.mp4")
	out, err := h.engine.CreateReel(context.Background(), p, posts, dest)
	if err != nil {
		t.Fatalf("CreateReel failed: %v", err)
	}
	if out != dest {
		t.Fatalf("expected %s, got %s", dest, out)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	// 4s candidates fill 8 of the 10 target seconds; the 2s gap is below the
	// minimum trim, so the reel is two clips joined by one 0.3s crossfade.
	want := 4.0 + 4.0 - 0.3
	if got := h.media.Runner.Duration(dest); math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected %vs output, got %v", want, got)
	}

	var sawHook, sawCrop bool
	for _, call := range h.media.Runner.Calls {
		joined := strings.Join(call, " ")
		if strings.Contains(joined, "drawtext=") && strings.Contains(joined, "Wait for it") {
			sawHook = true
		}
		if strings.Contains(joined, "crop=") && strings.Contains(joined, "scale=1080:1920") {
			sawCrop = true
		}
	}
	if !sawHook {
		t.Fatal("expected hook overlay in render calls")
	}
	if !sawCrop {
		t.Fatal("expected reel resize in render calls")
	}
}

func TestCreateReelRequiresVideoPosts(t *testing.T) {
	h := newReelHarness(t)
	posts := []SourcePost{
		h.post("img-1", "IMAGE", 0, 1080, 1080, ""),
	}

	_, err := h.engine.CreateReel(context.Background(), plan.ContentPlan{}, posts, filepath.Join(h.outDir, "reel.mp4"))
	if !errors.Is(err, ErrNoSourceMaterial) {
		t.Fatalf("expected ErrNoSourceMaterial, got %v", err)
	}
	if errors.Is(err, ErrDownloadsFailed) {
		t.Fatalf("missing video posts are not a download failure: %v", err)
	}
}

func TestCreateReelAllDownloadsFailed(t *testing.T) {
	h := newReelHarness(t)
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer broken.Close()

	posts := []SourcePost{
		{MediaID: "gone-1", MediaURL: broken.URL + "/gone-1", MediaType: "VIDEO"},
		{MediaID: "gone-2", MediaURL: broken.URL + "/gone-2", MediaType: "VIDEO"},
	}
	_, err := h.engine.CreateReel(context.Background(), plan.ContentPlan{}, posts, filepath.Join(h.outDir, "reel.mp4"))
	if !errors.Is(err, ErrNoSourceMaterial) {
		t.Fatalf("expected ErrNoSourceMaterial, got %v", err)
	}
	if !errors.Is(err, ErrDownloadsFailed) {
		t.Fatalf("download failures must carry ErrDownloadsFailed, got %v", err)
	}
}

func TestCreateReelToleratesPartialDownloadFailure(t *testing.T) {
	h := newReelHarness(t)
	h.media.Runner.SceneOutput = "pts_time:5.0"

	posts := []SourcePost{
		h.post("vid-ok", "VIDEO", 10, 1920, 1080, ""),
		{MediaID: "vid-bad", MediaURL: "http://127.0.0.1:1/bad", MediaType: "VIDEO"},
	}
	dest := filepath.Join(h.outDir, "partial.mp4")
	if _, err := h.engine.CreateReel(context.Background(), plan.ContentPlan{Duration: "10s"}, posts, dest); err != nil {
		t.Fatalf("single download failure must not abort the run: %v", err)
	}
}

func TestCreateReelNoCandidates(t *testing.T) {
	h := newReelHarness(t)
	h.media.Runner.SceneOutput = ""

	// 2s of footage cannot produce a 3s minimum candidate even by splitting.
	posts := []SourcePost{h.post("tiny", "VIDEO", 2, 1920, 1080, "")}
	_, err := h.engine.CreateReel(context.Background(), plan.ContentPlan{}, posts, filepath.Join(h.outDir, "reel.mp4"))
	if !errors.Is(err, ErrNoCandidateClips) {
		t.Fatalf("expected ErrNoCandidateClips, got %v", err)
	}
}

func TestExtractCandidatesEvenSplitFallback(t *testing.T) {
	h := newReelHarness(t)
	h.media.Runner.SceneOutput = ""

	post := h.post("long", "VIDEO", 30, 1920, 1080, "")
	path, err := h.cache.Fetch(context.Background(), post.MediaURL, post.MediaID, post.MediaType)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	candidates, err := h.engine.extractCandidates(context.Background(), path)
	if err != nil {
		t.Fatalf("extractCandidates failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 even-split candidates, got %d", len(candidates))
	}
	for i, c := range candidates {
		if math.Abs(c.duration()-8) > 1e-6 {
			t.Fatalf("candidate %d: expected 8s share, got %v", i, c.duration())
		}
	}
}

func TestDedupeByCaptionDropsNearDuplicates(t *testing.T) {
	h := newReelHarness(t)
	posts := []SourcePost{
		{MediaID: "first", Caption: "leg day at the gym #fitness #gymlife"},
		{MediaID: "repost", Caption: "leg day at the gym #fitness #gymlife"},
		{MediaID: "other", Caption: "sunset yoga flow on the beach #fitness #gymlife"},
	}

	kept := h.engine.dedupeByCaption(posts)
	if len(kept) != 2 {
		t.Fatalf("expected 2 posts after dedupe, got %d", len(kept))
	}
	if kept[0].MediaID != "first" || kept[1].MediaID != "other" {
		t.Fatalf("expected first occurrence kept, got %s and %s", kept[0].MediaID, kept[1].MediaID)
	}
}

func TestDedupeByCaptionSharedBoilerplateIsNotDuplicate(t *testing.T) {
	h := newReelHarness(t)
	posts := []SourcePost{
		{MediaID: "a", Caption: "morning run recap #fitness #gymlife #motivation"},
		{MediaID: "b", Caption: "deadlift form breakdown #fitness #gymlife #motivation"},
		{MediaID: "c", Caption: "meal prep sunday #fitness #gymlife #motivation"},
	}

	kept := h.engine.dedupeByCaption(posts)
	if len(kept) != 3 {
		t.Fatalf("shared hashtags alone must not mark duplicates, got %d posts", len(kept))
	}
}

func TestDedupeByCaptionKeepsUncaptionedPosts(t *testing.T) {
	h := newReelHarness(t)
	posts := []SourcePost{
		{MediaID: "a"},
		{MediaID: "b"},
		{MediaID: "c", Caption: "the only captioned one"},
	}

	kept := h.engine.dedupeByCaption(posts)
	if len(kept) != 3 {
		t.Fatalf("uncaptioned posts must always survive, got %d", len(kept))
	}
}

func TestSelectForDurationGreedyFill(t *testing.T) {
	h := newReelHarness(t)
	pool := []candidate{
		{path: "a", start: 0, end: 4},
		{path: "b", start: 0, end: 4},
		{path: "c", start: 0, end: 4},
	}
	selected := h.engine.selectForDuration(pool, 12)
	total := 0.0
	for _, c := range selected {
		total += c.duration()
	}
	if total != 12 {
		t.Fatalf("expected exactly 12s when material suffices, got %v", total)
	}
}

func TestSelectForDurationTrimsToFit(t *testing.T) {
	h := newReelHarness(t)

	selected := h.engine.selectForDuration([]candidate{{path: "a", start: 2, end: 8}}, 4)
	if len(selected) != 1 {
		t.Fatalf("expected 1 selection, got %d", len(selected))
	}
	if got := selected[0].duration(); got != 4 {
		t.Fatalf("expected trim to 4s, got %v", got)
	}
	if selected[0].start != 2 {
		t.Fatalf("trim must keep the candidate start, got %v", selected[0].start)
	}
}

func TestSelectForDurationSkipsShortRemainder(t *testing.T) {
	h := newReelHarness(t)

	selected := h.engine.selectForDuration([]candidate{{path: "a", start: 0, end: 6}}, 2)
	if len(selected) != 0 {
		t.Fatalf("a 2s remainder is below the trim minimum, got %d selections", len(selected))
	}
}

func TestSelectForDurationSeededReproducible(t *testing.T) {
	pool := []candidate{
		{path: "a", start: 0, end: 5},
		{path: "b", start: 0, end: 5},
		{path: "c", start: 0, end: 5},
		{path: "d", start: 0, end: 5},
	}
	first := NewEngine(nil, nil, nil, nil, WithRand(rand.New(rand.NewSource(7)))).selectForDuration(pool, 10)
	second := NewEngine(nil, nil, nil, nil, WithRand(rand.New(rand.NewSource(7)))).selectForDuration(pool, 10)
	if len(first) != len(second) {
		t.Fatalf("seeded runs diverged: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].path != second[i].path {
			t.Fatalf("seeded runs diverged at %d: %s vs %s", i, first[i].path, second[i].path)
		}
	}
}

func TestCreateCompilationHappyPath(t *testing.T) {
	h := newReelHarness(t)
	h.media.Runner.SceneOutput = ""

	posts := []SourcePost{
		h.post("comp-vid", "VIDEO", 20, 1920, 1080, "behind the scenes"),
		h.post("comp-img", "IMAGE", 0, 1080, 1080, "studio shot"),
	}

	dest := filepath.Join(h.outDir, "compilation.mp4")
	out, err := h.engine.CreateCompilation(context.Background(), posts, "Studio week", 10, true, dest)
	if err != nil {
		t.Fatalf("CreateCompilation failed: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}

	// Two 5s shares joined by one 0.5s crossfade.
	want := 5.0 + 5.0 - 0.5
	if got := h.media.Runner.Duration(dest); math.Abs(got-want) > 1e-6 {
		t.Fatalf("expected %vs output, got %v", want, got)
	}

	var sawTheme, sawCaption bool
	for _, call := range h.media.Runner.Calls {
		joined := strings.Join(call, " ")
		if strings.Contains(joined, "Studio week") {
			sawTheme = true
		}
		if strings.Contains(joined, "behind the scenes") {
			sawCaption = true
		}
	}
	if !sawTheme {
		t.Fatal("expected theme overlay")
	}
	if !sawCaption {
		t.Fatal("expected per-segment caption overlay")
	}
}

func TestCreateCompilationCaptionTruncatesOnRunes(t *testing.T) {
	h := newReelHarness(t)
	h.media.Runner.SceneOutput = ""

	posts := []SourcePost{
		h.post("long-caption", "VIDEO", 20, 1920, 1080, strings.Repeat("é", 60)),
		h.post("plain", "VIDEO", 20, 1920, 1080, ""),
	}

	dest := filepath.Join(h.outDir, "compilation.mp4")
	if _, err := h.engine.CreateCompilation(context.Background(), posts, "", 10, true, dest); err != nil {
		t.Fatalf("CreateCompilation failed: %v", err)
	}

	want := strings.Repeat("é", compilationCaptionMax)
	var sawCaption bool
	for _, call := range h.media.Runner.Calls {
		joined := strings.Join(call, " ")
		if !strings.Contains(joined, "é") {
			continue
		}
		sawCaption = true
		if !utf8.ValidString(joined) {
			t.Fatalf("caption overlay carries invalid UTF-8: %q", joined)
		}
		if strings.Contains(joined, want+"é") {
			t.Fatalf("expected caption cut to %d runes, got %s", compilationCaptionMax, joined)
		}
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %d-rune caption in overlay, got %s", compilationCaptionMax, joined)
		}
	}
	if !sawCaption {
		t.Fatal("expected caption overlay in render calls")
	}
}

func TestCreateCompilationNeedsTwoAssets(t *testing.T) {
	h := newReelHarness(t)
	posts := []SourcePost{h.post("solo", "VIDEO", 20, 1920, 1080, "")}

	_, err := h.engine.CreateCompilation(context.Background(), posts, "Solo", 10, false, filepath.Join(h.outDir, "c.mp4"))
	if !errors.Is(err, ErrNoSourceMaterial) {
		t.Fatalf("expected ErrNoSourceMaterial, got %v", err)
	}
}
