package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"instastudio/internal/media/clip"
	"instastudio/internal/media/ffmpeg"
	"instastudio/internal/media/ffprobe"
)

// FakeRunner simulates ffmpeg for tests: it records invocations, writes the
// output file, and tracks the metadata a real encode would produce so the
// paired probe can report it back. Duration bookkeeping follows the filter
// arguments (trim windows, concat sums, crossfade overlap, speed factors).
type FakeRunner struct {
	T           testing.TB
	Calls       [][]string
	SceneOutput string
	FailNext    error

	durations map[string]float64
	widths    map[string]int
	heights   map[string]int
	hasAudio  map[string]bool
}

// NewFakeRunner builds an empty FakeRunner.
func NewFakeRunner(t testing.TB) *FakeRunner {
	return &FakeRunner{
		T:         t,
		durations: map[string]float64{},
		widths:    map[string]int{},
		heights:   map[string]int{},
		hasAudio:  map[string]bool{},
	}
}

// Register records metadata for a media path so Probe can see it.
func (f *FakeRunner) Register(path string, duration float64, width, height int, audio bool) {
	f.durations[path] = duration
	f.widths[path] = width
	f.heights[path] = height
	f.hasAudio[path] = audio
}

// Duration returns the tracked duration for a path.
func (f *FakeRunner) Duration(path string) float64 {
	return f.durations[path]
}

var (
	fakeScaleRe  = regexp.MustCompile(`scale=(\d+):(\d+)`)
	fakeXfadeRe  = regexp.MustCompile(`xfade=transition=fade:duration=([0-9.]+)`)
	fakeSetptsRe = regexp.MustCompile(`setpts=PTS/([0-9.]+)`)
)

// Run records the invocation and simulates the render.
func (f *FakeRunner) Run(_ context.Context, args []string) (string, error) {
	f.Calls = append(f.Calls, args)
	if f.FailNext != nil {
		err := f.FailNext
		f.FailNext = nil
		return "", err
	}

	joined := strings.Join(args, " ")
	if strings.Contains(joined, "showinfo") {
		return f.SceneOutput, nil
	}

	out := args[len(args)-1]
	if out == "-" || strings.HasPrefix(out, "-") {
		return "", nil
	}
	if err := os.WriteFile(out, []byte("render"), 0o644); err != nil {
		f.T.Fatalf("write fake output: %v", err)
	}

	var inputs []string
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-i" && !strings.HasPrefix(args[i+1], "anullsrc") {
			inputs = append(inputs, args[i+1])
		}
	}

	duration := 0.0
	switch {
	case argValue(args, "-ss") != "" && argValue(args, "-t") != "":
		duration = f.parseFloat(argValue(args, "-t"))
	case fakeXfadeRe.MatchString(joined):
		td := f.parseFloat(fakeXfadeRe.FindStringSubmatch(joined)[1])
		for _, in := range inputs {
			duration += f.durations[in]
		}
		duration -= float64(len(inputs)-1) * td
	case strings.Contains(joined, "concat=n="):
		for _, in := range inputs {
			duration += f.durations[in]
		}
	case fakeSetptsRe.MatchString(joined):
		factor := f.parseFloat(fakeSetptsRe.FindStringSubmatch(joined)[1])
		duration = f.durations[inputs[0]] / factor
	case argValue(args, "-t") != "":
		duration = f.parseFloat(argValue(args, "-t"))
	default:
		if len(inputs) > 0 {
			duration = f.durations[inputs[0]]
		}
	}

	width, height := 0, 0
	if m := fakeScaleRe.FindStringSubmatch(joined); m != nil && !strings.Contains(joined, "trunc") {
		width, _ = strconv.Atoi(m[1])
		height, _ = strconv.Atoi(m[2])
	} else if len(inputs) > 0 {
		width = f.widths[inputs[0]]
		height = f.heights[inputs[0]]
	}

	audio := !argsContain(args, "-an")
	if audio && len(inputs) > 0 && !strings.Contains(joined, "anullsrc") && !strings.Contains(joined, "amix") {
		audio = f.hasAudio[inputs[0]]
	}

	f.Register(out, duration, width, height, audio)
	return "", nil
}

// RunProgress behaves like Run; progress callbacks are not simulated.
func (f *FakeRunner) RunProgress(ctx context.Context, args []string, _ float64, _ func(ffmpeg.ProgressUpdate)) (string, error) {
	return f.Run(ctx, args)
}

// Probe reports metadata for paths previously registered or rendered.
func (f *FakeRunner) Probe(_ context.Context, path string) (ffprobe.Result, error) {
	duration, ok := f.durations[path]
	if !ok {
		return ffprobe.Result{}, fmt.Errorf("no metadata for %s", path)
	}
	streams := []ffprobe.Stream{{
		CodecType: "video",
		Width:     f.widths[path],
		Height:    f.heights[path],
	}}
	if f.hasAudio[path] {
		streams = append(streams, ffprobe.Stream{CodecType: "audio"})
	}
	return ffprobe.Result{
		Streams: streams,
		Format:  ffprobe.Format{Duration: strconv.FormatFloat(duration, 'f', 3, 64)},
	}, nil
}

func (f *FakeRunner) parseFloat(value string) float64 {
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		f.T.Fatalf("parse float %q: %v", value, err)
	}
	return parsed
}

func argValue(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

func argsContain(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

var _ ffmpeg.Runner = (*FakeRunner)(nil)

// MediaHarness bundles a workspace, fake runner, and loader for editing
// pipeline tests.
type MediaHarness struct {
	Runner    *FakeRunner
	Loader    *clip.Loader
	Workspace *clip.Workspace
	Dir       string
}

// NewMediaHarness builds a harness rooted in a per-test temp directory.
func NewMediaHarness(t testing.TB) *MediaHarness {
	t.Helper()
	dir := t.TempDir()
	ws, err := clip.NewWorkspace(dir)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	runner := NewFakeRunner(t)
	loader := clip.NewLoader(ws, runner, runner.Probe)
	return &MediaHarness{Runner: runner, Loader: loader, Workspace: ws, Dir: dir}
}

// Source writes a stand-in media file, registers its metadata, and loads it.
func (h *MediaHarness) Source(t testing.TB, name string, duration float64, width, height int, audio bool) clip.Clip {
	t.Helper()
	path := filepath.Join(h.Dir, name)
	if err := os.WriteFile(path, []byte("source"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	h.Runner.Register(path, duration, width, height, audio)
	c, err := h.Loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return c
}
