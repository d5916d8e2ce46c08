package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"instastudio/internal/editing"
	"instastudio/internal/export"
	"instastudio/internal/testsupport"
)

func TestExportWritesDestination(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "final.mp4", 30, 1080, 1920, true)

	dest := filepath.Join(t.TempDir(), "out", "reel.mp4")
	got, err := exporter.Export(context.Background(), source, dest, export.Options{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got != dest {
		t.Fatalf("expected %s, got %s", dest, got)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("destination missing: %v", err)
	}

	args := strings.Join(h.Runner.Calls[0], " ")
	for _, want := range []string{"-c:v libx264", "-preset medium", "-b:v 5000k", "-r 30", "-c:a aac"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected default %q in args: %s", want, args)
		}
	}
}

func TestExportSilentClipSkipsAudio(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "silent.mp4", 10, 1080, 1920, false)

	dest := filepath.Join(t.TempDir(), "silent-out.mp4")
	if _, err := exporter.Export(context.Background(), source, dest, export.Options{}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	args := strings.Join(h.Runner.Calls[0], " ")
	if !strings.Contains(args, "-an") || strings.Contains(args, "-c:a") {
		t.Fatalf("expected audio disabled, got %s", args)
	}
}

func TestExportRejectsIncompatibleCodec(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "final.mp4", 10, 1080, 1920, true)

	cases := []struct {
		name string
		dest string
		opts export.Options
	}{
		{"vp9 in mp4", "out.mp4", export.Options{VideoCodec: "libvpx-vp9"}},
		{"opus in mov", "out.mov", export.Options{AudioCodec: "libopus"}},
		{"unknown container", "out.avi", export.Options{}},
	}
	for _, tc := range cases {
		dest := filepath.Join(t.TempDir(), tc.dest)
		_, err := exporter.Export(context.Background(), source, dest, tc.opts)
		if !errors.Is(err, export.ErrIncompatibleFormat) {
			t.Fatalf("%s: expected ErrIncompatibleFormat, got %v", tc.name, err)
		}
		if len(h.Runner.Calls) != 0 {
			t.Fatalf("%s: validation must fail before encoding", tc.name)
		}
	}
}

func TestExportRemovesPartialOnFailure(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "final.mp4", 10, 1080, 1920, true)

	dest := filepath.Join(t.TempDir(), "broken.mp4")
	if err := os.WriteFile(dest, []byte("partial"), 0o644); err != nil {
		t.Fatalf("seed partial: %v", err)
	}
	h.Runner.FailNext = errors.New("encoder crashed")

	if _, err := exporter.Export(context.Background(), source, dest, export.Options{}); err == nil {
		t.Fatal("expected encode failure")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("partial output must be removed on failure")
	}
}

func TestExportRemovesOutputOnCancellation(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "final.mp4", 10, 1080, 1920, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "cancelled.mp4")
	if _, err := exporter.Export(ctx, source, dest, export.Options{}); err == nil {
		t.Fatal("expected cancellation error")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("no output may remain after cancellation")
	}
}

func TestExportReleasesIntermediateClip(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	engine := editing.NewEngine(h.Loader, h.Runner, nil)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "final.mp4", 30, 1080, 1920, true)

	trimmed, err := engine.Trim(context.Background(), source, 0, 10)
	if err != nil {
		t.Fatalf("Trim failed: %v", err)
	}
	intermediate := trimmed.Path

	dest := filepath.Join(t.TempDir(), "released.mp4")
	if _, err := exporter.Export(context.Background(), trimmed, dest, export.Options{}); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := os.Stat(intermediate); !os.IsNotExist(err) {
		t.Fatal("intermediate clip must be released after export")
	}
}

func TestExportWithProgressCallback(t *testing.T) {
	h := testsupport.NewMediaHarness(t)
	exporter := export.NewExporter(h.Runner, nil)
	source := h.Source(t, "final.mp4", 10, 1080, 1920, true)

	dest := filepath.Join(t.TempDir(), "progress.mp4")
	got, err := exporter.Export(context.Background(), source, dest, export.Options{
		OnProgress: func(float64) {},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got != dest {
		t.Fatalf("expected %s, got %s", dest, got)
	}
}
