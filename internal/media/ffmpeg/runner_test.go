package ffmpeg

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestRunRequiresArguments(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Run(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty arguments")
	}
}

func TestRunCapturesOutput(t *testing.T) {
	restore := commandContext
	defer func() { commandContext = restore }()
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'frame=  10' >&2")
	}

	cli := NewCLI()
	out, err := cli.Run(context.Background(), []string{"-i", "in.mp4", "out.mp4"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out, "frame=  10") {
		t.Fatalf("expected captured stderr, got %q", out)
	}
}

func TestRunReportsFailureTail(t *testing.T) {
	restore := commandContext
	defer func() { commandContext = restore }()
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "sh", "-c", "echo 'No such file' >&2; exit 1")
	}

	cli := NewCLI()
	if _, err := cli.Run(context.Background(), []string{"-i", "missing.mp4", "out.mp4"}); err == nil {
		t.Fatal("expected error")
	} else if !strings.Contains(err.Error(), "No such file") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}

func TestRunProgressParsesUpdates(t *testing.T) {
	restore := commandContext
	defer func() { commandContext = restore }()
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		script := `printf 'out_time_us=5000000\nspeed=2.1x\nprogress=continue\nout_time_us=10000000\nprogress=end\n'`
		return exec.CommandContext(ctx, "sh", "-c", script)
	}

	cli := NewCLI()
	var updates []ProgressUpdate
	_, err := cli.RunProgress(context.Background(), []string{"-i", "in.mp4", "out.mp4"}, 10, func(u ProgressUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("RunProgress failed: %v", err)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[0].Percent != 50 {
		t.Fatalf("expected 50%%, got %v", updates[0].Percent)
	}
	if updates[0].Speed != "2.1x" {
		t.Fatalf("expected speed 2.1x, got %q", updates[0].Speed)
	}
	if updates[1].Percent != 100 {
		t.Fatalf("expected 100%% at end, got %v", updates[1].Percent)
	}
}
