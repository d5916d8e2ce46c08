package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// ProgressUpdate captures ffmpeg progress events parsed from -progress output.
type ProgressUpdate struct {
	Percent        float64
	ElapsedSeconds float64
	Speed          string
}

// Runner defines ffmpeg invocation behaviour. The string return carries the
// tool's log output so callers can parse filter chatter (scene detection
// reads showinfo lines from it).
type Runner interface {
	Run(ctx context.Context, args []string) (string, error)
	RunProgress(ctx context.Context, args []string, totalSeconds float64, progress func(ProgressUpdate)) (string, error)
}

// Option configures the CLI runner.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI runner using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Run executes ffmpeg with the given arguments. Standard options (-y,
// -hide_banner) are prepended; callers supply everything after them.
func (c *CLI) Run(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("ffmpeg: no arguments")
	}

	full := append([]string{"-y", "-hide_banner"}, args...)
	cmd := commandContext(ctx, c.binary, full...) //nolint:gosec
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return output.String(), ctx.Err()
		}
		return output.String(), fmt.Errorf("ffmpeg: %w: %s", err, tailLines(output.String(), 6))
	}
	return output.String(), nil
}

// RunProgress executes ffmpeg with -progress reporting on stdout and invokes
// the callback as encode position advances. totalSeconds scales positions to
// a percentage; pass 0 to disable percent calculation.
func (c *CLI) RunProgress(ctx context.Context, args []string, totalSeconds float64, progress func(ProgressUpdate)) (string, error) {
	if len(args) == 0 {
		return "", errors.New("ffmpeg: no arguments")
	}

	full := append([]string{"-y", "-hide_banner", "-progress", "pipe:1", "-nostats"}, args...)
	cmd := commandContext(ctx, c.binary, full...) //nolint:gosec

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start ffmpeg: %w", err)
	}

	var update ProgressUpdate
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			if us, err := strconv.ParseFloat(value, 64); err == nil && us >= 0 {
				update.ElapsedSeconds = us / 1e6
				if totalSeconds > 0 {
					pct := update.ElapsedSeconds / totalSeconds * 100
					if pct > 100 {
						pct = 100
					}
					update.Percent = pct
				}
			}
		case "speed":
			update.Speed = strings.TrimSpace(value)
		case "progress":
			if progress != nil {
				if value == "end" {
					update.Percent = 100
				}
				progress(update)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return stderr.String(), fmt.Errorf("read ffmpeg progress: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return stderr.String(), ctx.Err()
		}
		return stderr.String(), fmt.Errorf("ffmpeg: %w: %s", err, tailLines(stderr.String(), 6))
	}
	return stderr.String(), nil
}

func tailLines(output string, n int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "(no output)"
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

var _ Runner = (*CLI)(nil)
