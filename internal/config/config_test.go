package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"instastudio/internal/config"
)

func TestDefaultNormalizesAndValidates(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.FFmpeg.VideoCodec != "libx264" {
		t.Fatalf("unexpected default video codec %q", cfg.FFmpeg.VideoCodec)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected toolchain binaries %q/%q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`workspace_dir = "` + filepath.Join(dir, "ws") + `"`,
		`output_dir = "` + filepath.Join(dir, "out") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		`cache_dir = "` + filepath.Join(dir, "cache") + `"`,
		"[ffmpeg]",
		`bitrate = "8000k"`,
		"fps = 24",
		"[repurpose]",
		"max_source_posts = 3",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.FFmpeg.Bitrate != "8000k" || cfg.FFmpeg.FPS != 24 {
		t.Fatalf("ffmpeg overrides not applied: %+v", cfg.FFmpeg)
	}
	if cfg.Repurpose.MaxSourcePosts != 3 {
		t.Fatalf("repurpose override not applied: %+v", cfg.Repurpose)
	}
	// Unset sections fall back to defaults.
	if cfg.Workflow.QueuePollInterval != 5 {
		t.Fatalf("expected default poll interval, got %d", cfg.Workflow.QueuePollInterval)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad bitrate", func(c *config.Config) { c.FFmpeg.Bitrate = "5000" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"clip window inverted", func(c *config.Config) {
			c.Repurpose.MinClipSeconds = 9
			c.Repurpose.MaxClipSeconds = 8
		}},
		{"instagram enabled without token", func(c *config.Config) { c.Instagram.Enabled = true }},
		{"heartbeat timeout too small", func(c *config.Config) { c.Workflow.HeartbeatTimeout = 5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			base := t.TempDir()
			cfg.Paths.WorkspaceDir = filepath.Join(base, "workspace")
			cfg.Paths.OutputDir = filepath.Join(base, "output")
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error on existing file")
	}
}
