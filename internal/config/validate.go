package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateInstagram(); err != nil {
		return err
	}
	if err := c.validateRepurpose(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		return errors.New("paths.workspace_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.WorkspaceDir == c.Paths.OutputDir {
		return errors.New("paths.workspace_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.FPS <= 0 || c.FFmpeg.FPS > 240 {
		return fmt.Errorf("ffmpeg.fps must be between 1 and 240, got %d", c.FFmpeg.FPS)
	}
	bitrate := strings.TrimSpace(c.FFmpeg.Bitrate)
	if bitrate == "" {
		return errors.New("ffmpeg.bitrate must be set")
	}
	if !strings.HasSuffix(bitrate, "k") && !strings.HasSuffix(bitrate, "M") {
		return fmt.Errorf("ffmpeg.bitrate must end in k or M (e.g. 5000k), got %q", bitrate)
	}
	return nil
}

func (c *Config) validateInstagram() error {
	if !c.Instagram.Enabled {
		return nil
	}
	if c.Instagram.AccessToken == "" {
		return errors.New("instagram.access_token is required when instagram.enabled is true")
	}
	if c.Instagram.BusinessAccountID == "" {
		return errors.New("instagram.business_account_id is required when instagram.enabled is true")
	}
	if c.Instagram.MaxPolls <= 0 {
		return errors.New("instagram.max_polls must be positive; unbounded polling is not allowed")
	}
	return nil
}

func (c *Config) validateRepurpose() error {
	if c.Repurpose.MinClipSeconds >= c.Repurpose.MaxClipSeconds {
		return fmt.Errorf("repurpose.min_clip_seconds (%.1f) must be less than repurpose.max_clip_seconds (%.1f)",
			c.Repurpose.MinClipSeconds, c.Repurpose.MaxClipSeconds)
	}
	if c.Repurpose.SceneThreshold > 100 {
		return fmt.Errorf("repurpose.scene_threshold must be on the 0-100 scale, got %.1f", c.Repurpose.SceneThreshold)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	if c.Workflow.HeartbeatInterval <= 0 || c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must exceed workflow.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
