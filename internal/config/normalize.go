package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeLLM()
	c.normalizeInstagram()
	c.normalizeRepurpose()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		c.Paths.WorkspaceDir = defaultWorkspaceDir
	}
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return fmt.Errorf("paths.workspace_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.MusicDir, err = expandPath(c.Paths.MusicDir); err != nil {
		return fmt.Errorf("paths.music_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	return nil
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if strings.TrimSpace(c.FFmpeg.VideoCodec) == "" {
		c.FFmpeg.VideoCodec = defaultVideoCodec
	}
	if strings.TrimSpace(c.FFmpeg.AudioCodec) == "" {
		c.FFmpeg.AudioCodec = defaultAudioCodec
	}
	if strings.TrimSpace(c.FFmpeg.Preset) == "" {
		c.FFmpeg.Preset = defaultPreset
	}
	if strings.TrimSpace(c.FFmpeg.Bitrate) == "" {
		c.FFmpeg.Bitrate = defaultBitrate
	}
	if c.FFmpeg.FPS <= 0 {
		c.FFmpeg.FPS = defaultFPS
	}
	if c.FFmpeg.Threads <= 0 {
		c.FFmpeg.Threads = defaultThreads
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if strings.TrimSpace(c.LLM.Referer) == "" {
		c.LLM.Referer = defaultLLMReferer
	}
	if strings.TrimSpace(c.LLM.Title) == "" {
		c.LLM.Title = defaultLLMTitle
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeInstagram() {
	c.Instagram.AccessToken = strings.TrimSpace(c.Instagram.AccessToken)
	c.Instagram.BusinessAccountID = strings.TrimSpace(c.Instagram.BusinessAccountID)
	if strings.TrimSpace(c.Instagram.GraphBaseURL) == "" {
		c.Instagram.GraphBaseURL = defaultGraphBaseURL
	}
	c.Instagram.GraphBaseURL = strings.TrimRight(c.Instagram.GraphBaseURL, "/")
	if c.Instagram.PollInterval <= 0 {
		c.Instagram.PollInterval = defaultPublishPollInterval
	}
	if c.Instagram.MaxPolls <= 0 {
		c.Instagram.MaxPolls = defaultPublishMaxPolls
	}
	if c.Instagram.RequestTimeout <= 0 {
		c.Instagram.RequestTimeout = defaultPublishRequestTimeout
	}
}

func (c *Config) normalizeRepurpose() {
	if c.Repurpose.MaxSourcePosts <= 0 {
		c.Repurpose.MaxSourcePosts = defaultMaxSourcePosts
	}
	if c.Repurpose.MaxClipsPerAsset <= 0 {
		c.Repurpose.MaxClipsPerAsset = defaultMaxClipsPerAsset
	}
	if c.Repurpose.MinClipSeconds <= 0 {
		c.Repurpose.MinClipSeconds = defaultMinClipSeconds
	}
	if c.Repurpose.MaxClipSeconds <= 0 {
		c.Repurpose.MaxClipSeconds = defaultMaxClipSeconds
	}
	if c.Repurpose.SceneThreshold <= 0 {
		c.Repurpose.SceneThreshold = defaultSceneThreshold
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays <= 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
