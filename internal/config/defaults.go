package config

const (
	defaultWorkspaceDir          = "~/.local/share/instastudio/workspace"
	defaultOutputDir             = "~/.local/share/instastudio/output"
	defaultMusicDir              = "~/.local/share/instastudio/music"
	defaultLogDir                = "~/.local/share/instastudio/logs"
	defaultCacheDir              = "~/.cache/instastudio/media"
	defaultAPIBind               = "127.0.0.1:7512"
	defaultVideoCodec            = "libx264"
	defaultAudioCodec            = "aac"
	defaultPreset                = "medium"
	defaultBitrate               = "5000k"
	defaultFPS                   = 30
	defaultThreads               = 4
	defaultLLMBaseURL            = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel              = "anthropic/claude-sonnet-4.5"
	defaultLLMReferer            = "https://github.com/instastudio/instastudio"
	defaultLLMTitle              = "InstaStudio Command Translator"
	defaultLLMTimeoutSeconds     = 60
	defaultGraphBaseURL          = "https://graph.facebook.com/v19.0"
	defaultPublishPollInterval   = 5
	defaultPublishMaxPolls       = 60
	defaultPublishRequestTimeout = 30
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultLogRetentionDays      = 60
	defaultQueuePollInterval     = 5
	defaultErrorRetryInterval    = 10
	defaultHeartbeatInterval     = 15
	defaultHeartbeatTimeout      = 120
	defaultMaxSourcePosts        = 5
	defaultMaxClipsPerAsset      = 3
	defaultMinClipSeconds        = 3.0
	defaultMaxClipSeconds        = 8.0
	defaultSceneThreshold        = 15.0
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			OutputDir:    defaultOutputDir,
			MusicDir:     defaultMusicDir,
			LogDir:       defaultLogDir,
			CacheDir:     defaultCacheDir,
			APIBind:      defaultAPIBind,
		},
		FFmpeg: FFmpeg{
			VideoCodec: defaultVideoCodec,
			AudioCodec: defaultAudioCodec,
			Preset:     defaultPreset,
			Bitrate:    defaultBitrate,
			FPS:        defaultFPS,
			Threads:    defaultThreads,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Instagram: Instagram{
			GraphBaseURL:   defaultGraphBaseURL,
			PollInterval:   defaultPublishPollInterval,
			MaxPolls:       defaultPublishMaxPolls,
			RequestTimeout: defaultPublishRequestTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			Translation:    true,
			Render:         true,
			Publish:        true,
			Errors:         true,
		},
		Repurpose: Repurpose{
			MaxSourcePosts:   defaultMaxSourcePosts,
			MaxClipsPerAsset: defaultMaxClipsPerAsset,
			MinClipSeconds:   defaultMinClipSeconds,
			MaxClipSeconds:   defaultMaxClipSeconds,
			SceneThreshold:   defaultSceneThreshold,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
