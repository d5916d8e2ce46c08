package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
	"instastudio/internal/media/ffmpeg"
)

// ErrIncompatibleFormat indicates the requested codec cannot live in the
// container implied by the destination extension.
var ErrIncompatibleFormat = errors.New("codec incompatible with container")

// Default encode parameters applied when Options leaves a field zero.
const (
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
	DefaultBitrate    = "5000k"
	DefaultFPS        = 30
	DefaultPreset     = "medium"
)

// Options control the final encode.
type Options struct {
	VideoCodec string
	AudioCodec string
	Bitrate    string
	FPS        int
	Preset     string

	// OnProgress, when set, receives encode progress updates.
	OnProgress func(percent float64)
}

// containerCodecs is the fixed compatibility table keyed by destination
// extension. A codec absent from its container's set fails before any
// encoding starts.
var containerCodecs = map[string]struct {
	video map[string]bool
	audio map[string]bool
}{
	".mp4": {
		video: map[string]bool{"libx264": true, "libx265": true, "h264": true, "hevc": true, "mpeg4": true},
		audio: map[string]bool{"aac": true, "mp3": true, "libmp3lame": true},
	},
	".mov": {
		video: map[string]bool{"libx264": true, "libx265": true, "prores": true, "prores_ks": true, "mjpeg": true},
		audio: map[string]bool{"aac": true, "alac": true, "pcm_s16le": true},
	},
	".webm": {
		video: map[string]bool{"libvpx": true, "libvpx-vp9": true, "libaom-av1": true},
		audio: map[string]bool{"libopus": true, "libvorbis": true},
	},
}

// Exporter writes final clips to their destination containers.
type Exporter struct {
	runner ffmpeg.Runner
	logger *slog.Logger
}

// NewExporter builds an Exporter over an ffmpeg runner.
func NewExporter(runner ffmpeg.Runner, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Exporter{runner: runner, logger: logging.NewComponentLogger(logger, "export")}
}

// Export encodes c into destination. The clip is released on every exit
// path; on failure or cancellation any partially written destination file is
// removed.
func (e *Exporter) Export(ctx context.Context, c clip.Clip, destination string, opts Options) (string, error) {
	defer clip.Release(c)

	opts = withDefaults(opts)
	ext := strings.ToLower(filepath.Ext(destination))
	if err := validateFormat(ext, opts); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return "", fmt.Errorf("export: create destination directory: %w", err)
	}

	args := []string{"-i", c.Path,
		"-c:v", opts.VideoCodec,
		"-preset", opts.Preset,
		"-b:v", opts.Bitrate,
		"-r", strconv.Itoa(opts.FPS),
	}
	if c.HasAudio {
		args = append(args, "-c:a", opts.AudioCodec)
	} else {
		args = append(args, "-an")
	}
	args = append(args, destination)

	var err error
	if opts.OnProgress != nil {
		_, err = e.runner.RunProgress(ctx, args, c.Duration, func(u ffmpeg.ProgressUpdate) {
			opts.OnProgress(u.Percent)
		})
	} else {
		_, err = e.runner.Run(ctx, args)
	}
	if err != nil {
		removePartial(destination)
		return "", fmt.Errorf("export: encode: %w", err)
	}
	if ctx.Err() != nil {
		removePartial(destination)
		return "", ctx.Err()
	}

	info, statErr := os.Stat(destination)
	if statErr != nil || info.Size() == 0 {
		removePartial(destination)
		return "", fmt.Errorf("export: no output written to %s", destination)
	}

	e.logger.Info("export complete",
		logging.String("destination", destination),
		logging.Int64("bytes", info.Size()),
		logging.Float64("duration", c.Duration),
	)
	return destination, nil
}

func withDefaults(opts Options) Options {
	if opts.VideoCodec == "" {
		opts.VideoCodec = DefaultVideoCodec
	}
	if opts.AudioCodec == "" {
		opts.AudioCodec = DefaultAudioCodec
	}
	if opts.Bitrate == "" {
		opts.Bitrate = DefaultBitrate
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Preset == "" {
		opts.Preset = DefaultPreset
	}
	return opts
}

func validateFormat(ext string, opts Options) error {
	table, ok := containerCodecs[ext]
	if !ok {
		return fmt.Errorf("%w: unsupported container %q", ErrIncompatibleFormat, ext)
	}
	if !table.video[opts.VideoCodec] {
		return fmt.Errorf("%w: video codec %q in %s", ErrIncompatibleFormat, opts.VideoCodec, ext)
	}
	if !table.audio[opts.AudioCodec] {
		return fmt.Errorf("%w: audio codec %q in %s", ErrIncompatibleFormat, opts.AudioCodec, ext)
	}
	return nil
}

func removePartial(destination string) {
	if _, err := os.Stat(destination); err == nil {
		os.Remove(destination)
	}
}
