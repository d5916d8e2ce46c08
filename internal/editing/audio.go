package editing

import (
	"context"
	"fmt"
	"os"
	"strings"

	"instastudio/internal/media/clip"
)

// AudioOptions configures an external audio mix.
type AudioOptions struct {
	Path string
	// StartTime delays the external track's entry, in seconds.
	StartTime float64
	// Volume scales the external track. Zero means full volume.
	Volume float64
	// FadeIn and FadeOut are envelope durations in seconds.
	FadeIn  float64
	FadeOut float64
	// Loop repeats the track to cover the whole clip.
	Loop bool
}

// AddAudio mixes an external audio file into the clip. Any existing audio
// track is kept and additively composited with the new one, never replaced.
// The result is trimmed to the clip's duration.
func (e *Engine) AddAudio(ctx context.Context, c clip.Clip, opts AudioOptions) (clip.Clip, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return clip.Clip{}, fmt.Errorf("%w: empty audio path", ErrInvalidParameter)
	}
	if _, err := os.Stat(opts.Path); err != nil {
		return clip.Clip{}, fmt.Errorf("audio track %s: %w", opts.Path, err)
	}
	if opts.StartTime < 0 || opts.StartTime >= c.Duration {
		return clip.Clip{}, fmt.Errorf("%w: audio start %vs on %vs clip", ErrInvalidTimeRange, opts.StartTime, c.Duration)
	}
	volume := opts.Volume
	if volume == 0 {
		volume = 1.0
	}
	if volume < 0 {
		return clip.Clip{}, fmt.Errorf("%w: volume %v", ErrInvalidParameter, opts.Volume)
	}

	args := []string{"-i", c.Path}
	if opts.Loop {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args, "-i", opts.Path)

	// External track chain: volume, fades, delayed entry, trim to clip end.
	chain := []string{fmt.Sprintf("volume=%s", formatSeconds(volume))}
	trackSpan := c.Duration - opts.StartTime
	if opts.FadeIn > 0 {
		chain = append(chain, fmt.Sprintf("afade=t=in:st=0:d=%s", formatSeconds(opts.FadeIn)))
	}
	if opts.FadeOut > 0 {
		fadeStart := trackSpan - opts.FadeOut
		if fadeStart < 0 {
			fadeStart = 0
		}
		chain = append(chain, fmt.Sprintf("afade=t=out:st=%s:d=%s", formatSeconds(fadeStart), formatSeconds(opts.FadeOut)))
	}
	chain = append(chain, fmt.Sprintf("atrim=0:%s", formatSeconds(trackSpan)))
	if opts.StartTime > 0 {
		delayMS := int(opts.StartTime * 1000)
		chain = append(chain, fmt.Sprintf("adelay=%d|%d", delayMS, delayMS))
	}

	var graph string
	if c.HasAudio {
		graph = fmt.Sprintf("[1:a]%s[ext];[0:a][ext]amix=inputs=2:duration=first:normalize=0[aout]", strings.Join(chain, ","))
	} else {
		chain = append(chain, fmt.Sprintf("apad,atrim=0:%s", formatSeconds(c.Duration)))
		graph = fmt.Sprintf("[1:a]%s[aout]", strings.Join(chain, ","))
	}

	out, err := e.loader.Workspace().Intermediate("audio", ".mp4")
	if err != nil {
		return clip.Clip{}, err
	}
	args = append(args,
		"-filter_complex", graph,
		"-map", "0:v", "-map", "[aout]",
		"-c:v", "copy", "-c:a", "aac",
		"-t", formatSeconds(c.Duration),
		out,
	)
	return e.render(ctx, args, out)
}
