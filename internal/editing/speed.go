package editing

import (
	"context"
	"fmt"
	"strings"

	"instastudio/internal/media/clip"
)

// Speed rescales the clip's time axis by factor. Audio tempo follows the
// video so the track stays audible instead of being dropped.
func (e *Engine) Speed(ctx context.Context, c clip.Clip, factor float64) (clip.Clip, error) {
	if factor <= 0 {
		return clip.Clip{}, fmt.Errorf("%w: speed factor %v", ErrInvalidParameter, factor)
	}

	out, err := e.loader.Workspace().Intermediate("speed", ".mp4")
	if err != nil {
		return clip.Clip{}, err
	}

	args := []string{
		"-i", c.Path,
		"-vf", fmt.Sprintf("setpts=PTS/%s", formatSeconds(factor)),
	}
	if c.HasAudio {
		args = append(args, "-af", atempoChain(factor))
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-c:v", "libx264", "-preset", "veryfast",
		out,
	)
	return e.render(ctx, args, out)
}

// atempoChain decomposes a tempo factor into the 0.5-2.0 range ffmpeg's
// atempo filter accepts per stage.
func atempoChain(factor float64) string {
	var stages []string
	for factor > 2.0 {
		stages = append(stages, "atempo=2.0")
		factor /= 2.0
	}
	for factor < 0.5 {
		stages = append(stages, "atempo=0.5")
		factor /= 0.5
	}
	stages = append(stages, fmt.Sprintf("atempo=%s", formatSeconds(factor)))
	return strings.Join(stages, ",")
}
