package editing

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"instastudio/internal/media/clip"
)

// Transition names the join style between concatenated clips.
type Transition string

const (
	TransitionNone      Transition = "none"
	TransitionCrossfade Transition = "crossfade"
	TransitionFadeIn    Transition = "fadein"
	TransitionFadeOut   Transition = "fadeout"
)

// ParseTransition normalizes a transition name. Empty means none.
func ParseTransition(value string) (Transition, error) {
	switch Transition(strings.ToLower(strings.TrimSpace(value))) {
	case "", TransitionNone:
		return TransitionNone, nil
	case TransitionCrossfade:
		return TransitionCrossfade, nil
	case TransitionFadeIn:
		return TransitionFadeIn, nil
	case TransitionFadeOut:
		return TransitionFadeOut, nil
	default:
		return "", fmt.Errorf("%w: transition %q", ErrInvalidParameter, value)
	}
}

// Concatenate joins clips in list order. A single clip is returned unchanged.
// Crossfade overlaps every adjacent pair by transitionSeconds, shortening the
// total duration; fadein/fadeout only touch the first/last clip.
func (e *Engine) Concatenate(ctx context.Context, clips []clip.Clip, transition Transition, transitionSeconds float64) (clip.Clip, error) {
	if len(clips) == 0 {
		return clip.Clip{}, ErrEmptyClipList
	}
	if len(clips) == 1 {
		return clips[0], nil
	}
	if transition == "" {
		transition = TransitionNone
	}
	if transitionSeconds <= 0 {
		transitionSeconds = 0.5
	}

	out, err := e.loader.Workspace().Intermediate("concat", ".mp4")
	if err != nil {
		return clip.Clip{}, err
	}

	var args []string
	switch transition {
	case TransitionCrossfade:
		args = crossfadeArgs(clips, transitionSeconds, out)
	case TransitionNone, TransitionFadeIn, TransitionFadeOut:
		args = concatArgs(clips, transition, transitionSeconds, out)
	default:
		return clip.Clip{}, fmt.Errorf("%w: transition %q", ErrInvalidParameter, transition)
	}

	return e.render(ctx, args, out)
}

// concatArgs builds a concat-filter invocation, synthesizing silence for
// clips without an audio track so stream counts line up.
func concatArgs(clips []clip.Clip, transition Transition, transitionSeconds float64, out string) []string {
	args := make([]string, 0, len(clips)*4+10)
	silentInputs := 0
	silentIndex := make(map[int]int, len(clips))
	for i, c := range clips {
		args = append(args, "-i", c.Path)
		if !c.HasAudio {
			silentIndex[i] = len(clips) + silentInputs
			silentInputs++
		}
	}
	for _, c := range clips {
		if !c.HasAudio {
			args = append(args,
				"-f", "lavfi",
				"-t", formatSeconds(c.Duration),
				"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
			)
		}
	}

	var graph strings.Builder
	for i, c := range clips {
		videoLabel := fmt.Sprintf("[%d:v]", i)
		switch {
		case transition == TransitionFadeIn && i == 0:
			fmt.Fprintf(&graph, "%sfade=t=in:st=0:d=%s[v%d];", videoLabel, formatSeconds(transitionSeconds), i)
			videoLabel = fmt.Sprintf("[v%d]", i)
		case transition == TransitionFadeOut && i == len(clips)-1:
			start := c.Duration - transitionSeconds
			if start < 0 {
				start = 0
			}
			fmt.Fprintf(&graph, "%sfade=t=out:st=%s:d=%s[v%d];", videoLabel, formatSeconds(start), formatSeconds(transitionSeconds), i)
			videoLabel = fmt.Sprintf("[v%d]", i)
		}
		audioLabel := fmt.Sprintf("[%d:a]", i)
		if idx, silent := silentIndex[i]; silent {
			audioLabel = fmt.Sprintf("[%d:a]", idx)
		}
		graph.WriteString(videoLabel)
		graph.WriteString(audioLabel)
	}
	fmt.Fprintf(&graph, "concat=n=%d:v=1:a=1[vout][aout]", len(clips))

	return append(args,
		"-filter_complex", graph.String(),
		"-map", "[vout]", "-map", "[aout]",
		"-c:v", "libx264", "-preset", "veryfast", "-c:a", "aac",
		out,
	)
}

// crossfadeArgs chains xfade/acrossfade across adjacent pairs. Each overlap
// consumes transitionSeconds from the running total.
func crossfadeArgs(clips []clip.Clip, transitionSeconds float64, out string) []string {
	args := make([]string, 0, len(clips)*2+10)
	silentInputs := 0
	silentIndex := make(map[int]int, len(clips))
	for i, c := range clips {
		args = append(args, "-i", c.Path)
		if !c.HasAudio {
			silentIndex[i] = len(clips) + silentInputs
			silentInputs++
		}
	}
	for _, c := range clips {
		if !c.HasAudio {
			args = append(args,
				"-f", "lavfi",
				"-t", formatSeconds(c.Duration),
				"-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
			)
		}
	}
	audioInput := func(i int) string {
		if idx, silent := silentIndex[i]; silent {
			return fmt.Sprintf("[%d:a]", idx)
		}
		return fmt.Sprintf("[%d:a]", i)
	}

	var graph strings.Builder
	runningDuration := clips[0].Duration
	prevVideo := "[0:v]"
	prevAudio := audioInput(0)
	for i := 1; i < len(clips); i++ {
		offset := runningDuration - transitionSeconds
		if offset < 0 {
			offset = 0
		}
		videoOut := fmt.Sprintf("[vx%d]", i)
		audioOut := fmt.Sprintf("[ax%d]", i)
		fmt.Fprintf(&graph, "%s[%d:v]xfade=transition=fade:duration=%s:offset=%s%s;",
			prevVideo, i, formatSeconds(transitionSeconds), formatSeconds(offset), videoOut)
		fmt.Fprintf(&graph, "%s%sacrossfade=d=%s%s;",
			prevAudio, audioInput(i), formatSeconds(transitionSeconds), audioOut)
		prevVideo = videoOut
		prevAudio = audioOut
		runningDuration = offset + clips[i].Duration
	}
	graphStr := strings.TrimSuffix(graph.String(), ";")

	return append(args,
		"-filter_complex", graphStr,
		"-map", prevVideo, "-map", prevAudio,
		"-c:v", "libx264", "-preset", "veryfast", "-c:a", "aac",
		out,
	)
}

func formatSeconds(value float64) string {
	return strconv.FormatFloat(value, 'f', 3, 64)
}
