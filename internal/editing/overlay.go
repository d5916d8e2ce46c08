package editing

import (
	"context"
	"fmt"
	"strings"

	"instastudio/internal/media/clip"
)

// TextOptions configures a text overlay composite.
type TextOptions struct {
	Text string
	// Position is center, top, bottom, or empty when X/Y are set.
	Position string
	// X, Y are normalized coordinates in [0, 1], used when Position is empty.
	X, Y *float64
	// StartTime and Duration bound the overlay window. Duration 0 means
	// until clip end.
	StartTime float64
	Duration  float64
	FontSize  int
	Color     string
	// Stroke draws an outline for legibility over busy footage.
	StrokeColor string
	StrokeWidth int
}

// TextOverlay composites wrapped text onto the clip for the configured time
// window. Text is wrapped so no line exceeds 80% of the frame width.
func (e *Engine) TextOverlay(ctx context.Context, c clip.Clip, opts TextOptions) (clip.Clip, error) {
	if strings.TrimSpace(opts.Text) == "" {
		return clip.Clip{}, fmt.Errorf("%w: empty overlay text", ErrInvalidParameter)
	}
	if opts.StartTime < 0 || opts.StartTime >= c.Duration {
		return clip.Clip{}, fmt.Errorf("%w: overlay start %vs on %vs clip", ErrInvalidTimeRange, opts.StartTime, c.Duration)
	}
	end := c.Duration
	if opts.Duration > 0 {
		end = opts.StartTime + opts.Duration
		if end > c.Duration {
			end = c.Duration
		}
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 48
	}
	if opts.Color == "" {
		opts.Color = "white"
	}

	wrapped := wrapText(opts.Text, maxCharsPerLine(c.Width, opts.FontSize))

	x, y := overlayPosition(opts)
	filter := fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=%s:x=%s:y=%s:enable='between(t,%s,%s)'",
		escapeDrawtext(wrapped), opts.FontSize, opts.Color, x, y,
		formatSeconds(opts.StartTime), formatSeconds(end),
	)
	if opts.StrokeWidth > 0 {
		strokeColor := opts.StrokeColor
		if strokeColor == "" {
			strokeColor = "black"
		}
		filter += fmt.Sprintf(":borderw=%d:bordercolor=%s", opts.StrokeWidth, strokeColor)
	}

	out, err := e.loader.Workspace().Intermediate("text", ".mp4")
	if err != nil {
		return clip.Clip{}, err
	}
	args := []string{
		"-i", c.Path,
		"-vf", filter,
		"-c:v", "libx264", "-preset", "veryfast",
	}
	if c.HasAudio {
		args = append(args, "-c:a", "copy")
	} else {
		args = append(args, "-an")
	}
	args = append(args, out)
	return e.render(ctx, args, out)
}

func overlayPosition(opts TextOptions) (x, y string) {
	if opts.X != nil && opts.Y != nil {
		return fmt.Sprintf("(w*%s)-(text_w/2)", formatSeconds(*opts.X)),
			fmt.Sprintf("(h*%s)-(text_h/2)", formatSeconds(*opts.Y))
	}
	switch strings.ToLower(strings.TrimSpace(opts.Position)) {
	case "top":
		return "(w-text_w)/2", "h*0.1"
	case "bottom":
		return "(w-text_w)/2", "h*0.85-text_h"
	default: // center
		return "(w-text_w)/2", "(h-text_h)/2"
	}
}

// maxCharsPerLine estimates how many characters fit in 80% of the frame
// width, assuming average glyph width around 60% of the font size.
func maxCharsPerLine(frameWidth, fontSize int) int {
	if frameWidth <= 0 || fontSize <= 0 {
		return 30
	}
	usable := float64(frameWidth) * 0.8
	perChar := float64(fontSize) * 0.6
	chars := int(usable / perChar)
	if chars < 8 {
		chars = 8
	}
	return chars
}

func wrapText(text string, maxChars int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		if len(current)+1+len(word) > maxChars {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}

// escapeDrawtext quotes characters with meaning inside a drawtext value.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}
