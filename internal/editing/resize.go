package editing

import (
	"context"
	"fmt"
	"strings"

	"instastudio/internal/media/clip"
	"instastudio/internal/renderspec"
)

// ResizeMethod selects how aspect-ratio mismatches are resolved.
type ResizeMethod string

const (
	// ResizeCrop center-crops the source to the target aspect before scaling.
	ResizeCrop ResizeMethod = "crop"
	// ResizePad letterboxes the source, preserving all content.
	ResizePad ResizeMethod = "pad"
)

// ParseResizeMethod normalizes a method name. Empty means crop.
func ParseResizeMethod(value string) (ResizeMethod, error) {
	switch ResizeMethod(strings.ToLower(strings.TrimSpace(value))) {
	case "", ResizeCrop:
		return ResizeCrop, nil
	case ResizePad:
		return ResizePad, nil
	default:
		return "", fmt.Errorf("%w: resize method %q", ErrInvalidParameter, value)
	}
}

// ResizeForTarget conforms a clip to the render spec of the given content
// type, yielding exactly the spec's pixel resolution regardless of source
// aspect ratio.
func (e *Engine) ResizeForTarget(ctx context.Context, c clip.Clip, contentType string, method ResizeMethod) (clip.Clip, error) {
	spec, err := renderspec.Lookup(contentType)
	if err != nil {
		return clip.Clip{}, err
	}
	if method == "" {
		method = ResizeCrop
	}

	var filter string
	aspect := fmt.Sprintf("%d/%d", spec.AspectW, spec.AspectH)
	switch method {
	case ResizeCrop:
		// Symmetric center crop to the target aspect, then exact scale.
		filter = fmt.Sprintf(
			"crop='min(iw,ih*%s)':'min(ih,iw/(%s))',scale=%d:%d,setsar=1",
			aspect, aspect, spec.Width, spec.Height,
		)
	case ResizePad:
		filter = fmt.Sprintf(
			"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
			spec.Width, spec.Height, spec.Width, spec.Height,
		)
	default:
		return clip.Clip{}, fmt.Errorf("%w: resize method %q", ErrInvalidParameter, method)
	}

	out, err := e.loader.Workspace().Intermediate("resize", ".mp4")
	if err != nil {
		return clip.Clip{}, err
	}
	args := []string{
		"-i", c.Path,
		"-vf", filter,
		"-c:v", "libx264", "-preset", "veryfast",
	}
	if c.HasAudio {
		args = append(args, "-c:a", "aac")
	} else {
		args = append(args, "-an")
	}
	args = append(args, out)
	return e.render(ctx, args, out)
}
