package renderspec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownContentType indicates a content type with no render spec.
var ErrUnknownContentType = errors.New("unknown content type")

// Spec captures the platform's rendering constraints for one content type.
// Publishing code validates against it; editing code uses it as a resize
// target.
type Spec struct {
	ContentType string
	// AspectW/AspectH express the required aspect ratio (9:16, 1:1).
	AspectW int
	AspectH int
	// MinSeconds/MaxSeconds bound video duration. Zero means not constrained.
	MinSeconds float64
	MaxSeconds float64
	// ExactSeconds pins duration to one value (stories). Zero means unused.
	ExactSeconds float64
	// Width/Height are the recommended output dimensions.
	Width  int
	Height int
	// Formats lists accepted file extensions without the leading dot.
	Formats []string
	// MinItems/MaxItems bound multi-item posts (carousels). Zero means single.
	MinItems int
	MaxItems int
}

var table = map[string]Spec{
	"reel": {
		ContentType: "reel",
		AspectW:     9, AspectH: 16,
		MinSeconds: 3, MaxSeconds: 90,
		Width: 1080, Height: 1920,
		Formats: []string{"mp4", "mov"},
	},
	"story": {
		ContentType: "story",
		AspectW:     9, AspectH: 16,
		ExactSeconds: 15,
		Width:        1080, Height: 1920,
		Formats: []string{"mp4", "mov", "jpg", "png"},
	},
	"carousel": {
		ContentType: "carousel",
		AspectW:     1, AspectH: 1,
		Width: 1080, Height: 1080,
		Formats:  []string{"jpg", "png", "mp4"},
		MinItems: 2, MaxItems: 10,
	},
	"feed": {
		ContentType: "feed",
		AspectW:     1, AspectH: 1,
		Width: 1080, Height: 1080,
		Formats: []string{"jpg", "png", "mp4"},
	},
}

// Lookup returns the spec for a content type.
func Lookup(contentType string) (Spec, error) {
	normalized := strings.ToLower(strings.TrimSpace(contentType))
	spec, ok := table[normalized]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownContentType, contentType)
	}
	return spec, nil
}

// ContentTypes returns the known content type names.
func ContentTypes() []string {
	return []string{"reel", "story", "carousel", "feed"}
}

// AcceptsFormat reports whether the spec allows the given file extension.
func (s Spec) AcceptsFormat(ext string) bool {
	cleaned := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	for _, format := range s.Formats {
		if format == cleaned {
			return true
		}
	}
	return false
}

// ValidateDuration checks a video duration in seconds against the spec.
func (s Spec) ValidateDuration(seconds float64) error {
	const tolerance = 0.5
	if s.ExactSeconds > 0 {
		if seconds < s.ExactSeconds-tolerance || seconds > s.ExactSeconds+tolerance {
			return fmt.Errorf("%s requires exactly %.0fs, got %.2fs", s.ContentType, s.ExactSeconds, seconds)
		}
		return nil
	}
	if s.MinSeconds > 0 && seconds < s.MinSeconds {
		return fmt.Errorf("%s requires at least %.0fs, got %.2fs", s.ContentType, s.MinSeconds, seconds)
	}
	if s.MaxSeconds > 0 && seconds > s.MaxSeconds {
		return fmt.Errorf("%s allows at most %.0fs, got %.2fs", s.ContentType, s.MaxSeconds, seconds)
	}
	return nil
}

// ValidateItemCount checks a multi-item post size against the spec.
func (s Spec) ValidateItemCount(count int) error {
	if s.MinItems == 0 && s.MaxItems == 0 {
		if count != 1 {
			return fmt.Errorf("%s accepts a single item, got %d", s.ContentType, count)
		}
		return nil
	}
	if count < s.MinItems || count > s.MaxItems {
		return fmt.Errorf("%s requires %d-%d items, got %d", s.ContentType, s.MinItems, s.MaxItems, count)
	}
	return nil
}
