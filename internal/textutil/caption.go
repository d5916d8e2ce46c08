package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxCaptionLength is the platform limit for post captions.
const MaxCaptionLength = 2200

var titleCaser = cases.Title(language.English, cases.NoLower)

// SanitizeCaption prepares user or model text for the publishing boundary:
// control characters are dropped, horizontal whitespace is collapsed within
// lines, blank runs shrink to one empty line, and the result is truncated to
// MaxCaptionLength runes.
func SanitizeCaption(caption string) string {
	var lines []string
	blanks := 0
	for _, line := range strings.Split(caption, "\n") {
		cleaned := collapseSpaces(stripControl(line))
		if cleaned == "" {
			blanks++
			if blanks > 1 || len(lines) == 0 {
				continue
			}
			lines = append(lines, "")
			continue
		}
		blanks = 0
		lines = append(lines, cleaned)
	}
	out := strings.TrimSpace(strings.Join(lines, "\n"))
	runes := []rune(out)
	if len(runes) > MaxCaptionLength {
		out = strings.TrimSpace(string(runes[:MaxCaptionLength]))
	}
	return out
}

// TitleCase renders a plan title for display and filenames.
func TitleCase(value string) string {
	return titleCaser.String(strings.TrimSpace(value))
}

func stripControl(value string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, value)
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
