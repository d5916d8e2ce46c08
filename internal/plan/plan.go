package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultDurationSeconds is used when a plan carries no parseable duration.
const DefaultDurationSeconds = 30.0

// ContentPlan is one reel concept, either AI-generated or hand-written. The
// JSON field names match the generator's prompt contract.
type ContentPlan struct {
	Title              string   `json:"title"`
	Hook               string   `json:"hook"`
	Script             string   `json:"script"`
	VisualPlan         string   `json:"visual_plan"`
	Duration           string   `json:"duration"`
	Caption            string   `json:"caption"`
	CTA                string   `json:"cta"`
	MusicSuggestion    string   `json:"music_suggestion"`
	SourcePosts        []string `json:"source_posts,omitempty"`
	ExpectedEngagement string   `json:"expected_engagement,omitempty"`
}

// TargetDuration returns the plan's duration in seconds.
func (p ContentPlan) TargetDuration() float64 {
	return ParseDuration(p.Duration)
}

// ParseDuration parses duration strings like "30s", "45", or "1m" into
// seconds. Unparseable input falls back to DefaultDurationSeconds.
func ParseDuration(value string) float64 {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return DefaultDurationSeconds
	}
	if strings.HasSuffix(trimmed, "m") {
		if minutes, err := strconv.ParseFloat(strings.TrimSuffix(trimmed, "m"), 64); err == nil && minutes > 0 {
			return minutes * 60
		}
		return DefaultDurationSeconds
	}
	trimmed = strings.TrimSuffix(trimmed, "s")
	seconds, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || seconds <= 0 {
		return DefaultDurationSeconds
	}
	return seconds
}

// Decode parses a stored plan payload.
func Decode(data []byte) (ContentPlan, error) {
	var p ContentPlan
	if len(data) == 0 {
		return p, fmt.Errorf("decode plan: empty payload")
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode plan: %w", err)
	}
	return p, nil
}

// Encode serializes a plan for queue storage.
func Encode(p ContentPlan) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	return data, nil
}
