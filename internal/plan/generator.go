package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"instastudio/internal/logging"
	"instastudio/internal/services/llm"
)

// ErrPlanFormat indicates the model's response could not be decoded into
// content plans.
var ErrPlanFormat = errors.New("plan response malformed")

const defaultConceptCount = 5

const generatorSystemPrompt = `You are an expert short-form video strategist. Given an account's niche and summaries of its recent posts, you design reel concepts that repurpose the existing material.

Each concept must:
1. Leverage themes already proven by the source posts
2. Follow short-form best practices (hook in the first second, 15-60 second duration)
3. Be producible by stitching the listed source content

Return ONLY valid JSON in this format:
{
  "reels": [
    {
      "title": "catchy, scroll-stopping title",
      "hook": "first 3 seconds text/visual hook",
      "script": "full voiceover or text overlay script",
      "visual_plan": "how to stitch/edit the existing content",
      "duration": "target duration like 30s (15-60s)",
      "caption": "post caption with hashtags",
      "cta": "call to action",
      "music_suggestion": "audio style",
      "source_posts": ["media ids to use"],
      "expected_engagement": "Low|Medium|High|Viral"
    }
  ]
}`

// PostSummary is the slice of a source post the generator shows the model.
type PostSummary struct {
	MediaID   string `json:"media_id"`
	MediaType string `json:"media_type"`
	Caption   string `json:"caption,omitempty"`
	LikeCount int    `json:"like_count,omitempty"`
}

type completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generator asks the LLM for reel concepts grounded in existing posts.
type Generator struct {
	client completer
	logger *slog.Logger
}

// NewGenerator builds a Generator over an LLM client.
func NewGenerator(client *llm.Client, logger *slog.Logger) *Generator {
	return newGenerator(client, logger)
}

func newGenerator(client completer, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{client: client, logger: logger}
}

// Generate produces up to count reel concepts for the niche from the supplied
// post summaries.
func (g *Generator) Generate(ctx context.Context, niche string, posts []PostSummary, count int) ([]ContentPlan, error) {
	if count <= 0 {
		count = defaultConceptCount
	}
	niche = strings.TrimSpace(niche)
	if niche == "" {
		niche = "General"
	}

	content, err := g.client.CompleteJSON(ctx, generatorSystemPrompt, g.userPrompt(niche, posts, count))
	if err != nil {
		return nil, fmt.Errorf("generate plans: %w", err)
	}

	var decoded struct {
		Reels []ContentPlan `json:"reels"`
	}
	if err := llm.DecodeLLMJSON(content, &decoded); err != nil {
		// Some models return a bare array despite the requested envelope.
		var bare []ContentPlan
		if arrErr := llm.DecodeLLMJSON(content, &bare); arrErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlanFormat, err)
		}
		decoded.Reels = bare
	}
	if len(decoded.Reels) == 0 {
		return nil, fmt.Errorf("%w: no concepts", ErrPlanFormat)
	}
	if len(decoded.Reels) > count {
		decoded.Reels = decoded.Reels[:count]
	}

	g.logger.Info("content plans generated",
		logging.String("niche", niche),
		logging.Int("concepts", len(decoded.Reels)),
	)
	return decoded.Reels, nil
}

func (g *Generator) userPrompt(niche string, posts []PostSummary, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d reel concepts.\n\nNiche: %s\n", count, niche)
	videos := 0
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.MediaType), "video") || strings.Contains(strings.ToLower(p.MediaType), "reel") {
			videos++
		}
	}
	fmt.Fprintf(&b, "\nAvailable source content: %d videos and %d images.\n", videos, len(posts)-videos)
	if len(posts) > 0 {
		b.WriteString("\nRecent posts:\n")
		for _, p := range posts {
			caption := strings.TrimSpace(p.Caption)
			if len(caption) > 120 {
				caption = caption[:120] + "..."
			}
			fmt.Fprintf(&b, "- %s (%s, %d likes): %s\n", p.MediaID, p.MediaType, p.LikeCount, caption)
		}
	}
	return b.String()
}
