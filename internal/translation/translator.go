package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"instastudio/internal/commands"
	"instastudio/internal/config"
	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
	"instastudio/internal/plan"
	"instastudio/internal/queue"
	"instastudio/internal/services"
	"instastudio/internal/services/llm"
	"instastudio/internal/stage"
	"instastudio/internal/textutil"
	"instastudio/internal/translate"
)

// Translator is the first pipeline stage. For edit jobs it turns the
// natural-language command into an operation list; for repurpose and
// compilation jobs it ensures a content plan exists, generating one from the
// source posts when the item arrived without one.
type Translator struct {
	cfg        *config.Config
	logger     *slog.Logger
	client     *llm.Client
	translator *translate.Translator
	generator  *plan.Generator
	probe      clip.ProbeFunc
}

// New constructs the translation stage handler.
func New(cfg *config.Config, logger *slog.Logger) *Translator {
	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		Referer:        cfg.LLM.Referer,
		Title:          cfg.LLM.Title,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	scoped := logging.NewComponentLogger(logger, "translator")
	return &Translator{
		cfg:        cfg,
		logger:     scoped,
		client:     client,
		translator: translate.NewTranslator(client, scoped),
		generator:  plan.NewGenerator(client, scoped),
		probe:      clip.DefaultProbe(cfg.FFmpeg.FFprobeBinary),
	}
}

// SetLogger injects the stage-scoped logger.
func (t *Translator) SetLogger(logger *slog.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// Prepare validates that the item carries enough input for its job type.
func (t *Translator) Prepare(_ context.Context, item *queue.Item) error {
	switch item.JobType {
	case queue.JobEdit:
		if strings.TrimSpace(item.Command) == "" {
			return services.Wrap(services.ErrValidation, "translator", "prepare",
				"Edit jobs need a command; re-queue with an instruction", nil)
		}
		if strings.TrimSpace(item.SourcePath) == "" {
			return services.Wrap(services.ErrValidation, "translator", "prepare",
				"Edit jobs need a source file", nil)
		}
	case queue.JobRepurpose, queue.JobCompilation:
		if strings.TrimSpace(item.SourcePostsJSON) == "" {
			return services.Wrap(services.ErrValidation, "translator", "prepare",
				"Repurpose jobs need source posts", nil)
		}
	}
	return nil
}

// Execute runs the translation or planning step for the item.
func (t *Translator) Execute(ctx context.Context, item *queue.Item) error {
	switch item.JobType {
	case queue.JobEdit:
		return t.translateEdit(ctx, item)
	case queue.JobRepurpose, queue.JobCompilation:
		return t.ensurePlan(ctx, item)
	default:
		return services.Wrap(services.ErrValidation, "translator", "execute",
			"Unknown job type "+string(item.JobType), nil)
	}
}

func (t *Translator) translateEdit(ctx context.Context, item *queue.Item) error {
	item.SetProgress("Translating", "Translating command", 10)

	result, err := t.translator.Translate(ctx, item.Command, t.buildContext(ctx, item))
	if err != nil {
		return services.Wrap(classifyModelError(err), "translator", "translate command",
			"Command could not be translated into operations", err)
	}

	encoded, err := commands.EncodeOperations(result.Operations)
	if err != nil {
		return services.Wrap(services.ErrTransient, "translator", "encode operations", "", err)
	}
	item.OperationsJSON = encoded
	if item.ContentType == "" && result.Metadata.ContentType != "" {
		item.ContentType = strings.ToLower(strings.TrimSpace(result.Metadata.ContentType))
	}

	item.SetProgressComplete("Translated", result.Metadata.Description)
	t.logger.Info("command translated",
		logging.String(logging.FieldEventType, "translation_complete"),
		logging.Int("operations", len(result.Operations)),
		logging.String("content_type", item.ContentType),
	)
	return nil
}

func (t *Translator) ensurePlan(ctx context.Context, item *queue.Item) error {
	if strings.TrimSpace(item.PlanJSON) != "" {
		decoded, err := stage.ParsePlan(item.PlanJSON)
		if err != nil {
			return err
		}
		if item.Title == "" {
			item.Title = textutil.TitleCase(decoded.Title)
		}
		if item.Caption == "" {
			item.Caption = decoded.Caption
		}
		item.SetProgressComplete("Translated", "Plan accepted")
		return nil
	}

	item.SetProgress("Translating", "Generating content plan", 10)
	posts, err := stage.ParseSourcePosts(item.SourcePostsJSON)
	if err != nil {
		return err
	}
	summaries := make([]plan.PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, plan.PostSummary{
			MediaID:   post.MediaID,
			MediaType: post.MediaType,
			Caption:   post.Caption,
		})
	}

	plans, err := t.generator.Generate(ctx, item.Command, summaries, 1)
	if err != nil {
		return services.Wrap(classifyModelError(err), "translator", "generate plan",
			"Content plan could not be generated", err)
	}
	chosen := plans[0]
	raw, err := plan.Encode(chosen)
	if err != nil {
		return services.Wrap(services.ErrTransient, "translator", "encode plan", "", err)
	}
	item.PlanJSON = string(raw)
	if item.Title == "" {
		item.Title = textutil.TitleCase(chosen.Title)
	}
	if item.Caption == "" {
		item.Caption = chosen.Caption
	}

	item.SetProgressComplete("Translated", "Plan generated")
	t.logger.Info("content plan generated",
		logging.String(logging.FieldEventType, "plan_generated"),
		logging.String("plan_title", chosen.Title),
	)
	return nil
}

// classifyModelError picks the failure marker for a model call. A malformed
// or unusable response is an input problem a retry cannot fix; anything else
// is transport trouble and stays retryable.
func classifyModelError(err error) error {
	if errors.Is(err, translate.ErrTranslationFormat) || errors.Is(err, plan.ErrPlanFormat) {
		return services.ErrValidation
	}
	return services.ErrTransient
}

// buildContext gathers what the model should know about the source media.
// Probe failures are tolerated; the translator works with less context.
func (t *Translator) buildContext(ctx context.Context, item *queue.Item) translate.Context {
	tc := translate.Context{ContentType: item.ContentType}
	if path := strings.TrimSpace(item.SourcePath); path != "" && t.probe != nil {
		if probed, err := t.probe(ctx, path); err == nil {
			tc.Duration = probed.DurationSeconds()
			if w, h := probed.Dimensions(); w > 0 && h > 0 {
				tc.Resolution = fmt.Sprintf("%dx%d", w, h)
			}
		} else {
			logging.WarnWithContext(t.logger, "source probe failed; translating without media context",
				"source_probe_failed", logging.Error(err))
		}
	}
	tc.AvailableAudioTracks = listAudioTracks(t.cfg.Paths.MusicDir)
	return tc
}

func listAudioTracks(dir string) []string {
	if strings.TrimSpace(dir) == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var tracks []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".mp3", ".m4a", ".wav", ".flac", ".ogg":
			tracks = append(tracks, entry.Name())
		}
	}
	sort.Strings(tracks)
	return tracks
}

// HealthCheck reports whether the LLM endpoint is reachable.
func (t *Translator) HealthCheck(ctx context.Context) stage.Health {
	if strings.TrimSpace(t.cfg.LLM.APIKey) == "" {
		return stage.Unhealthy("translator", "LLM API key not configured")
	}
	if err := t.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("translator", err.Error())
	}
	return stage.Healthy("translator")
}
