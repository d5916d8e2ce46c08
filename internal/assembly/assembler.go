package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode"

	"instastudio/internal/assetcache"
	"instastudio/internal/commands"
	"instastudio/internal/config"
	"instastudio/internal/editing"
	"instastudio/internal/export"
	"instastudio/internal/logging"
	"instastudio/internal/media/clip"
	"instastudio/internal/media/ffmpeg"
	"instastudio/internal/plan"
	"instastudio/internal/queue"
	"instastudio/internal/renderspec"
	"instastudio/internal/repurpose"
	"instastudio/internal/services"
	"instastudio/internal/stage"
)

// Assembler is the rendering stage. Edit jobs run their translated operation
// list through the editing engine; repurpose and compilation jobs run the
// repurposing engine against the cached source posts. Either way the stage
// ends with an exported file in OutputDir that satisfies the content type's
// render spec.
type Assembler struct {
	cfg    *config.Config
	logger *slog.Logger
	runner ffmpeg.Runner
	probe  clip.ProbeFunc
	cache  *assetcache.Cache
}

// New constructs the assembly stage handler. The shared asset cache is
// created eagerly so repeated repurpose jobs reuse downloads.
func New(cfg *config.Config, logger *slog.Logger) (*Assembler, error) {
	scoped := logging.NewComponentLogger(logger, "assembler")
	cache, err := assetcache.New(cfg.Paths.CacheDir, scoped)
	if err != nil {
		return nil, fmt.Errorf("assembler: %w", err)
	}
	return &Assembler{
		cfg:    cfg,
		logger: scoped,
		runner: ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpeg.FFmpegBinary)),
		probe:  clip.DefaultProbe(cfg.FFmpeg.FFprobeBinary),
		cache:  cache,
	}, nil
}

// SetLogger injects the stage-scoped logger.
func (a *Assembler) SetLogger(logger *slog.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// Prepare checks that the item carries the artifacts the render needs.
func (a *Assembler) Prepare(_ context.Context, item *queue.Item) error {
	switch item.JobType {
	case queue.JobEdit:
		if strings.TrimSpace(item.OperationsJSON) == "" {
			return services.Wrap(services.ErrValidation, "assembler", "prepare",
				"Operation list missing; rerun translation", nil)
		}
	case queue.JobRepurpose, queue.JobCompilation:
		if strings.TrimSpace(item.PlanJSON) == "" {
			return services.Wrap(services.ErrValidation, "assembler", "prepare",
				"Content plan missing; rerun translation", nil)
		}
	}
	return nil
}

// Execute renders the item and stores the output path.
func (a *Assembler) Execute(ctx context.Context, item *queue.Item) error {
	ws, err := clip.NewWorkspace(a.cfg.Paths.WorkspaceDir)
	if err != nil {
		return services.Wrap(services.ErrTransient, "assembler", "create workspace", "", err)
	}
	defer func() {
		if closeErr := ws.Close(); closeErr != nil {
			a.logger.Warn("workspace cleanup failed", logging.Error(closeErr))
		}
	}()

	loader := clip.NewLoader(ws, a.runner, a.probe)
	engine := editing.NewEngine(loader, a.runner, a.logger)
	exporter := export.NewExporter(a.runner, a.logger)
	destination := a.outputPath(item)

	var output string
	switch item.JobType {
	case queue.JobEdit:
		output, err = a.renderEdit(ctx, item, engine, exporter, destination)
	case queue.JobRepurpose:
		output, err = a.renderReel(ctx, item, engine, exporter, destination)
	case queue.JobCompilation:
		output, err = a.renderCompilation(ctx, item, engine, exporter, destination)
	default:
		return services.Wrap(services.ErrValidation, "assembler", "execute",
			"Unknown job type "+string(item.JobType), nil)
	}
	if err != nil {
		return err
	}

	if err := a.validateRender(ctx, item, output); err != nil {
		return err
	}

	item.OutputPath = output
	item.SetProgressComplete("Rendered", filepath.Base(output))
	a.logger.Info("render complete",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", output),
	)
	return nil
}

func (a *Assembler) renderEdit(ctx context.Context, item *queue.Item, engine *editing.Engine, exporter *export.Exporter, destination string) (string, error) {
	ops, err := stage.ParseOperations(item.OperationsJSON)
	if err != nil {
		return "", err
	}

	item.SetProgress("Assembling", "Loading source", 10)
	source, err := engine.Loader().Load(ctx, item.SourcePath)
	if err != nil {
		return "", services.Wrap(classifyRenderError(err), "assembler", "load source",
			"Source file could not be read", err)
	}

	item.SetProgress("Assembling", "Applying operations", 30)
	executor := commands.NewExecutor(engine, a.logger)
	result, err := executor.Execute(ctx, source, ops)
	if err != nil {
		return "", services.Wrap(classifyRenderError(err), "assembler", "apply operations", "", err)
	}

	item.SetProgress("Assembling", "Exporting", 80)
	output, err := exporter.Export(ctx, result, destination, a.exportOptions(item))
	if err != nil {
		return "", services.Wrap(classifyRenderError(err), "assembler", "export", "", err)
	}
	return output, nil
}

func (a *Assembler) renderReel(ctx context.Context, item *queue.Item, engine *editing.Engine, exporter *export.Exporter, destination string) (string, error) {
	contentPlan, posts, err := a.planInputs(item)
	if err != nil {
		return "", err
	}
	item.SetProgress("Assembling", "Building reel", 20)
	reel := a.repurposeEngine(engine, exporter, item)
	output, err := reel.CreateReel(ctx, contentPlan, posts, destination)
	if err != nil {
		return "", services.Wrap(classifyRenderError(err), "assembler", "create reel", "", err)
	}
	return output, nil
}

func (a *Assembler) renderCompilation(ctx context.Context, item *queue.Item, engine *editing.Engine, exporter *export.Exporter, destination string) (string, error) {
	contentPlan, posts, err := a.planInputs(item)
	if err != nil {
		return "", err
	}
	theme := strings.TrimSpace(contentPlan.Title)
	if theme == "" {
		theme = strings.TrimSpace(item.Title)
	}
	item.SetProgress("Assembling", "Building compilation", 20)
	reel := a.repurposeEngine(engine, exporter, item)
	output, err := reel.CreateCompilation(ctx, posts, theme, contentPlan.TargetDuration(), true, destination)
	if err != nil {
		return "", services.Wrap(classifyRenderError(err), "assembler", "create compilation", "", err)
	}
	return output, nil
}

// classifyRenderError picks the failure marker for a render error. Input
// sentinels cannot succeed on a retry and route to review; download and
// toolchain failures keep the retryable markers.
func classifyRenderError(err error) error {
	switch {
	case errors.Is(err, editing.ErrInvalidRange),
		errors.Is(err, editing.ErrEmptyTimeline),
		errors.Is(err, editing.ErrInvalidTimeRange),
		errors.Is(err, editing.ErrEmptyClipList),
		errors.Is(err, editing.ErrInvalidParameter),
		errors.Is(err, commands.ErrUnknownOperation),
		errors.Is(err, commands.ErrNotSupportedHere),
		errors.Is(err, renderspec.ErrUnknownContentType),
		errors.Is(err, repurpose.ErrNoCandidateClips):
		return services.ErrValidation
	case errors.Is(err, export.ErrIncompatibleFormat):
		return services.ErrConfiguration
	case errors.Is(err, repurpose.ErrDownloadsFailed):
		return services.ErrTransient
	case errors.Is(err, repurpose.ErrNoSourceMaterial):
		return services.ErrValidation
	case errors.Is(err, os.ErrNotExist):
		return services.ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return services.ErrTransient
	default:
		return services.ErrExternalTool
	}
}

func (a *Assembler) planInputs(item *queue.Item) (plan.ContentPlan, []repurpose.SourcePost, error) {
	contentPlan, err := stage.ParsePlan(item.PlanJSON)
	if err != nil {
		return plan.ContentPlan{}, nil, err
	}
	posts, err := stage.ParseSourcePosts(item.SourcePostsJSON)
	if err != nil {
		return plan.ContentPlan{}, nil, err
	}
	return contentPlan, posts, nil
}

func (a *Assembler) repurposeEngine(engine *editing.Engine, exporter *export.Exporter, item *queue.Item) *repurpose.Engine {
	opts := []repurpose.Option{}
	if item.Seed != 0 {
		opts = append(opts, repurpose.WithRand(rand.New(rand.NewSource(item.Seed))))
	}
	return repurpose.NewEngine(engine, a.cache, exporter, a.logger, opts...)
}

// validateRender enforces the content type's render spec before the item can
// leave the assembling stage. Violations route to review, not retry.
func (a *Assembler) validateRender(ctx context.Context, item *queue.Item, output string) error {
	contentType := strings.TrimSpace(item.ContentType)
	if contentType == "" {
		return nil
	}
	spec, err := renderspec.Lookup(contentType)
	if err != nil {
		return services.Wrap(services.ErrValidation, "assembler", "render spec", "", err)
	}
	if !spec.AcceptsFormat(filepath.Ext(output)) {
		return services.Wrap(services.ErrValidation, "assembler", "render spec",
			fmt.Sprintf("%s output format %s not allowed for %s", output, filepath.Ext(output), contentType), nil)
	}
	probed, err := a.probe(ctx, output)
	if err != nil {
		return services.Wrap(services.ErrTransient, "assembler", "probe output", "", err)
	}
	if probed.VideoStreamCount() > 0 {
		if err := spec.ValidateDuration(probed.DurationSeconds()); err != nil {
			return services.Wrap(services.ErrValidation, "assembler", "render spec", err.Error(), nil)
		}
	}
	return nil
}

func (a *Assembler) exportOptions(item *queue.Item) export.Options {
	return export.Options{
		VideoCodec: a.cfg.FFmpeg.VideoCodec,
		AudioCodec: a.cfg.FFmpeg.AudioCodec,
		Bitrate:    a.cfg.FFmpeg.Bitrate,
		FPS:        a.cfg.FFmpeg.FPS,
		Preset:     a.cfg.FFmpeg.Preset,
		OnProgress: func(percent float64) {
			if percent > 0 {
				item.SetProgress("Assembling", "Exporting", 80+percent*0.2)
			}
		},
	}
}

func (a *Assembler) outputPath(item *queue.Item) string {
	name := slugify(item.Title)
	if name == "" {
		name = fmt.Sprintf("item-%d", item.ID)
	}
	return filepath.Join(a.cfg.Paths.OutputDir, fmt.Sprintf("%s-%d.mp4", name, item.ID))
}

func slugify(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	var builder strings.Builder
	lastDash := true
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', unicode.IsDigit(r):
			builder.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				builder.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(builder.String(), "-")
}

// HealthCheck verifies the media toolchain binaries are available.
func (a *Assembler) HealthCheck(_ context.Context) stage.Health {
	for _, binary := range []string{a.cfg.FFmpeg.FFmpegBinary, a.cfg.FFmpeg.FFprobeBinary} {
		if strings.TrimSpace(binary) == "" {
			continue
		}
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("assembler", fmt.Sprintf("%s not found on PATH", binary))
		}
	}
	return stage.Healthy("assembler")
}
