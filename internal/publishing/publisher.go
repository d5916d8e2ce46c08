package publishing

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"instastudio/internal/config"
	"instastudio/internal/logging"
	"instastudio/internal/publish"
	"instastudio/internal/queue"
	"instastudio/internal/services"
	"instastudio/internal/stage"
)

// Publisher is the final pipeline stage. Items marked for publishing are
// handed to the platform client; everything else completes directly with the
// rendered file left in OutputDir.
type Publisher struct {
	cfg    *config.Config
	logger *slog.Logger
	client publish.Publisher
}

// New constructs the publishing stage handler. The client may be nil when
// publishing is disabled; items requiring publication then fail preparation.
func New(cfg *config.Config, logger *slog.Logger) *Publisher {
	scoped := logging.NewComponentLogger(logger, "publisher")
	var client publish.Publisher
	if cfg.Instagram.Enabled {
		client = publish.NewGraphClient(publish.Config{
			GraphBaseURL:      cfg.Instagram.GraphBaseURL,
			AccessToken:       cfg.Instagram.AccessToken,
			BusinessAccountID: cfg.Instagram.BusinessAccountID,
			PollInterval:      time.Duration(cfg.Instagram.PollInterval) * time.Second,
			MaxPolls:          cfg.Instagram.MaxPolls,
			RequestTimeout:    time.Duration(cfg.Instagram.RequestTimeout) * time.Second,
		}, scoped)
	}
	return &Publisher{cfg: cfg, logger: scoped, client: client}
}

// NewWithClient constructs the handler around an existing client (used in tests).
func NewWithClient(cfg *config.Config, logger *slog.Logger, client publish.Publisher) *Publisher {
	return &Publisher{cfg: cfg, logger: logging.NewComponentLogger(logger, "publisher"), client: client}
}

// SetLogger injects the stage-scoped logger.
func (p *Publisher) SetLogger(logger *slog.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// Prepare verifies the item can be published before any API traffic.
func (p *Publisher) Prepare(_ context.Context, item *queue.Item) error {
	if !item.NeedsPublish {
		return nil
	}
	if p.client == nil {
		return services.Wrap(services.ErrConfiguration, "publisher", "prepare",
			"Publishing requested but the platform integration is disabled", nil)
	}
	if strings.TrimSpace(item.OutputPath) == "" {
		return services.Wrap(services.ErrValidation, "publisher", "prepare",
			"No rendered output to publish; rerun assembly", nil)
	}
	if _, err := p.mediaReference(item); err != nil {
		return err
	}
	return nil
}

// Execute publishes the rendered output when the item asks for it.
func (p *Publisher) Execute(ctx context.Context, item *queue.Item) error {
	if !item.NeedsPublish {
		item.SetProgressComplete("Completed", "Render kept locally")
		return nil
	}

	reference, err := p.mediaReference(item)
	if err != nil {
		return err
	}

	item.SetProgress("Publishing", "Publishing to platform", 50)
	postID, err := p.client.Publish(ctx, item.ContentType, reference, item.Caption)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "publisher", "publish", "", err)
	}

	item.PlatformPostID = postID
	item.SetProgressComplete("Completed", fmt.Sprintf("Published as %s", postID))
	p.logger.Info("item published",
		logging.String(logging.FieldEventType, "publish_complete"),
		logging.String("post_id", postID),
		logging.String("content_type", item.ContentType),
	)
	return nil
}

// mediaReference maps the rendered output to a publicly resolvable URL. The
// platform fetches media itself, so local paths only work when MediaBaseURL
// exposes OutputDir.
func (p *Publisher) mediaReference(item *queue.Item) (string, error) {
	output := strings.TrimSpace(item.OutputPath)
	if parsed, err := url.Parse(output); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return output, nil
	}
	base := strings.TrimRight(strings.TrimSpace(p.cfg.Instagram.MediaBaseURL), "/")
	if base == "" {
		return "", services.Wrap(services.ErrConfiguration, "publisher", "resolve media url",
			"Set instagram.media_base_url so rendered files are publicly reachable", nil)
	}
	return base + "/" + url.PathEscape(filepath.Base(output)), nil
}

// HealthCheck reports publishing readiness.
func (p *Publisher) HealthCheck(_ context.Context) stage.Health {
	if !p.cfg.Instagram.Enabled {
		return stage.Healthy("publisher")
	}
	if strings.TrimSpace(p.cfg.Instagram.AccessToken) == "" {
		return stage.Unhealthy("publisher", "access token not configured")
	}
	if strings.TrimSpace(p.cfg.Instagram.BusinessAccountID) == "" {
		return stage.Unhealthy("publisher", "business account id not configured")
	}
	return stage.Healthy("publisher")
}
