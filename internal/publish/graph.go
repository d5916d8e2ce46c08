package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"instastudio/internal/logging"
	"instastudio/internal/textutil"
)

const (
	defaultPollInterval   = 3 * time.Second
	defaultMaxPolls       = 20
	defaultRequestTimeout = 60 * time.Second
)

// Config captures the runtime settings for the Graph API publisher.
type Config struct {
	GraphBaseURL      string
	AccessToken       string
	BusinessAccountID string
	PollInterval      time.Duration
	MaxPolls          int
	RequestTimeout    time.Duration
}

// GraphClient publishes finished media through the platform's three-step
// container protocol: create the container, poll its processing status, then
// publish it.
type GraphClient struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	sleeper    func(ctx context.Context, d time.Duration) error
}

// Option customizes the client.
type Option func(*GraphClient)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *GraphClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how poll waits are performed (useful for tests).
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Option {
	return func(c *GraphClient) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewGraphClient constructs a publisher from the supplied configuration.
func NewGraphClient(cfg Config, logger *slog.Logger, opts ...Option) *GraphClient {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = defaultMaxPolls
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	cfg.GraphBaseURL = strings.TrimRight(strings.TrimSpace(cfg.GraphBaseURL), "/")
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &GraphClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logging.NewComponentLogger(logger, "publish"),
		sleeper:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish creates a container for the media reference, waits for the
// platform to finish processing it, and publishes it. The returned id is the
// platform post id.
func (c *GraphClient) Publish(ctx context.Context, contentType, mediaReference, caption string) (string, error) {
	if !isPublicURL(mediaReference) {
		return "", fmt.Errorf("%w: %q is not a publicly resolvable url", ErrNotPublishable, mediaReference)
	}

	containerID, err := c.createContainer(ctx, contentType, mediaReference, caption)
	if err != nil {
		return "", err
	}
	if err := c.awaitContainer(ctx, containerID); err != nil {
		return "", err
	}
	postID, err := c.publishContainer(ctx, containerID)
	if err != nil {
		return "", err
	}

	c.logger.Info("media published",
		logging.String("content_type", contentType),
		logging.String("post_id", postID),
	)
	return postID, nil
}

// PublishCarousel publishes 2-10 media references as one carousel post.
func (c *GraphClient) PublishCarousel(ctx context.Context, mediaReferences []string, caption string) (string, error) {
	if len(mediaReferences) < 2 || len(mediaReferences) > 10 {
		return "", fmt.Errorf("%w: carousel needs 2-10 items, got %d", ErrNotPublishable, len(mediaReferences))
	}

	children := make([]string, 0, len(mediaReferences))
	for _, ref := range mediaReferences {
		if !isPublicURL(ref) {
			return "", fmt.Errorf("%w: %q is not a publicly resolvable url", ErrNotPublishable, ref)
		}
		params := url.Values{"is_carousel_item": {"true"}}
		setMediaParam(params, ref)
		childID, err := c.postForID(ctx, c.endpoint("media"), params)
		if err != nil {
			return "", fmt.Errorf("create carousel item: %w", err)
		}
		if err := c.awaitContainer(ctx, childID); err != nil {
			return "", err
		}
		children = append(children, childID)
	}

	params := url.Values{
		"media_type": {"CAROUSEL"},
		"children":   {strings.Join(children, ",")},
	}
	if caption = textutil.SanitizeCaption(caption); caption != "" {
		params.Set("caption", caption)
	}
	containerID, err := c.postForID(ctx, c.endpoint("media"), params)
	if err != nil {
		return "", fmt.Errorf("create carousel container: %w", err)
	}
	if err := c.awaitContainer(ctx, containerID); err != nil {
		return "", err
	}
	return c.publishContainer(ctx, containerID)
}

func (c *GraphClient) createContainer(ctx context.Context, contentType, mediaReference, caption string) (string, error) {
	params := url.Values{}
	setMediaParam(params, mediaReference)

	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "reel":
		params.Set("media_type", "REELS")
		params.Set("share_to_feed", "true")
	case "story":
		params.Set("media_type", "STORIES")
	case "feed", "":
		// image_url/video_url alone means a feed post
	default:
		return "", fmt.Errorf("%w: unsupported content type %q", ErrNotPublishable, contentType)
	}

	if caption = textutil.SanitizeCaption(caption); caption != "" {
		params.Set("caption", caption)
	}

	id, err := c.postForID(ctx, c.endpoint("media"), params)
	if err != nil {
		return "", fmt.Errorf("create container: %w", err)
	}
	return id, nil
}

// awaitContainer polls the container status until FINISHED, failing on ERROR
// or when the fixed poll budget runs out.
func (c *GraphClient) awaitContainer(ctx context.Context, containerID string) error {
	for poll := 0; poll < c.cfg.MaxPolls; poll++ {
		status, err := c.containerStatus(ctx, containerID)
		if err != nil {
			return err
		}
		switch status {
		case "FINISHED":
			return nil
		case "ERROR", "EXPIRED":
			return fmt.Errorf("%w: container %s status %s", ErrContainerFailed, containerID, status)
		}
		if err := c.sleeper(ctx, c.cfg.PollInterval); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: container %s after %d polls", ErrContainerStuck, containerID, c.cfg.MaxPolls)
}

func (c *GraphClient) containerStatus(ctx context.Context, containerID string) (string, error) {
	endpoint := c.cfg.GraphBaseURL + "/" + containerID + "?" + url.Values{
		"fields":       {"id,status_code"},
		"access_token": {c.cfg.AccessToken},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("container status: %w", err)
	}
	body, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("container status: %w", err)
	}
	var decoded struct {
		StatusCode string `json:"status_code"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("container status: decode: %w", err)
	}
	return decoded.StatusCode, nil
}

func (c *GraphClient) publishContainer(ctx context.Context, containerID string) (string, error) {
	id, err := c.postForID(ctx, c.endpoint("media_publish"), url.Values{"creation_id": {containerID}})
	if err != nil {
		return "", fmt.Errorf("publish container: %w", err)
	}
	return id, nil
}

func (c *GraphClient) postForID(ctx context.Context, endpoint string, params url.Values) (string, error) {
	params.Set("access_token", c.cfg.AccessToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	body, err := c.do(req)
	if err != nil {
		return "", err
	}
	var decoded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if decoded.ID == "" {
		return "", fmt.Errorf("response missing id: %s", strings.TrimSpace(string(body)))
	}
	return decoded.ID, nil
}

func (c *GraphClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, graphErrorMessage(body))
	}
	return body, nil
}

func (c *GraphClient) endpoint(action string) string {
	return c.cfg.GraphBaseURL + "/" + path.Join(c.cfg.BusinessAccountID, action)
}

func setMediaParam(params url.Values, mediaReference string) {
	ext := strings.ToLower(path.Ext(strings.SplitN(mediaReference, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg", ".png":
		params.Set("image_url", mediaReference)
	default:
		params.Set("video_url", mediaReference)
	}
}

func graphErrorMessage(body []byte) string {
	var decoded struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil && decoded.Error.Message != "" {
		return decoded.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func isPublicURL(reference string) bool {
	parsed, err := url.Parse(strings.TrimSpace(reference))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
