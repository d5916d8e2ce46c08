package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"instastudio/internal/config"
)

const userAgent = "InstaStudio/0.1.0"

// Event enumerates the workflow milestones that can trigger a notification.
type Event string

const (
	EventTranslationCompleted Event = "translation_completed"
	EventRenderCompleted      Event = "render_completed"
	EventPublishCompleted     Event = "publish_completed"
	EventReviewRequired       Event = "review_required"
	EventQueueStarted         Event = "queue_started"
	EventQueueCompleted       Event = "queue_completed"
	EventError                Event = "error"
	EventTest                 Event = "test"
)

// Payload carries event-specific values used to format the message.
type Payload map[string]any

// Service defines the notification surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, event Event, payload Payload) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type message struct {
	title    string
	body     string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) Publish(ctx context.Context, event Event, payload Payload) error {
	if !n.enabled(event) {
		return nil
	}
	msg, ok := format(event, payload)
	if !ok {
		return nil
	}
	return n.send(ctx, msg)
}

func (n *ntfyService) enabled(event Event) bool {
	switch event {
	case EventTranslationCompleted:
		return n.settings.Translation
	case EventRenderCompleted:
		return n.settings.Render
	case EventPublishCompleted:
		return n.settings.Publish
	case EventError, EventReviewRequired:
		return n.settings.Errors
	case EventTest:
		return true
	default:
		return false
	}
}

func format(event Event, payload Payload) (message, bool) {
	switch event {
	case EventTranslationCompleted:
		return message{
			title:   "InstaStudio - Translated",
			body:    fmt.Sprintf("📝 Command translated: %s (%d operations)", payloadString(payload, "title"), payloadInt(payload, "operations")),
			tags:    []string{"instastudio", "translate", "completed"},
		}, true
	case EventRenderCompleted:
		return message{
			title:   "InstaStudio - Rendered",
			body:    fmt.Sprintf("🎬 Render complete: %s", payloadString(payload, "title")),
			tags:    []string{"instastudio", "render", "completed"},
		}, true
	case EventPublishCompleted:
		body := fmt.Sprintf("✅ Published: %s", payloadString(payload, "title"))
		if postID := payloadString(payload, "postId"); postID != "" {
			body = fmt.Sprintf("%s\nPost: %s", body, postID)
		}
		return message{
			title:    "InstaStudio - Published",
			body:     body,
			tags:     []string{"instastudio", "publish", "completed"},
			priority: "high",
		}, true
	case EventReviewRequired:
		return message{
			title:    "InstaStudio - Review Required",
			body:     fmt.Sprintf("👀 Needs review: %s\n%s", payloadString(payload, "title"), payloadString(payload, "reason")),
			tags:     []string{"instastudio", "review"},
			priority: "high",
		}, true
	case EventError:
		var builder strings.Builder
		builder.WriteString("❌ Error")
		if contextLabel := payloadString(payload, "context"); contextLabel != "" {
			builder.WriteString(" with ")
			builder.WriteString(contextLabel)
		}
		builder.WriteString(": ")
		if errText := payloadString(payload, "error"); errText != "" {
			builder.WriteString(errText)
		} else {
			builder.WriteString("unknown")
		}
		return message{
			title:    "InstaStudio - Error",
			body:     builder.String(),
			tags:     []string{"instastudio", "error", "alert"},
			priority: "high",
		}, true
	case EventTest:
		return message{
			title:    "InstaStudio - Test",
			body:     "🧪 Notification system test",
			tags:     []string{"instastudio", "test"},
			priority: "low",
		}, true
	default:
		return message{}, false
	}
}

func payloadString(payload Payload, key string) string {
	if payload == nil {
		return ""
	}
	switch value := payload[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case error:
		return strings.TrimSpace(value.Error())
	default:
		return strings.TrimSpace(fmt.Sprint(value))
	}
}

func payloadInt(payload Payload, key string) int {
	if payload == nil {
		return 0
	}
	switch value := payload[key].(type) {
	case int:
		return value
	case int64:
		return int(value)
	case float64:
		return int(value)
	default:
		return 0
	}
}

func (n *ntfyService) send(ctx context.Context, msg message) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(msg.body))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if msg.title != "" {
		req.Header.Set("Title", msg.title)
	}
	if len(msg.tags) > 0 {
		req.Header.Set("Tags", strings.Join(msg.tags, ","))
	}
	if msg.priority != "" && msg.priority != "default" {
		req.Header.Set("Priority", msg.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) Publish(context.Context, Event, Payload) error { return nil }
