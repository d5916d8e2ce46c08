package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"instastudio/internal/commands"
	"instastudio/internal/logging"
	"instastudio/internal/services/llm"
)

// ErrTranslationFormat indicates the model's response could not be decoded
// into an operation list.
var ErrTranslationFormat = errors.New("translation response malformed")

// Context carries the clip facts the model needs to produce sensible
// parameters. Zero values are omitted from the prompt.
type Context struct {
	Duration             float64  `json:"video_duration,omitempty"`
	Resolution           string   `json:"resolution,omitempty"`
	ContentType          string   `json:"content_type,omitempty"`
	AvailableAudioTracks []string `json:"available_audio_tracks,omitempty"`
}

// Metadata is the model's summary of the translated command.
type Metadata struct {
	ContentType string `json:"content_type"`
	Description string `json:"description"`
}

// Result is one translated command. Operation kinds are passed through as the
// model produced them; the executor rejects unknown kinds so they surface as
// execution errors rather than being silently dropped here.
type Result struct {
	Operations []commands.Operation `json:"operations"`
	Metadata   Metadata             `json:"metadata"`
}

// BatchEntry pairs a command from a batch with its translation outcome.
type BatchEntry struct {
	Command string
	Result  Result
	Err     error
}

type completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Translator turns natural-language edit commands into operation lists.
type Translator struct {
	client completer
	logger *slog.Logger
}

// NewTranslator builds a Translator over an LLM client.
func NewTranslator(client *llm.Client, logger *slog.Logger) *Translator {
	return newTranslator(client, logger)
}

func newTranslator(client completer, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Translator{client: client, logger: logger}
}

// Translate converts one command into an operation list.
func (t *Translator) Translate(ctx context.Context, command string, tc Context) (Result, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return Result{}, fmt.Errorf("%w: empty command", ErrTranslationFormat)
	}

	user := "Editing instruction: " + command
	if encoded := encodeContext(tc); encoded != "" {
		user += "\n\nContext:\n" + encoded
	}

	content, err := t.client.CompleteJSON(ctx, systemPrompt, user)
	if err != nil {
		return Result{}, fmt.Errorf("translate command: %w", err)
	}

	var result Result
	if err := llm.DecodeLLMJSON(content, &result); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTranslationFormat, err)
	}
	if len(result.Operations) == 0 {
		return Result{}, fmt.Errorf("%w: no operations", ErrTranslationFormat)
	}
	for i, op := range result.Operations {
		if strings.TrimSpace(op.Kind) == "" {
			return Result{}, fmt.Errorf("%w: operation %d missing type", ErrTranslationFormat, i)
		}
	}

	t.logger.Info("command translated",
		logging.Int("operations", len(result.Operations)),
		logging.String("content_type", result.Metadata.ContentType),
	)
	return result, nil
}

// TranslateBatch translates each command in order, continuing past individual
// failures. Every input command gets an entry.
func (t *Translator) TranslateBatch(ctx context.Context, cmds []string, tc Context) []BatchEntry {
	entries := make([]BatchEntry, 0, len(cmds))
	for i, command := range cmds {
		result, err := t.Translate(ctx, command, tc)
		if err != nil {
			t.logger.Warn("batch command failed",
				logging.Int("index", i),
				logging.Error(err),
			)
		}
		entries = append(entries, BatchEntry{Command: command, Result: result, Err: err})
		if ctx.Err() != nil {
			break
		}
	}
	return entries
}

func encodeContext(tc Context) string {
	if tc.Duration == 0 && tc.Resolution == "" && tc.ContentType == "" && len(tc.AvailableAudioTracks) == 0 {
		return ""
	}
	encoded, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return ""
	}
	return string(encoded)
}
