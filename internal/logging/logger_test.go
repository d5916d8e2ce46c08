package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"instastudio/internal/logging"
	"instastudio/internal/services"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestConsoleHandlerIncludesComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWriterLogger(&buf, "info", "console")
	if err != nil {
		t.Fatalf("NewWriterLogger failed: %v", err)
	}
	component := logging.NewComponentLogger(logger, "assembler")
	component.Info("render complete", logging.String("output", "/out/reel.mp4"))

	line := buf.String()
	if !strings.Contains(line, "assembler: render complete") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "output=/out/reel.mp4") {
		t.Fatalf("expected attr in output, got %q", line)
	}
}

func TestWithContextAddsItemFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := services.WithItemID(context.Background(), 42)
	ctx = services.WithStage(ctx, "assembling")
	ctx = services.WithRequestID(ctx, "req-1")

	logging.WithContext(ctx, base).Info("working")

	out := buf.String()
	for _, want := range []string{`"item_id":42`, `"stage":"assembling"`, `"correlation_id":"req-1"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output, got %s", want, out)
		}
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logging.WarnWithContext(logger, "upload slow", "upload_slow")

	out := buf.String()
	if !strings.Contains(out, `"event_type":"upload_slow"`) {
		t.Fatalf("expected event_type, got %s", out)
	}
	if !strings.Contains(out, `"error_hint"`) {
		t.Fatalf("expected default error_hint, got %s", out)
	}
}
