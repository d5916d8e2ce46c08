package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"instastudio/internal/commands"
)

type stubCompleter struct {
	responses []string
	errs      []error
	prompts   []string
	calls     int
}

func (s *stubCompleter) CompleteJSON(_ context.Context, _, userPrompt string) (string, error) {
	s.prompts = append(s.prompts, userPrompt)
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return s.responses[len(s.responses)-1], nil
}

func TestTranslateDecodesOperations(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{
		"operations": [
			{"type": "trim", "params": {"start": 0, "end": 30}},
			{"type": "resize", "params": {"content_type": "reel"}}
		],
		"metadata": {"content_type": "reel", "description": "trim to 30s reel"}
	}`}}
	translator := newTranslator(stub, nil)

	result, err := translator.Translate(context.Background(), "make a 30 second reel", Context{Duration: 45})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if len(result.Operations) != 2 {
		t.Fatalf("expected 2 operations, got %d", len(result.Operations))
	}
	if result.Operations[0].Kind != commands.KindTrim {
		t.Fatalf("expected trim first, got %q", result.Operations[0].Kind)
	}
	if result.Metadata.ContentType != "reel" {
		t.Fatalf("unexpected metadata: %+v", result.Metadata)
	}
}

func TestTranslateIncludesContextInPrompt(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"operations":[{"type":"speed","params":{"factor":2}}],"metadata":{}}`}}
	translator := newTranslator(stub, nil)

	_, err := translator.Translate(context.Background(), "speed it up", Context{
		Duration:             45,
		Resolution:           "1920x1080",
		AvailableAudioTracks: []string{"upbeat.mp3"},
	})
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	prompt := stub.prompts[0]
	if !strings.Contains(prompt, "Editing instruction: speed it up") {
		t.Fatalf("instruction missing from prompt: %s", prompt)
	}
	if !strings.Contains(prompt, "\"video_duration\": 45") {
		t.Fatalf("duration missing from prompt: %s", prompt)
	}
	if !strings.Contains(prompt, "upbeat.mp3") {
		t.Fatalf("audio tracks missing from prompt: %s", prompt)
	}
}

func TestTranslateRejectsMalformedResponse(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{"not json", "I cannot help with that"},
		{"no operations", `{"metadata":{"description":"nothing"}}`},
		{"empty operations", `{"operations":[],"metadata":{}}`},
		{"missing type", `{"operations":[{"params":{"start":0}}],"metadata":{}}`},
	}
	for _, tc := range cases {
		stub := &stubCompleter{responses: []string{tc.response}}
		translator := newTranslator(stub, nil)
		_, err := translator.Translate(context.Background(), "do something", Context{})
		if !errors.Is(err, ErrTranslationFormat) {
			t.Fatalf("%s: expected ErrTranslationFormat, got %v", tc.name, err)
		}
	}
}

func TestTranslatePassesUnknownKindsThrough(t *testing.T) {
	stub := &stubCompleter{responses: []string{`{"operations":[{"type":"explode","params":{}}],"metadata":{}}`}}
	translator := newTranslator(stub, nil)

	result, err := translator.Translate(context.Background(), "explode the video", Context{})
	if err != nil {
		t.Fatalf("unknown kinds must pass through to the executor, got %v", err)
	}
	if result.Operations[0].Kind != "explode" {
		t.Fatalf("expected kind preserved, got %q", result.Operations[0].Kind)
	}
}

func TestTranslateRejectsEmptyCommand(t *testing.T) {
	translator := newTranslator(&stubCompleter{responses: []string{"{}"}}, nil)
	if _, err := translator.Translate(context.Background(), "   ", Context{}); !errors.Is(err, ErrTranslationFormat) {
		t.Fatalf("expected ErrTranslationFormat, got %v", err)
	}
}

func TestTranslateBatchContinuesPastFailures(t *testing.T) {
	good := `{"operations":[{"type":"trim","params":{"start":0,"end":10}}],"metadata":{}}`
	stub := &stubCompleter{
		responses: []string{good, "garbage", good},
		errs:      []error{nil, nil, nil},
	}
	translator := newTranslator(stub, nil)

	entries := translator.TranslateBatch(context.Background(), []string{"first", "second", "third"}, Context{})
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Err != nil || entries[2].Err != nil {
		t.Fatalf("expected first and third to succeed: %v, %v", entries[0].Err, entries[2].Err)
	}
	if !errors.Is(entries[1].Err, ErrTranslationFormat) {
		t.Fatalf("expected second to fail with ErrTranslationFormat, got %v", entries[1].Err)
	}
	if entries[1].Command != "second" {
		t.Fatalf("entry must carry its command, got %q", entries[1].Command)
	}
}
