package main

import (
	"strings"
	"testing"

	"instastudio/internal/api"
	"instastudio/internal/ipc"
)

func TestRenderStatusLinePlain(t *testing.T) {
	line := renderStatusLine("Instagram", statusOK, "Configured", false)
	requireContains(t, line, "Instagram:")
	requireContains(t, line, "[OK] Configured")
	if strings.Contains(line, "\x1b[") {
		t.Fatalf("expected no ANSI codes, got %q", line)
	}
}

func TestRenderStatusLineColorized(t *testing.T) {
	line := renderStatusLine("Disk", statusWarn, "Low space", true)
	requireContains(t, line, ansiYellow)
	requireContains(t, line, ansiReset)
	requireContains(t, line, "[WARN] Low space")
}

func TestStatusKindFromSeverity(t *testing.T) {
	cases := map[string]statusKind{
		"ok":      statusOK,
		"OK":      statusOK,
		"warn":    statusWarn,
		"error":   statusError,
		"info":    statusInfo,
		"":        statusInfo,
		"unknown": statusInfo,
	}
	for severity, expected := range cases {
		if got := statusKindFromSeverity(severity); got != expected {
			t.Fatalf("severity %q: expected %v, got %v", severity, expected, got)
		}
	}
}

func TestRenderSectionHeader(t *testing.T) {
	lines := renderSectionHeader("Queue", false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 header lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "== Queue ==")
	if len(lines[1]) != len(lines[0]) {
		t.Fatalf("rule length %d does not match header length %d", len(lines[1]), len(lines[0]))
	}
}

func TestDependencyLines(t *testing.T) {
	deps := []ipc.DependencyStatus{
		{Name: "ffmpeg", Available: true, Severity: "ok", Detail: "found in PATH"},
		{Name: "ffprobe", Available: false, Severity: "error"},
	}
	summary := api.DependencySummary{
		Severity: "error",
		Detail:   "1/2 available (missing: 1 required, 0 optional)",
	}

	lines := dependencyLines(deps, summary, false)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "Summary:")
	requireContains(t, lines[0], "1/2 available")
	requireContains(t, lines[1], "found in PATH")
	requireContains(t, lines[2], "Not found")
}

func TestStageLines(t *testing.T) {
	lines := stageLines([]ipc.StageHealth{
		{Name: "translator", Ready: true},
		{Name: "publisher", Ready: false, Detail: "Instagram disabled"},
	}, false)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	requireContains(t, lines[0], "[OK] Ready")
	requireContains(t, lines[1], "[WARN] Instagram disabled")
}
