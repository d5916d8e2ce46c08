package main

import (
	"strings"
	"testing"
)

func TestLogsCommandTailsRecentLines(t *testing.T) {
	env := setupCLITestEnv(t)

	for _, line := range []string{"first entry", "second entry", "third entry"} {
		if err := appendLine(env.logPath, line); err != nil {
			t.Fatalf("append log line: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"logs", "--lines", "2"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "second entry")
	requireContains(t, out, "third entry")
	if strings.Contains(out, "first entry") {
		t.Fatalf("expected only the last two lines, got:\n%s", out)
	}
}

func TestLogsCommandEmptyLog(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"logs"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("logs on empty file: %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output for empty log, got:\n%s", out)
	}
}
