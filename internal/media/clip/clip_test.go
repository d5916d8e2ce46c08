package clip

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspaceAllocatesUniquePaths(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	first, err := ws.Intermediate("cut", ".mp4")
	if err != nil {
		t.Fatalf("Intermediate failed: %v", err)
	}
	second, err := ws.Intermediate("cut", ".mp4")
	if err != nil {
		t.Fatalf("Intermediate failed: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique paths, got %s twice", first)
	}
	if filepath.Ext(first) != ".mp4" {
		t.Fatalf("expected .mp4 extension, got %s", first)
	}
}

func TestWorkspaceCloseRemovesIntermediates(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	path, err := ws.Intermediate("tmp", ".mp4")
	if err != nil {
		t.Fatalf("Intermediate failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("write intermediate: %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(ws.Dir()); !os.IsNotExist(err) {
		t.Fatalf("expected workspace dir removed, stat err: %v", err)
	}

	if err := ws.Close(); err != nil {
		t.Fatalf("second Close should be nil, got %v", err)
	}
	if _, err := ws.Intermediate("tmp", ".mp4"); err == nil {
		t.Fatal("expected error allocating after close")
	}
}

func TestReleaseOnlyRemovesOwnedFiles(t *testing.T) {
	base := t.TempDir()
	ws, err := NewWorkspace(base)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()

	owned, err := ws.Intermediate("cut", ".mp4")
	if err != nil {
		t.Fatalf("Intermediate failed: %v", err)
	}
	if err := os.WriteFile(owned, []byte("data"), 0o644); err != nil {
		t.Fatalf("write owned: %v", err)
	}
	source := filepath.Join(base, "source.mp4")
	if err := os.WriteFile(source, []byte("data"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	Release(Clip{Path: owned, workspace: ws})
	if _, err := os.Stat(owned); !os.IsNotExist(err) {
		t.Fatalf("expected owned intermediate removed, stat err: %v", err)
	}

	Release(Clip{Path: source, workspace: ws})
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("source file must survive release: %v", err)
	}

	// repeated release is a no-op
	Release(Clip{Path: owned, workspace: ws})
}

func TestSubrangeRejectsBadRanges(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()
	loader := NewLoader(ws, nil, nil)

	source := Clip{Path: "/videos/source.mp4", Duration: 10}
	cases := []struct {
		name       string
		start, end float64
	}{
		{"negative start", -1, 5},
		{"start equals end", 5, 5},
		{"start after end", 6, 5},
		{"end past duration", 2, 11},
	}
	for _, tc := range cases {
		if _, err := loader.Subrange(context.Background(), source, tc.start, tc.end); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("%s: expected ErrInvalidRange, got %v", tc.name, err)
		}
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	defer ws.Close()
	loader := NewLoader(ws, nil, nil)

	if _, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
