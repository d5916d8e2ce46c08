package clip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Workspace is a per-job scratch directory for intermediate render files.
// Each job gets its own uuid-named directory so concurrent jobs never share
// scratch space. Close removes the directory and everything in it.
type Workspace struct {
	dir     string
	counter atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// NewWorkspace creates a fresh scratch directory under baseDir.
func NewWorkspace(baseDir string) (*Workspace, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("workspace: empty base directory")
	}
	dir := filepath.Join(baseDir, "job-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("workspace: create %s: %w", dir, err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Intermediate allocates a unique path for a new intermediate file. The file
// is not created; renderers write it.
func (w *Workspace) Intermediate(label, ext string) (string, error) {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return "", fmt.Errorf("workspace: closed")
	}
	if label == "" {
		label = "tmp"
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	n := w.counter.Add(1)
	return filepath.Join(w.dir, fmt.Sprintf("%s-%04d%s", label, n, ext)), nil
}

// owns reports whether path lives inside the workspace directory.
func (w *Workspace) owns(path string) bool {
	if w == nil || path == "" {
		return false
	}
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Close removes the workspace directory and all intermediates. Idempotent.
func (w *Workspace) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return os.RemoveAll(w.dir)
}
