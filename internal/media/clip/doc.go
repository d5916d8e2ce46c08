// Package clip provides immutable, file-backed media clip values and the
// per-job workspace that owns their intermediate render files. Every
// transformation produces a new Clip referencing a new file; releasing a
// clip only removes workspace-owned intermediates, never caller sources.
package clip
