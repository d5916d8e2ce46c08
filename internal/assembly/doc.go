// Package assembly implements the rendering stage. It owns the per-item
// media workspace, drives the editing and repurposing engines, exports the
// final file into OutputDir, and enforces the content type's render spec
// before an item may advance to publishing.
package assembly
