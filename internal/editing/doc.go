// Package editing implements the video transformation primitives: trim,
// jump cuts, scene-detected auto cuts, resize to a render target, text
// overlay, audio mixing, concatenation with transitions, and speed change.
// Each primitive takes immutable clips and renders a new workspace
// intermediate via ffmpeg; input clips are never modified.
package editing
