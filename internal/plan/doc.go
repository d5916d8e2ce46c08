// Package plan models reel concepts and generates them from an account's
// existing content via the LLM. Plans are stored on queue items as JSON and
// drive the repurposing engine's target duration, hook overlay, and caption.
package plan
