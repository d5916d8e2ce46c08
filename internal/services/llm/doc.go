// Package llm provides an OpenRouter chat client for JSON-producing
// completions.
//
// This package is used by:
//   - Command translation: natural-language edit commands to operation lists
//   - Content planning: niche descriptions and post summaries to reel concepts
//
// # Request Shape
//
// Every request asks the model for a JSON-only response (response_format
// json_object) at temperature 0 and pairs a fixed system prompt with a
// caller-supplied user prompt. The raw JSON payload comes back as a string;
// DecodeLLMJSON handles the usual model formatting quirks (code fences,
// leading prose) when decoding it into a target struct.
//
// # Configuration
//
// Requires api_key and model, and optionally base_url, referer, title, and a
// request timeout. Callers map the application [llm] config section into
// Config at wiring time.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, empty completions, and
// network timeouts with exponential backoff (base 1s, max 10s, up to 5
// attempts by default), honoring Retry-After when the server sends one.
// Context cancellation aborts retries immediately.
package llm
