// Package logging builds slog loggers with console and JSON handlers,
// standardized field keys, and helpers for deriving per-item loggers from
// context annotations.
package logging
