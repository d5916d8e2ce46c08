// Package preflight provides readiness checks for external services,
// toolchain binaries, and filesystem paths the daemon depends on.
//
// These checks run in two contexts:
//   - The daemon runs RunChecks once at startup, before the workflow begins
//     polling. A failed check stops the daemon instead of letting the queue
//     grind through items that can never finish.
//   - The CLI status command uses individual check functions
//     (CheckInstagramFromConfig, CheckDirectoryAccess, DiskStatus) to display
//     service health.
//
// Each check is gated by its config toggle; disabled features are skipped.
package preflight
