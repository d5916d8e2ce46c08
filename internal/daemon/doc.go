// Package daemon coordinates the long-running InstaStudio process and its
// control surfaces.
//
// It wires configuration, queue storage, and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// The daemon exposes queue maintenance helpers, job submission, and a
// token-authenticated HTTP status API (/api/status, /api/queue, /api/jobs,
// /api/logs).
//
// Keep orchestration logic here: individual workflow steps should live in
// their respective packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
