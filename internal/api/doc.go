// Package api defines wire-format types and converters for the IPC and HTTP
// API layer. It translates internal queue models into transport-friendly DTOs
// so the CLI and HTTP consumers never couple to internal types.
//
// # Key Types
//
// QueueItem: transport representation of a queue entry with job type, progress,
// publishing state, and schedule.
//
// WorkflowStatus: daemon running state, queue counts, stage health, and last item.
//
// DaemonStatus: aggregated runtime information including dependencies.
//
// # Services
//
// QueueService: queue reads and maintenance actions (list, describe, clear,
// reset stuck) over a queue store.
//
// SubmitService: validation and enqueueing for edit, repurpose, and
// compilation jobs. The CLI and POST /api/jobs share this path so a job is
// validated identically no matter how it arrives.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums (queue.Status, queue.JobType)
// are exposed as lowercase strings. Timestamps use RFC3339 with milliseconds.
package api
