// Package queue persists content jobs in SQLite and exposes the lifecycle
// transitions the workflow manager drives. Items move through
// pending -> translating -> translated -> assembling -> rendered ->
// publishing -> completed, with failed and review as terminal parking
// states. Scheduled items stay invisible to NextForStatuses until their
// scheduled_at time arrives.
package queue
