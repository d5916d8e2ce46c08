// Package workflow advances queue items through the configured processing
// stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// items into registered stage handlers (translator, assembler, publisher)
// while capturing progress and failure metadata. It also aggregates queue
// counts, calls stage health checks, and emits queue-level notifications when
// processing starts or completes.
//
// The pipeline is a single lane: an item moves pending -> translating ->
// translated -> assembling -> rendered -> publishing -> completed, and the
// stage handlers decide per job type what each step means. Items scheduled for
// the future are skipped by the queue until their time arrives.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching the manager how to transition items; this package is the
// authoritative home for that coordination logic.
package workflow
