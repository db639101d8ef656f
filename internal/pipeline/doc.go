// Package pipeline advances queue items through the story production
// stages.
//
// The Manager polls the queue, rolls interrupted work back to its last
// stable status, and feeds items into the registered stage handlers
// (synthesizer, renderer, segmenter) while capturing progress and failure
// metadata. It also aggregates queue stats, calls stage health checks, and
// emits queue-level notifications when processing starts or completes.
//
// Items move pending -> synthesizing -> synthesized -> rendering ->
// rendered -> segmenting -> completed. Validation and configuration
// failures park an item in review for human attention; everything else
// marks it failed.
//
// Add new lifecycle stages by extending StageSet, updating the queue
// status enums, and teaching the manager how to transition items; this
// package is the authoritative home for that coordination logic.
package pipeline
