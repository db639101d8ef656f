// Package queue persists story jobs in SQLite and exposes helpers for
// driving their lifecycle.
//
// The Store manages database connections, schema initialization, summary
// queries, stuck-item recovery, and the status transitions the pipeline
// manager performs. Items capture progress and the file artifacts each stage
// produces (synthesized audio, rendered video, segments folder) so stages
// can coordinate without additional state.
//
// The database is transient storage for in-flight jobs, not an archive.
// Schema changes bump schemaVersion; users clear the database to adopt the
// new schema.
package queue
