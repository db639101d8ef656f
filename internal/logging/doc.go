// Package logging builds the slog loggers used across storyreel.
//
// Two output formats are supported: a console text format for interactive
// use and JSON for ingestion. Log output fans out to stdout and a file under
// the configured log directory. Attr helpers keep call sites terse, and
// WithContext stamps queue item, stage, and correlation fields extracted
// from a request context so every line of a story's pipeline run can be
// traced.
package logging
