// Package config loads, validates, and normalizes storyreel configuration.
//
// Configuration is TOML on disk and an immutable snapshot in memory: Load
// returns a value that each pipeline invocation receives as-is, so no
// process-wide mutable settings exist. Path fields are tilde-expanded and
// made absolute during normalization, and Validate rejects settings the
// pipeline could not run with (bad cue bounds, bad segment config, missing
// voice model).
package config
