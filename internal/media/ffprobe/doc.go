// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The pipeline uses it for one authoritative fact: the measured duration of
// a media asset. Synthesized narration audio is probed before timeline
// allocation, and the rendered video is probed before segment planning.
// Stream helpers exist so render inputs can be sanity-checked.
package ffprobe
