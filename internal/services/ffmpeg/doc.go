// Package ffmpeg wraps the ffmpeg command line tool for the two rendering
// jobs the pipeline needs: compositing a narrated story video and cutting a
// finished video into short-form segments.
//
// Rendering loops the background clip to cover the narration, muxes the
// synthesized audio, and burns each caption cue in as a drawtext overlay
// enabled on the cue's [start,end) window. Segment extraction applies a
// precomputed plan clip by clip; a failed clip is recorded and skipped so
// its siblings still get produced.
package ffmpeg
