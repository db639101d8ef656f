// Package piper wraps the Piper text-to-speech command line tool.
//
// Synthesis streams the story text over stdin and writes a WAV file. When
// CUDA is enabled the first attempt requests GPU acceleration and falls
// back to a CPU run on failure, matching how operators actually run Piper
// on machines with flaky GPU setups. The synthesized file's duration is the
// authoritative narration length; callers measure it with ffprobe.
package piper
