// Package timeline converts story text and a measured narration duration into
// a subtitle cue timeline, and partitions a rendered video into fixed-length
// segment ranges.
//
// Everything in this package is a pure, synchronous computation: immutable
// inputs in, new immutable values out, no I/O and no shared state. The
// surrounding pipeline supplies the authoritative narration duration from the
// synthesized audio; EstimateDuration exists only for advisory previews shown
// before synthesis runs and must never feed the cue timeline.
//
// Key entry points:
//   - Split: break story text into caption-sized chunks
//   - Allocate: assign contiguous [start,end) ranges to chunks
//   - Wrap: reflow a chunk into display lines under a measure function
//   - PlanSegments: partition a total duration into segment ranges
//   - BuildCaptionTimeline / BuildVideoSegments: facades over the above
package timeline
