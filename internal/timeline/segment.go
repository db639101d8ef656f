package timeline

import "errors"

// DefaultMinSegmentSeconds is the shortest trailing segment worth keeping.
const DefaultMinSegmentSeconds = 3.0

// ErrInvalidSegmentConfig reports a non-positive target duration or a
// minimum greater than the target. This is a configuration error surfaced
// before any clip extraction starts.
var ErrInvalidSegmentConfig = errors.New("timeline: invalid segment configuration")

// SegmentRange is one [Start,End) slice of the full asset duration.
// Index is 1-based in emission order.
type SegmentRange struct {
	Index int
	Start float64
	End   float64
}

// Duration returns the segment length in seconds.
func (s SegmentRange) Duration() float64 {
	return s.End - s.Start
}

// PlanSegments partitions totalSeconds into consecutive ranges of exactly
// targetSeconds each. The trailing remainder is emitted as a final short
// range only when it is at least minSeconds long; otherwise it is dropped
// outright, never merged into the previous segment. A total shorter than
// minSeconds yields an empty plan and no error: the asset is simply too
// short to segment, which is an expected outcome for short stories.
func PlanSegments(totalSeconds, targetSeconds, minSeconds float64) ([]SegmentRange, error) {
	if targetSeconds <= 0 || minSeconds > targetSeconds {
		return nil, ErrInvalidSegmentConfig
	}

	var segments []SegmentRange
	start := 0.0
	for start+targetSeconds <= totalSeconds {
		segments = append(segments, SegmentRange{
			Index: len(segments) + 1,
			Start: start,
			End:   start + targetSeconds,
		})
		start += targetSeconds
	}

	remainder := totalSeconds - start
	if remainder > 0 && remainder >= minSeconds {
		segments = append(segments, SegmentRange{
			Index: len(segments) + 1,
			Start: start,
			End:   totalSeconds,
		})
	}
	return segments, nil
}
