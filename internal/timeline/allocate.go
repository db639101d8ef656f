package timeline

import "errors"

// Default cue duration bounds in seconds.
const (
	DefaultMinCueSeconds = 1.0
	DefaultMaxCueSeconds = 8.0
)

// ErrInvalidDuration reports a non-positive total narration duration passed
// to Allocate. Emitting zero-length cues would be worse than failing.
var ErrInvalidDuration = errors.New("timeline: total duration must be positive")

// Cue pairs a chunk with its [Start,End) display window in seconds.
type Cue struct {
	Chunk Chunk
	Start float64
	End   float64
}

// Duration returns the cue's display length in seconds.
func (c Cue) Duration() float64 {
	return c.End - c.Start
}

// Allocate assigns each chunk a time range proportional to its word count so
// that the cues are contiguous, start at zero, and end exactly at
// totalSeconds. Raw shares are clamped into [minSeconds, maxSeconds], then
// uniformly rescaled to restore exact coverage and clamped once more. When
// the second clamp over-allocates (the minimum cannot be met for every chunk
// within totalSeconds), the minimum yields: all durations shrink
// proportionally so every cue keeps End > Start. The final cue's end absorbs
// whatever rounding error remains.
func Allocate(chunks []Chunk, totalSeconds, minSeconds, maxSeconds float64) ([]Cue, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if totalSeconds <= 0 {
		return nil, ErrInvalidDuration
	}
	if minSeconds <= 0 {
		minSeconds = DefaultMinCueSeconds
	}
	if maxSeconds < minSeconds {
		maxSeconds = DefaultMaxCueSeconds
	}

	totalWords := 0
	for _, chunk := range chunks {
		totalWords += wordWeight(chunk)
	}

	durations := make([]float64, len(chunks))
	clampedSum := 0.0
	for i, chunk := range chunks {
		raw := totalSeconds * float64(wordWeight(chunk)) / float64(totalWords)
		durations[i] = clamp(raw, minSeconds, maxSeconds)
		clampedSum += durations[i]
	}

	// Clamping breaks exact coverage; rescale uniformly and clamp once more.
	scale := totalSeconds / clampedSum
	rescaledSum := 0.0
	for i := range durations {
		durations[i] = clamp(durations[i]*scale, minSeconds, maxSeconds)
		rescaledSum += durations[i]
	}

	// Re-raising rescaled durations back to the minimum can push total
	// allocation past totalSeconds, which would run cues past the narration
	// and invert the snapped final cue. Shrink everything proportionally
	// instead; sub-minimum cues beat a negative-duration one.
	if rescaledSum > totalSeconds {
		shrink := totalSeconds / rescaledSum
		for i := range durations {
			durations[i] *= shrink
		}
	}

	cues := make([]Cue, len(chunks))
	elapsed := 0.0
	for i, chunk := range chunks {
		cues[i] = Cue{Chunk: chunk, Start: elapsed, End: elapsed + durations[i]}
		elapsed = cues[i].End
	}
	cues[len(cues)-1].End = totalSeconds
	return cues, nil
}

// wordWeight protects the proportional split from hand-built chunks whose
// WordCount never went through Split.
func wordWeight(chunk Chunk) int {
	if chunk.WordCount < 1 {
		return 1
	}
	return chunk.WordCount
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
