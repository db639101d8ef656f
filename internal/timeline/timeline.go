package timeline

// CueConfig carries the tunables for caption timeline construction. Zero
// values fall back to package defaults, so the zero CueConfig is usable.
type CueConfig struct {
	MinCueSeconds         float64
	MaxCueSeconds         float64
	MaxChunkChars         int
	PreviewWordsPerMinute float64
}

// DefaultCueConfig returns the caption defaults used when no configuration
// is supplied.
func DefaultCueConfig() CueConfig {
	return CueConfig{
		MinCueSeconds:         DefaultMinCueSeconds,
		MaxCueSeconds:         DefaultMaxCueSeconds,
		MaxChunkChars:         DefaultMaxChunkChars,
		PreviewWordsPerMinute: DefaultWordsPerMinute,
	}
}

// BuildCaptionTimeline splits story text into chunks and allocates each one
// a contiguous window across measuredSeconds, the duration measured from the
// synthesized audio. Empty story text yields an empty timeline and no error;
// the caller skips caption rendering entirely in that case.
func BuildCaptionTimeline(storyText string, measuredSeconds float64, cfg CueConfig) ([]Cue, error) {
	chunks := Split(storyText, cfg.MaxChunkChars)
	return Allocate(chunks, measuredSeconds, cfg.MinCueSeconds, cfg.MaxCueSeconds)
}

// BuildVideoSegments plans the segment ranges for a rendered asset of
// totalSeconds. See PlanSegments for remainder handling.
func BuildVideoSegments(totalSeconds, targetSeconds, minSeconds float64) ([]SegmentRange, error) {
	return PlanSegments(totalSeconds, targetSeconds, minSeconds)
}
