package timeline

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const epsilon = 1e-9

func chunksFromText(t *testing.T, text string) []Chunk {
	t.Helper()
	chunks := Split(text, 0)
	if len(chunks) == 0 {
		t.Fatalf("no chunks from %q", text)
	}
	return chunks
}

func assertContiguousCoverage(t *testing.T, cues []Cue, total float64) {
	t.Helper()
	if cues[0].Start != 0 {
		t.Fatalf("first cue starts at %v, want 0", cues[0].Start)
	}
	for i := 1; i < len(cues); i++ {
		if cues[i].Start != cues[i-1].End {
			t.Fatalf("gap or overlap between cue %d and %d: %v vs %v", i-1, i, cues[i-1].End, cues[i].Start)
		}
	}
	last := cues[len(cues)-1]
	if last.End != total {
		t.Fatalf("last cue ends at %v, want exactly %v", last.End, total)
	}
	sum := 0.0
	for _, cue := range cues {
		sum += cue.Duration()
	}
	if math.Abs(sum-total) > epsilon {
		t.Fatalf("cue durations sum to %v, want %v", sum, total)
	}
}

func TestAllocateCoversDurationExactly(t *testing.T) {
	chunks := chunksFromText(t, "One two three. Four five. Six seven eight nine ten.")
	cues, err := Allocate(chunks, 30, 1, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(cues) != len(chunks) {
		t.Fatalf("expected %d cues, got %d", len(chunks), len(cues))
	}
	assertContiguousCoverage(t, cues, 30)
}

func TestAllocateWeightsByWordCount(t *testing.T) {
	chunks := chunksFromText(t, "Short one. This sentence carries quite a few more words than the first.")
	cues, err := Allocate(chunks, 20, 1, 30)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if cues[1].Duration() <= cues[0].Duration() {
		t.Fatalf("wordier cue should run longer: %v vs %v", cues[0].Duration(), cues[1].Duration())
	}
}

func TestAllocateRespectsCueBounds(t *testing.T) {
	var parts []string
	for i := 0; i < 10; i++ {
		parts = append(parts, "A few words here.")
	}
	chunks := chunksFromText(t, strings.Join(parts, " "))

	cues, err := Allocate(chunks, 60, 2, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	assertContiguousCoverage(t, cues, 60)
	for i, cue := range cues {
		// The last cue may absorb residual error from re-clamping.
		if i == len(cues)-1 {
			continue
		}
		if cue.Duration() < 2-epsilon || cue.Duration() > 8+epsilon {
			t.Fatalf("cue %d duration %v outside [2,8]", i, cue.Duration())
		}
	}
}

func TestAllocateShortDurationKeepsCuesPositive(t *testing.T) {
	// Five chunks cannot each get the 1s minimum inside 2s; the minimum
	// yields rather than running cues past the narration's end.
	chunks := chunksFromText(t, "A one. B two. C three. D four. E five.")
	cues, err := Allocate(chunks, 2.0, 1, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(cues) != 5 {
		t.Fatalf("expected 5 cues, got %d", len(cues))
	}
	for i, cue := range cues {
		if cue.Duration() <= 0 {
			t.Fatalf("cue %d has non-positive duration: [%v,%v)", i, cue.Start, cue.End)
		}
	}
	assertContiguousCoverage(t, cues, 2.0)
}

func TestAllocateLongLeadingChunkKeepsCuesPositive(t *testing.T) {
	// A wordy chunk followed by many min-length ones over-allocates after
	// re-clamping; the trailing cues must still end exactly at the total
	// without any window inverting.
	text := "This opening sentence carries a great many words so it dominates the proportional share entirely."
	for i := 0; i < 9; i++ {
		text += " Tiny one."
	}
	chunks := chunksFromText(t, text)
	cues, err := Allocate(chunks, 10, 1, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for i, cue := range cues {
		if cue.Duration() <= 0 {
			t.Fatalf("cue %d has non-positive duration: [%v,%v)", i, cue.Start, cue.End)
		}
	}
	assertContiguousCoverage(t, cues, 10)
}

func TestAllocateToleratesZeroWordCounts(t *testing.T) {
	chunks := []Chunk{
		{Content: "first", WordCount: 0, SourceIndex: 0},
		{Content: "second", WordCount: 0, SourceIndex: 1},
	}
	cues, err := Allocate(chunks, 6, 1, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for i, cue := range cues {
		if math.IsNaN(cue.Start) || math.IsNaN(cue.End) {
			t.Fatalf("cue %d has NaN window: [%v,%v)", i, cue.Start, cue.End)
		}
		if cue.Duration() <= 0 {
			t.Fatalf("cue %d has non-positive duration: [%v,%v)", i, cue.Start, cue.End)
		}
	}
	assertContiguousCoverage(t, cues, 6)
}

func TestAllocateSingleChunkSpansWholeDuration(t *testing.T) {
	cues, err := Allocate(chunksFromText(t, "Just one sentence."), 5, 1, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
	if cues[0].Start != 0 || cues[0].End != 5 {
		t.Fatalf("unexpected cue window: [%v,%v)", cues[0].Start, cues[0].End)
	}
}

func TestAllocateEmptyChunks(t *testing.T) {
	cues, err := Allocate(nil, 10, 1, 8)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(cues) != 0 {
		t.Fatalf("expected no cues, got %d", len(cues))
	}
}

func TestAllocateRejectsNonPositiveDuration(t *testing.T) {
	chunks := chunksFromText(t, "Hello there.")
	for _, total := range []float64{0, -3} {
		if _, err := Allocate(chunks, total, 1, 8); !errors.Is(err, ErrInvalidDuration) {
			t.Fatalf("total %v: expected ErrInvalidDuration, got %v", total, err)
		}
	}
}

func TestBuildCaptionTimelineFacade(t *testing.T) {
	cues, err := BuildCaptionTimeline("Hello world. How are you?", 12, DefaultCueConfig())
	if err != nil {
		t.Fatalf("BuildCaptionTimeline: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	assertContiguousCoverage(t, cues, 12)
}

func TestBuildCaptionTimelineEmptyStory(t *testing.T) {
	cues, err := BuildCaptionTimeline("", 12, CueConfig{})
	if err != nil {
		t.Fatalf("BuildCaptionTimeline: %v", err)
	}
	if len(cues) != 0 {
		t.Fatalf("expected empty timeline, got %d cues", len(cues))
	}
}
