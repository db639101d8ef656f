package timeline

import (
	"errors"
	"testing"
)

func TestPlanSegmentsEmitsQualifyingRemainder(t *testing.T) {
	segments, err := PlanSegments(95, 30, 3)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	want := []SegmentRange{
		{Index: 1, Start: 0, End: 30},
		{Index: 2, Start: 30, End: 60},
		{Index: 3, Start: 60, End: 90},
		{Index: 4, Start: 90, End: 95},
	}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d: %#v", len(want), len(segments), segments)
	}
	for i, seg := range want {
		if segments[i] != seg {
			t.Fatalf("segment %d: got %+v want %+v", i, segments[i], seg)
		}
	}
}

func TestPlanSegmentsDropsShortRemainder(t *testing.T) {
	segments, err := PlanSegments(91, 30, 3)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %#v", len(segments), segments)
	}
	if last := segments[2]; last.End != 90 {
		t.Fatalf("trailing second leaked into a segment: %+v", last)
	}
}

func TestPlanSegmentsExactMultiple(t *testing.T) {
	segments, err := PlanSegments(90, 30, 3)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
}

func TestPlanSegmentsTotalShorterThanMinimum(t *testing.T) {
	segments, err := PlanSegments(2, 30, 3)
	if err != nil {
		t.Fatalf("expected no error for short total, got %v", err)
	}
	if len(segments) != 0 {
		t.Fatalf("expected empty plan, got %#v", segments)
	}
}

func TestPlanSegmentsShortTotalAboveMinimum(t *testing.T) {
	segments, err := PlanSegments(10, 30, 3)
	if err != nil {
		t.Fatalf("PlanSegments: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("expected single partial segment, got %#v", segments)
	}
	if segments[0].Start != 0 || segments[0].End != 10 {
		t.Fatalf("unexpected range: %+v", segments[0])
	}
}

func TestPlanSegmentsRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name           string
		target, minSec float64
	}{
		{"zero target", 0, 0},
		{"negative target", -5, 3},
		{"min above target", 10, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PlanSegments(60, tc.target, tc.minSec); !errors.Is(err, ErrInvalidSegmentConfig) {
				t.Fatalf("expected ErrInvalidSegmentConfig, got %v", err)
			}
		})
	}
}

func TestEstimateDurationDependsOnWordCountOnly(t *testing.T) {
	a := EstimateDuration("one two three four", 160)
	b := EstimateDuration("one, two; three... four!!", 160)
	if a != b {
		t.Fatalf("punctuation changed the estimate: %v vs %v", a, b)
	}
	if a != 4.0/160*60 {
		t.Fatalf("unexpected estimate: %v", a)
	}
	if EstimateDuration("", 160) != 0 {
		t.Fatal("empty text should estimate zero seconds")
	}
	// Zero rate falls back to the default instead of dividing by zero.
	if got := EstimateDuration("one two", 0); got != 2.0/DefaultWordsPerMinute*60 {
		t.Fatalf("unexpected fallback estimate: %v", got)
	}
}
