package timeline

import (
	"strings"
	"testing"
)

func runeCount(s string) float64 {
	return float64(len([]rune(s)))
}

func TestWrapKeepsLinesUnderLimit(t *testing.T) {
	lines := Wrap("the quick brown fox jumps", 20, runeCount)
	if len(lines) == 0 {
		t.Fatal("expected at least one line")
	}
	limit := 20 * DefaultWrapFraction
	for i, line := range lines {
		if words := strings.Fields(line); len(words) > 1 && runeCount(line) > limit {
			t.Fatalf("line %d too wide: %q (%v > %v)", i, line, runeCount(line), limit)
		}
	}
	if rejoined := strings.Join(lines, " "); rejoined != "the quick brown fox jumps" {
		t.Fatalf("wrapping lost or reordered words: %q", rejoined)
	}
}

func TestWrapSingleShortLine(t *testing.T) {
	lines := Wrap("hello world", 100, runeCount)
	if len(lines) != 1 || lines[0] != "hello world" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestWrapOversizeWordStaysWhole(t *testing.T) {
	lines := Wrap("tiny extraordinarily-long-word end", 10, runeCount)
	found := false
	for _, line := range lines {
		if line == "extraordinarily-long-word" {
			found = true
		}
		if strings.Contains(line, "extraordinarily") && line != "extraordinarily-long-word" {
			t.Fatalf("oversize word shares a line or was split: %q", line)
		}
	}
	if !found {
		t.Fatalf("oversize word not placed alone: %#v", lines)
	}
}

func TestWrapEmptyInput(t *testing.T) {
	if lines := Wrap("   ", 20, runeCount); lines != nil {
		t.Fatalf("expected no lines for blank input, got %#v", lines)
	}
}

func TestWrapIsPureOverMeasurer(t *testing.T) {
	calls := 0
	measure := func(s string) float64 {
		calls++
		return runeCount(s)
	}
	first := Wrap("one two three four five six", 15, measure)
	second := Wrap("one two three four five six", 15, measure)
	if strings.Join(first, "|") != strings.Join(second, "|") {
		t.Fatalf("wrap not deterministic: %#v vs %#v", first, second)
	}
	if calls == 0 {
		t.Fatal("measure function never consulted")
	}
}
