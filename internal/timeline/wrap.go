package timeline

import "strings"

// DefaultWrapFraction leaves a margin inside the target width so captions
// never touch the frame edge.
const DefaultWrapFraction = 0.9

// MeasureFunc reports the rendered width of a string in the caller's units
// (pixels, columns). Wrap is pure with respect to its measurer, so tests can
// supply a deterministic stub such as rune count.
type MeasureFunc func(string) float64

// Wrap reflows text into display lines that measure at most
// maxWidthUnits*DefaultWrapFraction. Words are packed greedily and never
// split; a single word wider than the limit sits alone on its own line.
// Non-empty input always yields at least one line.
func Wrap(text string, maxWidthUnits float64, measure MeasureFunc) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	limit := maxWidthUnits * DefaultWrapFraction
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if measure(candidate) <= limit {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}
