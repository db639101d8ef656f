// Package textprep normalizes story text before speech synthesis.
// Abbreviations and small numerals are spelled out, characters the
// synthesizer mispronounces are stripped, and spacing is made uniform.
package textprep

import (
	"regexp"
	"strings"
)

type rewrite struct {
	pattern     *regexp.Regexp
	replacement string
}

var abbreviations = []rewrite{
	{regexp.MustCompile(`(?i)\bDr\.`), "Doctor"},
	{regexp.MustCompile(`(?i)\bMr\.`), "Mister"},
	{regexp.MustCompile(`(?i)\bMrs\.`), "Missus"},
	{regexp.MustCompile(`(?i)\bMs\.`), "Miss"},
	{regexp.MustCompile(`(?i)\bProf\.`), "Professor"},
	{regexp.MustCompile(`(?i)\bSt\.`), "Saint"},
	{regexp.MustCompile(`(?i)\bAve\.`), "Avenue"},
	{regexp.MustCompile(`(?i)\bRd\.`), "Road"},
	{regexp.MustCompile(`(?i)\bBlvd\.`), "Boulevard"},
	{regexp.MustCompile(`(?i)\betc\.`), "etcetera"},
	{regexp.MustCompile(`(?i)\be\.g\.`), "for example"},
	{regexp.MustCompile(`(?i)\bi\.e\.`), "that is"},
	{regexp.MustCompile(`(?i)\bvs\.`), "versus"},
	{regexp.MustCompile(`\bUSA\b`), "United States of America"},
	{regexp.MustCompile(`\bUK\b`), "United Kingdom"},
}

var numberWords = []rewrite{
	{regexp.MustCompile(`\b1000\b`), "one thousand"},
	{regexp.MustCompile(`\b100\b`), "one hundred"},
	{regexp.MustCompile(`\b10\b`), "ten"},
	{regexp.MustCompile(`\b11\b`), "eleven"},
	{regexp.MustCompile(`\b12\b`), "twelve"},
	{regexp.MustCompile(`\b13\b`), "thirteen"},
	{regexp.MustCompile(`\b14\b`), "fourteen"},
	{regexp.MustCompile(`\b15\b`), "fifteen"},
	{regexp.MustCompile(`\b16\b`), "sixteen"},
	{regexp.MustCompile(`\b17\b`), "seventeen"},
	{regexp.MustCompile(`\b18\b`), "eighteen"},
	{regexp.MustCompile(`\b19\b`), "nineteen"},
	{regexp.MustCompile(`\b20\b`), "twenty"},
	{regexp.MustCompile(`\b30\b`), "thirty"},
	{regexp.MustCompile(`\b40\b`), "forty"},
	{regexp.MustCompile(`\b50\b`), "fifty"},
	{regexp.MustCompile(`\b60\b`), "sixty"},
	{regexp.MustCompile(`\b70\b`), "seventy"},
	{regexp.MustCompile(`\b80\b`), "eighty"},
	{regexp.MustCompile(`\b90\b`), "ninety"},
	{regexp.MustCompile(`\b0\b`), "zero"},
	{regexp.MustCompile(`\b1\b`), "one"},
	{regexp.MustCompile(`\b2\b`), "two"},
	{regexp.MustCompile(`\b3\b`), "three"},
	{regexp.MustCompile(`\b4\b`), "four"},
	{regexp.MustCompile(`\b5\b`), "five"},
	{regexp.MustCompile(`\b6\b`), "six"},
	{regexp.MustCompile(`\b7\b`), "seven"},
	{regexp.MustCompile(`\b8\b`), "eight"},
	{regexp.MustCompile(`\b9\b`), "nine"},
}

var (
	unsafeChars      = regexp.MustCompile(`[^\w\s.,!?;:'"()-]`)
	spaceBeforeStop  = regexp.MustCompile(`[ \t]+([.!?])`)
	spaceAfterStop   = regexp.MustCompile(`([.!?])[ \t]+`)
	horizontalRuns   = regexp.MustCompile(`[ \t]+`)
	excessBlankLines = regexp.MustCompile(`\n[ \t]*\n+`)
)

const terminalPunctuation = ".!?"

// Clean rewrites storyText into a form that narrates well: abbreviations
// and small numerals spelled out, unsupported characters removed, spacing
// normalized, and every non-empty line closed with terminal punctuation.
// Paragraph breaks are preserved.
func Clean(storyText string) string {
	text := storyText
	for _, rw := range abbreviations {
		text = rw.pattern.ReplaceAllString(text, rw.replacement)
	}
	for _, rw := range numberWords {
		text = rw.pattern.ReplaceAllString(text, rw.replacement)
	}

	text = unsafeChars.ReplaceAllString(text, "")
	text = spaceBeforeStop.ReplaceAllString(text, "$1")
	text = spaceAfterStop.ReplaceAllString(text, "$1 ")
	text = horizontalRuns.ReplaceAllString(text, " ")
	text = excessBlankLines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" && !strings.ContainsRune(terminalPunctuation, rune(line[len(line)-1])) {
			line += "."
		}
		lines[i] = line
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
