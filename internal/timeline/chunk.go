package timeline

import (
	"strings"
	"unicode"
)

// DefaultMaxChunkChars is the character threshold above which a sentence is
// re-split at word boundaries.
const DefaultMaxChunkChars = 100

// Chunk is one caption-sized unit of story text in narration order.
type Chunk struct {
	Content     string
	WordCount   int
	SourceIndex int
}

// Split breaks story text into ordered caption chunks. Sentences end at
// '.', '!', or '?' followed by whitespace or end-of-text; the terminal
// punctuation stays with its sentence. Sentences longer than maxChunkChars
// are re-split greedily at word boundaries, keeping the final remainder
// however short. Whitespace-only candidates produce no chunk, so empty
// input yields an empty slice.
func Split(storyText string, maxChunkChars int) []Chunk {
	if maxChunkChars <= 0 {
		maxChunkChars = DefaultMaxChunkChars
	}

	var chunks []Chunk
	appendChunk := func(content string) {
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		words := strings.Fields(content)
		chunks = append(chunks, Chunk{
			Content:     content,
			WordCount:   len(words),
			SourceIndex: len(chunks),
		})
	}

	for _, sentence := range splitSentences(storyText) {
		for _, piece := range splitLong(sentence, maxChunkChars) {
			appendChunk(piece)
		}
	}
	return chunks
}

func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isSentenceTerminal(runes[i]) {
			continue
		}
		// Consume a run of terminal punctuation ("?!", "...").
		end := i
		for end+1 < len(runes) && isSentenceTerminal(runes[end+1]) {
			end++
		}
		if end+1 < len(runes) && !unicode.IsSpace(runes[end+1]) {
			i = end
			continue
		}
		sentences = append(sentences, string(runes[start:end+1]))
		i = end
		start = end + 1
	}
	if start < len(runes) {
		sentences = append(sentences, string(runes[start:]))
	}
	return sentences
}

func isSentenceTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitLong greedily packs whole words into pieces no longer than limit
// characters. A single word longer than the limit becomes its own piece;
// words are never split internally.
func splitLong(sentence string, limit int) []string {
	trimmed := strings.TrimSpace(sentence)
	if len([]rune(trimmed)) <= limit {
		return []string{trimmed}
	}

	words := strings.Fields(trimmed)
	var pieces []string
	var current strings.Builder
	currentLen := 0
	for _, word := range words {
		wordLen := len([]rune(word))
		switch {
		case currentLen == 0:
			current.WriteString(word)
			currentLen = wordLen
		case currentLen+1+wordLen <= limit:
			current.WriteByte(' ')
			current.WriteString(word)
			currentLen += 1 + wordLen
		default:
			pieces = append(pieces, current.String())
			current.Reset()
			current.WriteString(word)
			currentLen = wordLen
		}
	}
	if currentLen > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}
