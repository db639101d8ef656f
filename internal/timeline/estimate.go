package timeline

import "strings"

// DefaultWordsPerMinute approximates a typical TTS narration speech rate.
const DefaultWordsPerMinute = 160

// EstimateDuration predicts narration length in seconds from word count
// alone. It is an advisory preview figure for display before synthesis; the
// authoritative duration always comes from measuring the synthesized audio.
func EstimateDuration(storyText string, wordsPerMinute float64) float64 {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := len(strings.Fields(storyText))
	return float64(words) / wordsPerMinute * 60
}
