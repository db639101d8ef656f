package timeline

import (
	"strings"
	"testing"
)

func TestSplitBreaksAtSentencePunctuation(t *testing.T) {
	chunks := Split("Hello world. How are you?", 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Content != "Hello world." {
		t.Fatalf("unexpected first chunk: %q", chunks[0].Content)
	}
	if chunks[1].Content != "How are you?" {
		t.Fatalf("unexpected second chunk: %q", chunks[1].Content)
	}
	if chunks[0].WordCount != 2 || chunks[1].WordCount != 3 {
		t.Fatalf("unexpected word counts: %d, %d", chunks[0].WordCount, chunks[1].WordCount)
	}
	if chunks[0].SourceIndex != 0 || chunks[1].SourceIndex != 1 {
		t.Fatalf("unexpected source indexes: %d, %d", chunks[0].SourceIndex, chunks[1].SourceIndex)
	}
}

func TestSplitHandlesExclamationsAndRuns(t *testing.T) {
	chunks := Split("Wait! Really?! Yes... done.", 0)
	want := []string{"Wait!", "Really?!", "Yes...", "done."}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %#v", len(want), len(chunks), chunks)
	}
	for i, content := range want {
		if chunks[i].Content != content {
			t.Fatalf("chunk %d: got %q want %q", i, chunks[i].Content, content)
		}
	}
}

func TestSplitDoesNotBreakMidToken(t *testing.T) {
	chunks := Split("Version 1.5 shipped today. It works.", 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[0].Content != "Version 1.5 shipped today." {
		t.Fatalf("decimal point split a sentence: %q", chunks[0].Content)
	}
}

func TestSplitLongSentenceAtWordBoundaries(t *testing.T) {
	word := "alpha"
	var b strings.Builder
	for b.Len() < 250 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(word)
	}
	long := b.String()

	chunks := Split(long, 100)
	if len(chunks) < 2 {
		t.Fatalf("expected long sentence to split, got %d chunks", len(chunks))
	}
	var rejoined []string
	for i, chunk := range chunks {
		if len(chunk.Content) > 100 {
			t.Fatalf("chunk %d exceeds threshold: %d chars", i, len(chunk.Content))
		}
		if strings.Contains(chunk.Content, "  ") {
			t.Fatalf("chunk %d has collapsed spacing artifacts: %q", i, chunk.Content)
		}
		for _, w := range strings.Fields(chunk.Content) {
			if w != word {
				t.Fatalf("chunk %d split a word: %q", i, w)
			}
		}
		rejoined = append(rejoined, chunk.Content)
	}
	if strings.Join(rejoined, " ") != long {
		t.Fatal("splitting lost or reordered words")
	}
}

func TestSplitKeepsShortRemainder(t *testing.T) {
	// 100 chars of packing plus a tiny tail; the tail must survive.
	text := strings.Repeat("word ", 25) + "tail"
	chunks := Split(text, 100)
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last.Content, "tail") {
		t.Fatalf("short remainder dropped, last chunk: %q", last.Content)
	}
}

func TestSplitEmptyAndWhitespaceInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\n\t"} {
		if chunks := Split(input, 0); len(chunks) != 0 {
			t.Fatalf("input %q: expected no chunks, got %#v", input, chunks)
		}
	}
}

func TestSplitSkipsBlankLinesBetweenSentences(t *testing.T) {
	chunks := Split("First paragraph.\n\n\nSecond paragraph.", 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %#v", len(chunks), chunks)
	}
	if chunks[1].Content != "Second paragraph." {
		t.Fatalf("unexpected second chunk: %q", chunks[1].Content)
	}
}

func TestSplitOversizeSingleWordKeptWhole(t *testing.T) {
	giant := strings.Repeat("x", 140)
	chunks := Split("small words here "+giant+" end", 100)
	found := false
	for _, chunk := range chunks {
		if chunk.Content == giant {
			found = true
		}
		if strings.Contains(chunk.Content, giant[:50]) && chunk.Content != giant {
			t.Fatalf("oversize word was split: %q", chunk.Content)
		}
	}
	if !found {
		t.Fatalf("oversize word missing from chunks: %#v", chunks)
	}
}
