// Package stories manages the on-disk story library: plain text files,
// one story per file, under the configured stories directory.
package stories

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storyreel/internal/timeline"
)

// ErrStoryExists indicates a create would overwrite an existing story.
var ErrStoryExists = errors.New("story already exists")

// ErrStoryNotFound indicates a story name that is not in the library.
var ErrStoryNotFound = errors.New("story not found")

const previewLength = 50

var titleCaser = cases.Title(language.Und)

// Story summarizes one library entry.
type Story struct {
	Path      string
	Name      string
	Title     string
	Preview   string
	SizeBytes int64
	WordCount int
	CharCount int
}

// EstimatedSeconds returns the narration estimate for the story at the
// given speech rate.
func (s Story) EstimatedSeconds(wordsPerMinute float64) float64 {
	if wordsPerMinute <= 0 {
		wordsPerMinute = timeline.DefaultWordsPerMinute
	}
	return float64(s.WordCount) / wordsPerMinute * 60
}

// Stats aggregates the whole library.
type Stats struct {
	Files      int
	TotalWords int
	TotalChars int
}

// Library reads and writes story files under a single directory.
type Library struct {
	dir string
}

// NewLibrary returns a library rooted at dir.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the library root.
func (l *Library) Dir() string {
	return l.dir
}

// List returns every .txt story in the library, sorted by file name.
func (l *Library) List() ([]Story, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read stories directory: %w", err)
	}

	var stories []Story
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".txt") {
			continue
		}
		story, err := l.describe(entry.Name())
		if err != nil {
			continue
		}
		stories = append(stories, story)
	}
	sort.Slice(stories, func(i, j int) bool { return stories[i].Name < stories[j].Name })
	return stories, nil
}

// Get returns the summary for one story by file name.
func (l *Library) Get(name string) (Story, error) {
	story, err := l.describe(name)
	if err != nil {
		if os.IsNotExist(err) {
			return Story{}, fmt.Errorf("%w: %s", ErrStoryNotFound, name)
		}
		return Story{}, err
	}
	return story, nil
}

// Read returns the full text of a story by file name.
func (l *Library) Read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrStoryNotFound, name)
		}
		return "", err
	}
	return string(data), nil
}

// Create writes a new story file named after title. It refuses to
// overwrite unless overwrite is set. The created path is returned.
func (l *Library) Create(title, content string, overwrite bool) (string, error) {
	name := FileNameForTitle(title)
	if name == ".txt" {
		return "", errors.New("story title produces an empty file name")
	}
	path := filepath.Join(l.dir, name)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("%w: %s", ErrStoryExists, name)
		}
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Stats totals the library.
func (l *Library) Stats() (Stats, error) {
	stories, err := l.List()
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Files: len(stories)}
	for _, story := range stories {
		stats.TotalWords += story.WordCount
		stats.TotalChars += story.CharCount
	}
	return stats, nil
}

func (l *Library) describe(name string) (Story, error) {
	path := filepath.Join(l.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return Story{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Story{}, err
	}
	content := string(data)
	return Story{
		Path:      path,
		Name:      name,
		Title:     DisplayTitle(name),
		Preview:   previewLine(content),
		SizeBytes: info.Size(),
		WordCount: len(strings.Fields(content)),
		CharCount: len(content),
	}, nil
}

// previewLine returns the first non-empty line, truncated for display.
func previewLine(content string) string {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > previewLength {
			return string(runes[:previewLength-3]) + "..."
		}
		return line
	}
	return ""
}

// FileNameForTitle derives a safe .txt file name from a story title:
// alphanumerics, spaces, hyphens, and underscores survive; spaces become
// underscores and the result is lowercased.
func FileNameForTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == ' ':
			b.WriteRune('_')
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), "_") + ".txt"
}

// DisplayTitle turns a story file name back into a human title:
// "the_lost_city.txt" becomes "The Lost City".
func DisplayTitle(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return titleCaser.String(strings.TrimSpace(stem))
}
