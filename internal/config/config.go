package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StoriesDir     string `toml:"stories_dir"`
	BackgroundsDir string `toml:"backgrounds_dir"`
	OutputDir      string `toml:"output_dir"`
	WorkDir        string `toml:"work_dir"`
	LogDir         string `toml:"log_dir"`
}

// Piper contains configuration for the Piper TTS executable.
type Piper struct {
	Binary     string `toml:"binary"`
	VoiceModel string `toml:"voice_model"`
	// CUDAEnabled attempts GPU synthesis first and falls back to CPU on failure.
	CUDAEnabled    bool `toml:"cuda_enabled"`
	TimeoutSeconds int  `toml:"timeout_seconds"`
}

// Captions contains subtitle timing and rendering configuration.
type Captions struct {
	Enabled       bool    `toml:"enabled"`
	MinCueSeconds float64 `toml:"min_cue_seconds"`
	MaxCueSeconds float64 `toml:"max_cue_seconds"`
	MaxChunkChars int     `toml:"max_chunk_chars"`
	FontFile      string  `toml:"font_file"`
	FontSize      int     `toml:"font_size"`
	BottomMargin  int     `toml:"bottom_margin"`
}

// Preview contains configuration for the advisory duration estimate.
type Preview struct {
	WordsPerMinute float64 `toml:"words_per_minute"`
}

// Segments contains configuration for short-form clip extraction.
type Segments struct {
	Enabled       bool    `toml:"enabled"`
	TargetSeconds float64 `toml:"target_seconds"`
	MinSeconds    float64 `toml:"min_seconds"`
}

// TextPrep controls TTS-friendly text cleanup before synthesis.
type TextPrep struct {
	Enabled bool `toml:"enabled"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Synthesis      bool   `toml:"synthesis"`
	Render         bool   `toml:"render"`
	Segmenting     bool   `toml:"segmenting"`
	Queue          bool   `toml:"queue"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains queue processing intervals.
type Workflow struct {
	QueuePollInterval int `toml:"queue_poll_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for storyreel.
//
// Sections by subsystem:
//   - Paths: story library, backgrounds, output, scratch, and log dirs
//   - Piper: TTS executable and voice model
//   - Captions: cue timing bounds and drawtext rendering settings
//   - Preview: advisory words-per-minute estimate shown before synthesis
//   - Segments: short-form clip target and minimum durations
//   - TextPrep: TTS-friendly text cleanup toggle
//   - Notifications: ntfy push settings
//   - Workflow: queue polling interval
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Piper         Piper         `toml:"piper"`
	Captions      Captions      `toml:"captions"`
	Preview       Preview       `toml:"preview"`
	Segments      Segments      `toml:"segments"`
	TextPrep      TextPrep      `toml:"text_prep"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/storyreel/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("storyreel.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a pipeline run writes to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StoriesDir, c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name used for rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
