package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizePiper(); err != nil {
		return err
	}
	c.normalizeCaptions()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StoriesDir, err = expandPath(c.Paths.StoriesDir); err != nil {
		return fmt.Errorf("paths.stories_dir: %w", err)
	}
	if c.Paths.BackgroundsDir, err = expandPath(c.Paths.BackgroundsDir); err != nil {
		return fmt.Errorf("paths.backgrounds_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePiper() error {
	c.Piper.Binary = strings.TrimSpace(c.Piper.Binary)
	if c.Piper.Binary == "" {
		c.Piper.Binary = defaultPiperBinary
	}
	if strings.ContainsAny(c.Piper.Binary, "/~") {
		expanded, err := expandPath(c.Piper.Binary)
		if err != nil {
			return fmt.Errorf("piper.binary: %w", err)
		}
		c.Piper.Binary = expanded
	}
	if model := strings.TrimSpace(c.Piper.VoiceModel); model != "" {
		expanded, err := expandPath(model)
		if err != nil {
			return fmt.Errorf("piper.voice_model: %w", err)
		}
		c.Piper.VoiceModel = expanded
	} else {
		c.Piper.VoiceModel = ""
	}
	if c.Piper.TimeoutSeconds <= 0 {
		c.Piper.TimeoutSeconds = defaultPiperTimeout
	}
	return nil
}

func (c *Config) normalizeCaptions() {
	if c.Captions.MinCueSeconds <= 0 {
		c.Captions.MinCueSeconds = defaultMinCueSeconds
	}
	if c.Captions.MaxCueSeconds <= 0 {
		c.Captions.MaxCueSeconds = defaultMaxCueSeconds
	}
	if c.Captions.MaxChunkChars <= 0 {
		c.Captions.MaxChunkChars = defaultMaxChunkChars
	}
	if c.Captions.FontSize <= 0 {
		c.Captions.FontSize = defaultFontSize
	}
	if c.Captions.BottomMargin <= 0 {
		c.Captions.BottomMargin = defaultBottomMargin
	}
	if c.Preview.WordsPerMinute <= 0 {
		c.Preview.WordsPerMinute = defaultWordsPerMinute
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
