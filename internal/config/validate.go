package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateSegments(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCaptions() error {
	if c.Captions.MinCueSeconds > c.Captions.MaxCueSeconds {
		return fmt.Errorf("captions.min_cue_seconds (%v) must not exceed captions.max_cue_seconds (%v)",
			c.Captions.MinCueSeconds, c.Captions.MaxCueSeconds)
	}
	return nil
}

func (c *Config) validateSegments() error {
	if !c.Segments.Enabled {
		return nil
	}
	if c.Segments.TargetSeconds <= 0 {
		return errors.New("segments.target_seconds must be positive")
	}
	if c.Segments.MinSeconds < 0 {
		return errors.New("segments.min_seconds must not be negative")
	}
	if c.Segments.MinSeconds > c.Segments.TargetSeconds {
		return fmt.Errorf("segments.min_seconds (%v) must not exceed segments.target_seconds (%v)",
			c.Segments.MinSeconds, c.Segments.TargetSeconds)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
