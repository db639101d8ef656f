package piper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines Piper synthesis behaviour.
type Client interface {
	Synthesize(ctx context.Context, text, outputPath string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithVoiceModel sets the voice model (.onnx) passed to Piper.
func WithVoiceModel(model string) Option {
	return func(c *CLI) {
		c.voiceModel = model
	}
}

// WithCUDA controls whether a GPU attempt precedes the CPU run.
func WithCUDA(enabled bool) Option {
	return func(c *CLI) {
		c.tryCUDA = enabled
	}
}

// CLI wraps the piper command-line synthesizer.
type CLI struct {
	binary     string
	voiceModel string
	tryCUDA    bool
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "piper"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Synthesize narrates text into a WAV file at outputPath. With CUDA enabled
// the first attempt runs on GPU; any failure there falls back to CPU before
// the error is surfaced.
func (c *CLI) Synthesize(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	attempts := []bool{false}
	if c.tryCUDA {
		attempts = []bool{true, false}
	}

	var lastErr error
	for _, useCUDA := range attempts {
		if err := c.run(ctx, text, outputPath, useCUDA); err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		return nil
	}
	return lastErr
}

func (c *CLI) run(ctx context.Context, text, outputPath string, useCUDA bool) error {
	args := []string{}
	if c.voiceModel != "" {
		args = append(args, "-m", c.voiceModel)
	}
	if useCUDA {
		args = append(args, "--cuda")
	}
	args = append(args, "-f", outputPath)

	cmd := commandContext(ctx, c.binary, args...)
	cmd.Stdin = strings.NewReader(text)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("piper synthesize: %w: %s", err, strings.TrimSpace(string(output)))
	}
	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("piper produced no output at %s: %w", outputPath, err)
	}
	return nil
}
