package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"storyreel/internal/timeline"
)

var commandContext = exec.CommandContext

// CaptionStyle controls drawtext rendering of caption cues.
type CaptionStyle struct {
	FontFile     string
	FontSize     int
	BottomMargin int
	// VideoWidth is the background frame width in pixels, used to wrap
	// caption text before rendering.
	VideoWidth int
}

// RenderRequest describes one story composition.
type RenderRequest struct {
	BackgroundPath string
	AudioPath      string
	OutputPath     string
	// AudioSeconds is the measured narration length; the background loops
	// and is cut to exactly this duration.
	AudioSeconds float64
	Cues         []timeline.Cue
	Style        CaptionStyle
}

// Client defines the rendering behaviour the pipeline depends on.
type Client interface {
	RenderWithCaptions(ctx context.Context, req RenderRequest) error
	ExtractClip(ctx context.Context, videoPath string, start, end float64, outputPath string) error
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

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// RenderWithCaptions composes the looped background, narration audio, and
// caption overlays into the output file.
func (c *CLI) RenderWithCaptions(ctx context.Context, req RenderRequest) error {
	args, err := renderArgs(req)
	if err != nil {
		return err
	}
	return c.run(ctx, args)
}

// ExtractClip re-encodes the [start,end) range of videoPath into outputPath.
func (c *CLI) ExtractClip(ctx context.Context, videoPath string, start, end float64, outputPath string) error {
	args, err := clipArgs(videoPath, start, end, outputPath)
	if err != nil {
		return err
	}
	return c.run(ctx, args)
}

func (c *CLI) run(ctx context.Context, args []string) error {
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(string(output), 400))
	}
	return nil
}

func renderArgs(req RenderRequest) ([]string, error) {
	if req.BackgroundPath == "" {
		return nil, errors.New("background path required")
	}
	if req.AudioPath == "" {
		return nil, errors.New("audio path required")
	}
	if req.OutputPath == "" {
		return nil, errors.New("output path required")
	}
	if req.AudioSeconds <= 0 {
		return nil, errors.New("audio duration required")
	}

	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-stream_loop", "-1", "-i", req.BackgroundPath,
		"-i", req.AudioPath,
		"-map", "0:v:0", "-map", "1:a:0",
		"-t", formatSeconds(req.AudioSeconds),
	}
	if filter := captionFilter(req.Cues, req.Style); filter != "" {
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac",
		req.OutputPath,
	)
	return args, nil
}

func clipArgs(videoPath string, start, end float64, outputPath string) ([]string, error) {
	if videoPath == "" {
		return nil, errors.New("video path required")
	}
	if outputPath == "" {
		return nil, errors.New("output path required")
	}
	if end <= start {
		return nil, fmt.Errorf("invalid clip range [%v,%v)", start, end)
	}
	return []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-ss", formatSeconds(start),
		"-to", formatSeconds(end),
		"-i", videoPath,
		"-c:v", "libx264", "-preset", "fast",
		"-c:a", "aac",
		outputPath,
	}, nil
}

// captionFilter builds the drawtext chain burning each cue into its
// [start,end) window. Cue text is wrapped to the frame width using an
// approximate glyph-width measure before rendering.
func captionFilter(cues []timeline.Cue, style CaptionStyle) string {
	if len(cues) == 0 {
		return ""
	}
	if style.FontSize <= 0 {
		style.FontSize = 36
	}
	if style.BottomMargin <= 0 {
		style.BottomMargin = 50
	}
	if style.VideoWidth <= 0 {
		style.VideoWidth = 1280
	}

	measure := glyphMeasure(style.FontSize)
	filters := make([]string, 0, len(cues))
	for _, cue := range cues {
		lines := timeline.Wrap(cue.Chunk.Content, float64(style.VideoWidth), measure)
		text := strings.Join(lines, "\n")

		var b strings.Builder
		b.WriteString("drawtext=text='")
		b.WriteString(escapeDrawtext(text))
		b.WriteString("'")
		if style.FontFile != "" {
			b.WriteString(":fontfile='")
			b.WriteString(escapeDrawtext(style.FontFile))
			b.WriteString("'")
		}
		b.WriteString(":fontsize=")
		b.WriteString(strconv.Itoa(style.FontSize))
		b.WriteString(":fontcolor=white:borderw=2:bordercolor=black")
		b.WriteString(":x=(w-text_w)/2:y=h-text_h-")
		b.WriteString(strconv.Itoa(style.BottomMargin))
		b.WriteString(":enable='between(t,")
		b.WriteString(formatSeconds(cue.Start))
		b.WriteString(",")
		b.WriteString(formatSeconds(cue.End))
		b.WriteString(")'")
		filters = append(filters, b.String())
	}
	return strings.Join(filters, ",")
}

// glyphMeasure approximates rendered text width in pixels from the font
// size. Proportional fonts average a bit over half the em box per glyph.
func glyphMeasure(fontSize int) timeline.MeasureFunc {
	perGlyph := float64(fontSize) * 0.55
	return func(s string) float64 {
		return float64(len([]rune(s))) * perGlyph
	}
}

// escapeDrawtext escapes text for use inside a single-quoted drawtext
// argument within -vf. Backslash, quote, colon, comma, and percent are
// special to the filter graph parser.
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\\\'`,
		`:`, `\:`,
		`,`, `\,`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func tail(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
