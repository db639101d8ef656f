package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/fileutil"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/notifications"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/ffmpeg"
	"storyreel/internal/stage"
	"storyreel/internal/textprep"
	"storyreel/internal/timeline"
)

// Renderer composes the looped background video, narration audio, and
// caption overlays into the final output file.
type Renderer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	ffmpeg   ffmpeg.Client
	notifier notifications.Service

	inspect func(ctx context.Context, binary, path string) (ffprobe.Result, error)
}

// NewRenderer constructs the render stage handler using default dependencies.
func NewRenderer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Renderer {
	client := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
	return NewRendererWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewRendererWithDependencies allows injecting collaborators (used in tests).
func NewRendererWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ffmpeg.Client, notifier notifications.Service) *Renderer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "renderer"))
	}
	return &Renderer{
		store:    store,
		cfg:      cfg,
		logger:   stageLogger,
		ffmpeg:   client,
		notifier: notifier,
		inspect:  ffprobe.Inspect,
	}
}

func (r *Renderer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)
	item.SetProgress("Rendering", "Preparing video composition", 0)
	item.ErrorMessage = ""
	logger.Info(
		"starting render preparation",
		logging.String("audio_file", strings.TrimSpace(item.AudioFile)),
	)
	return nil
}

func (r *Renderer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, r.logger)

	if item.AudioFile == "" || item.AudioSeconds <= 0 {
		return services.Wrap(
			services.ErrValidation, "rendering", "validate inputs",
			"No synthesized narration present; run synthesis before rendering", nil)
	}

	background := strings.TrimSpace(item.BackgroundFile)
	if background == "" {
		picked, err := fileutil.PickRandomVideo(r.cfg.Paths.BackgroundsDir)
		if err != nil {
			if errors.Is(err, fileutil.ErrNoVideos) {
				return services.Wrap(
					services.ErrConfiguration, "rendering", "pick background",
					"No background videos available; add files to paths.backgrounds_dir", err)
			}
			return services.Wrap(
				services.ErrConfiguration, "rendering", "pick background",
				"Cannot read the backgrounds directory; check paths.backgrounds_dir", err)
		}
		background = picked
	}
	item.BackgroundFile = background

	cues, style, err := r.buildCaptions(ctx, item, background)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(r.cfg.Paths.WorkDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration, "rendering", "prepare work directory",
			"Cannot create the work directory; check paths.work_dir", err)
	}
	workOutput := filepath.Join(r.cfg.Paths.WorkDir, fmt.Sprintf("render_%d.mp4", item.ID))

	item.SetProgress("Rendering", "Compositing video", 20)
	logger.Info(
		"rendering video",
		logging.String("background_file", background),
		logging.Int("caption_cues", len(cues)),
		logging.Float64("audio_seconds", item.AudioSeconds),
	)

	req := ffmpeg.RenderRequest{
		BackgroundPath: background,
		AudioPath:      item.AudioFile,
		OutputPath:     workOutput,
		AudioSeconds:   item.AudioSeconds,
		Cues:           cues,
		Style:          style,
	}
	if err := r.ffmpeg.RenderWithCaptions(ctx, req); err != nil {
		return services.Wrap(
			services.ErrExternalTool, "rendering", "ffmpeg",
			"Video composition failed; check the ffmpeg installation and the background file", err)
	}

	finalPath, err := r.publish(item, workOutput)
	if err != nil {
		return err
	}

	item.FinalFile = finalPath
	item.SetProgress("Rendering", fmt.Sprintf("Rendered %s", filepath.Base(finalPath)), 100)
	logger.Info(
		"render complete",
		logging.String("final_file", finalPath),
	)

	if r.notifier != nil {
		if err := r.notifier.NotifyRenderComplete(ctx, item.Title, finalPath); err != nil {
			logger.Warn("render notification failed", logging.Error(err))
		}
	}
	return nil
}

// buildCaptions returns the caption cues and drawtext style for the item,
// or no cues when captions are disabled.
func (r *Renderer) buildCaptions(ctx context.Context, item *queue.Item, background string) ([]timeline.Cue, ffmpeg.CaptionStyle, error) {
	style := ffmpeg.CaptionStyle{
		FontFile:     r.cfg.Captions.FontFile,
		FontSize:     r.cfg.Captions.FontSize,
		BottomMargin: r.cfg.Captions.BottomMargin,
	}
	if !r.cfg.Captions.Enabled {
		return nil, style, nil
	}

	text, err := stage.ReadStoryText(item.StoryPath)
	if err != nil {
		return nil, style, err
	}
	if r.cfg.TextPrep.Enabled {
		text = textprep.Clean(text)
	}

	result, err := r.inspect(ctx, r.cfg.FFprobeBinary(), background)
	if err != nil {
		return nil, style, services.Wrap(
			services.ErrExternalTool, "rendering", "probe background",
			"Could not probe the background video; the file may be corrupt", err)
	}
	for _, stream := range result.Streams {
		if strings.EqualFold(stream.CodecType, "video") && stream.Width > 0 {
			style.VideoWidth = stream.Width
			break
		}
	}

	cueCfg := timeline.CueConfig{
		MinCueSeconds: r.cfg.Captions.MinCueSeconds,
		MaxCueSeconds: r.cfg.Captions.MaxCueSeconds,
		MaxChunkChars: r.cfg.Captions.MaxChunkChars,
	}
	cues, err := timeline.BuildCaptionTimeline(text, item.AudioSeconds, cueCfg)
	if err != nil {
		return nil, style, services.Wrap(
			services.ErrValidation, "rendering", "build caption timeline",
			"Caption timing could not be computed from the measured narration", err)
	}
	return cues, style, nil
}

// publish moves the work-directory render into the output directory with
// integrity verification, never overwriting an existing output.
func (r *Renderer) publish(item *queue.Item, workOutput string) (string, error) {
	if err := os.MkdirAll(r.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", services.Wrap(
			services.ErrConfiguration, "rendering", "prepare output directory",
			"Cannot create the output directory; check paths.output_dir", err)
	}
	stem := strings.TrimSuffix(filepath.Base(item.StoryPath), filepath.Ext(item.StoryPath))
	if stem == "" {
		stem = fmt.Sprintf("story_%d", item.ID)
	}
	finalPath := fileutil.UniquePath(filepath.Join(r.cfg.Paths.OutputDir, stem+".mp4"))
	if err := fileutil.CopyFileVerified(workOutput, finalPath); err != nil {
		return "", services.Wrap(
			services.ErrTransient, "rendering", "publish output",
			"Could not move the rendered video into the output directory", err)
	}
	_ = os.Remove(workOutput)
	return finalPath, nil
}

func (r *Renderer) HealthCheck(ctx context.Context) stage.Health {
	videos, err := fileutil.ListVideos(r.cfg.Paths.BackgroundsDir)
	if err != nil {
		return stage.Unhealthy("renderer", fmt.Sprintf("backgrounds directory unreadable: %v", err))
	}
	if len(videos) == 0 {
		return stage.Unhealthy("renderer", "no background videos available")
	}
	return stage.Healthy("renderer")
}
