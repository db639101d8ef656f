package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/notifications"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/piper"
	"storyreel/internal/stage"
	"storyreel/internal/textprep"
)

// Synthesizer narrates story text into a WAV file and measures its length.
type Synthesizer struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	piper    piper.Client
	notifier notifications.Service

	measureDuration func(ctx context.Context, binary, path string) (float64, error)
}

// NewSynthesizer constructs the synthesis stage handler using default dependencies.
func NewSynthesizer(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Synthesizer {
	client := piper.NewCLI(
		piper.WithBinary(cfg.Piper.Binary),
		piper.WithVoiceModel(cfg.Piper.VoiceModel),
		piper.WithCUDA(cfg.Piper.CUDAEnabled),
	)
	return NewSynthesizerWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewSynthesizerWithDependencies allows injecting collaborators (used in tests).
func NewSynthesizerWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client piper.Client, notifier notifications.Service) *Synthesizer {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "synthesizer"))
	}
	return &Synthesizer{
		store:           store,
		cfg:             cfg,
		logger:          stageLogger,
		piper:           client,
		notifier:        notifier,
		measureDuration: ffprobe.MeasureDuration,
	}
}

func (s *Synthesizer) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.SetProgress("Synthesizing", "Preparing narration", 0)
	item.ErrorMessage = ""
	logger.Info(
		"starting synthesis preparation",
		logging.String("story_path", strings.TrimSpace(item.StoryPath)),
	)
	return nil
}

func (s *Synthesizer) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	text, err := stage.ReadStoryText(item.StoryPath)
	if err != nil {
		return err
	}
	if s.cfg.TextPrep.Enabled {
		text = textprep.Clean(text)
	}

	audioPath := filepath.Join(s.cfg.Paths.WorkDir, fmt.Sprintf("narration_%d.wav", item.ID))
	if err := os.MkdirAll(s.cfg.Paths.WorkDir, 0o755); err != nil {
		return services.Wrap(
			services.ErrConfiguration, "synthesizing", "prepare work directory",
			"Cannot create the work directory; check paths.work_dir", err)
	}

	item.SetProgress("Synthesizing", "Running speech synthesis", 10)
	logger.Info(
		"synthesizing narration",
		logging.String("audio_file", audioPath),
		logging.Int("text_chars", len(text)),
	)

	synthCtx := ctx
	if s.cfg.Piper.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		synthCtx, cancel = context.WithTimeout(ctx, time.Duration(s.cfg.Piper.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	if err := s.piper.Synthesize(synthCtx, text, audioPath); err != nil {
		return services.Wrap(
			services.ErrExternalTool, "synthesizing", "piper",
			"Speech synthesis failed; check the piper binary and voice model", err)
	}

	seconds, err := s.measureDuration(ctx, s.cfg.FFprobeBinary(), audioPath)
	if err != nil {
		return services.Wrap(
			services.ErrExternalTool, "synthesizing", "measure narration",
			"Could not measure the synthesized narration; the WAV file may be corrupt", err)
	}

	item.AudioFile = audioPath
	item.AudioSeconds = seconds
	item.SetProgress("Synthesizing", fmt.Sprintf("Narration ready (%.1fs)", seconds), 100)
	logger.Info(
		"synthesis complete",
		logging.String("audio_file", audioPath),
		logging.Float64("audio_seconds", seconds),
	)

	if s.notifier != nil {
		if err := s.notifier.NotifySynthesisComplete(ctx, item.Title, seconds); err != nil {
			logger.Warn("synthesis notification failed", logging.Error(err))
		}
	}
	return nil
}

func (s *Synthesizer) HealthCheck(ctx context.Context) stage.Health {
	model := strings.TrimSpace(s.cfg.Piper.VoiceModel)
	if model == "" {
		return stage.Unhealthy("synthesizer", "piper.voice_model is not configured")
	}
	if _, err := os.Stat(model); err != nil {
		return stage.Unhealthy("synthesizer", fmt.Sprintf("voice model missing: %s", model))
	}
	return stage.Healthy("synthesizer")
}
