package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/notifications"
	"storyreel/internal/queue"
	"storyreel/internal/services"
	"storyreel/internal/services/ffmpeg"
	"storyreel/internal/stage"
	"storyreel/internal/timeline"
)

// Segmenter cuts the rendered video into fixed-length clips for short-form
// platforms.
type Segmenter struct {
	store    *queue.Store
	cfg      *config.Config
	logger   *slog.Logger
	ffmpeg   ffmpeg.Client
	notifier notifications.Service

	measureDuration func(ctx context.Context, binary, path string) (float64, error)
}

// NewSegmenter constructs the segmenting stage handler using default dependencies.
func NewSegmenter(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Segmenter {
	client := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
	return NewSegmenterWithDependencies(cfg, store, logger, client, notifications.NewService(cfg))
}

// NewSegmenterWithDependencies allows injecting collaborators (used in tests).
func NewSegmenterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, client ffmpeg.Client, notifier notifications.Service) *Segmenter {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "segmenter"))
	}
	return &Segmenter{
		store:           store,
		cfg:             cfg,
		logger:          stageLogger,
		ffmpeg:          client,
		notifier:        notifier,
		measureDuration: ffprobe.MeasureDuration,
	}
}

func (s *Segmenter) Prepare(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)
	item.SetProgress("Segmenting", "Preparing clip extraction", 0)
	item.ErrorMessage = ""
	logger.Info(
		"starting segment preparation",
		logging.String("final_file", strings.TrimSpace(item.FinalFile)),
	)
	return nil
}

func (s *Segmenter) Execute(ctx context.Context, item *queue.Item) error {
	logger := logging.WithContext(ctx, s.logger)

	if !s.cfg.Segments.Enabled {
		item.SetProgress("Segmenting", "Segmenting disabled; skipping", 100)
		logger.Info("segmenting disabled, skipping")
		return nil
	}

	if item.FinalFile == "" {
		return services.Wrap(
			services.ErrValidation, "segmenting", "validate inputs",
			"No rendered video present; run rendering before segmenting", nil)
	}

	total := item.AudioSeconds
	if total <= 0 {
		measured, err := s.measureDuration(ctx, s.cfg.FFprobeBinary(), item.FinalFile)
		if err != nil {
			return services.Wrap(
				services.ErrExternalTool, "segmenting", "measure video",
				"Could not measure the rendered video duration", err)
		}
		total = measured
	}

	plan, err := timeline.BuildVideoSegments(total, s.cfg.Segments.TargetSeconds, s.cfg.Segments.MinSeconds)
	if err != nil {
		return services.Wrap(
			services.ErrConfiguration, "segmenting", "plan clips",
			"Segment configuration is invalid; check segments.target_seconds and segments.min_seconds", err)
	}
	if len(plan) == 0 {
		item.SetProgress("Segmenting", "Video shorter than the minimum clip length; no clips produced", 100)
		logger.Info("no clips planned", logging.Float64("total_seconds", total))
		return nil
	}

	item.SetProgress("Segmenting", fmt.Sprintf("Extracting %d clips", len(plan)), 10)
	logger.Info(
		"extracting clips",
		logging.Int("planned_clips", len(plan)),
		logging.Float64("total_seconds", total),
	)

	result, err := ffmpeg.ExtractSegments(ctx, s.ffmpeg, item.FinalFile, plan)
	if err != nil {
		return services.Wrap(
			services.ErrTransient, "segmenting", "extract clips",
			"Could not create the segments directory", err)
	}
	if len(result.Created) > 0 {
		item.SegmentsDir = result.Dir
	}

	if !result.Complete() {
		reasons := make([]string, 0, len(result.Failures))
		for _, failure := range result.Failures {
			reasons = append(reasons, fmt.Sprintf("clip %02d: %s", failure.Range.Index, failure.Reason))
		}
		item.SetReview(fmt.Sprintf("%d of %d clips failed: %s",
			len(result.Failures), len(plan), strings.Join(reasons, "; ")))
		item.SetProgress("Segmenting", fmt.Sprintf("Extracted %d of %d clips", len(result.Created), len(plan)), 100)
		logger.Warn(
			"clip extraction incomplete",
			logging.Int("created", len(result.Created)),
			logging.Int("failed", len(result.Failures)),
		)
	} else {
		item.SetProgress("Segmenting", fmt.Sprintf("Extracted %d clips", len(result.Created)), 100)
		logger.Info(
			"clip extraction complete",
			logging.Int("created", len(result.Created)),
			logging.String("segments_dir", result.Dir),
		)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifySegmentsComplete(ctx, item.Title, len(result.Created), len(result.Failures)); err != nil {
			logger.Warn("segment notification failed", logging.Error(err))
		}
	}
	return nil
}

func (s *Segmenter) HealthCheck(ctx context.Context) stage.Health {
	if !s.cfg.Segments.Enabled {
		return stage.Healthy("segmenter")
	}
	if s.cfg.Segments.TargetSeconds <= 0 || s.cfg.Segments.MinSeconds < 0 || s.cfg.Segments.MinSeconds > s.cfg.Segments.TargetSeconds {
		return stage.Unhealthy("segmenter", "invalid segment duration configuration")
	}
	return stage.Healthy("segmenter")
}
