package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyreel/internal/logging"
	"storyreel/internal/queue"
	"storyreel/internal/services"
)

// Start begins background processing. Items interrupted by a previous run
// are rolled back to their last stable status before polling starts.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("pipeline already running")
	}
	if len(m.statusOrder) == 0 {
		m.mu.Unlock()
		return errors.New("pipeline stages not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	if reset, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.logger.Warn("failed to reset interrupted items", logging.Error(err))
	} else if reset > 0 {
		m.logger.Info("rolled back interrupted items", logging.Int64("count", reset))
	}

	go m.run(runCtx)
	return nil
}

// Stop terminates background processing and waits for completion.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) run(ctx context.Context) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, err := m.store.NextForStatuses(ctx, m.statusOrder...)
		if err != nil {
			m.setLastError(err)
			m.logger.Error("failed to fetch next queue item", logging.Error(err))
			m.waitForItemOrShutdown(ctx)
			continue
		}
		if item == nil {
			m.checkQueueCompletion(ctx)
			m.waitForItemOrShutdown(ctx)
			continue
		}

		if err := m.processItem(ctx, item); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) waitForItemOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item) error {
	stg, ok := m.stageForStatus(item.Status)
	if !ok {
		m.logger.Warn("no stage configured for status", logging.String("status", string(item.Status)))
		m.waitForItemOrShutdown(ctx)
		return nil
	}

	requestID := uuid.NewString()
	stageCtx := services.WithRequestID(services.WithStage(services.WithItemID(ctx, item.ID), stg.name), requestID)
	stageLogger := logging.WithContext(stageCtx, m.logger)

	if err := m.transitionToProcessing(stageCtx, stg, item); err != nil {
		stageLogger.Error("failed to transition item to processing", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, stg, item)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, item *queue.Item) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String("title", strings.TrimSpace(item.Title)),
		logging.String("story_path", strings.TrimSpace(item.StoryPath)),
	)

	if stg.handler == nil {
		stageLogger.Warn("missing stage handler", logging.String("stage", stg.name))
		item.SetFailed(fmt.Sprintf("stage %s missing handler", stg.name))
		if err := m.store.Update(ctx, item); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		err := errors.New("stage handler unavailable")
		m.setLastError(err)
		return err
	}

	if err := stg.handler.Prepare(ctx, item); err != nil {
		m.handleStageFailure(ctx, stg.name, item, err)
		return err
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}

	if err := stg.handler.Execute(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return err
		}
		m.handleStageFailure(ctx, stg.name, item, err)
		return err
	}

	if item.Status == stg.processingStatus || item.Status == "" {
		item.Status = stg.doneStatus
	}
	if err := m.store.Update(ctx, item); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	stageLogger.Info(
		"stage completed",
		logging.String("next_status", string(item.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastItem(item)
	m.noteStageOutcome(item.Status)
	return nil
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, item *queue.Item) error {
	item.Status = stg.processingStatus
	item.ErrorMessage = ""
	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	m.setLastItem(item)
	m.noteQueueStarted(ctx)
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	stageLogger := logging.WithContext(ctx, m.logger)

	message := strings.TrimSpace(stageErr.Error())
	if message == "" {
		message = fmt.Sprintf("%s failed", stageName)
	}

	resolved := services.FailureStatus(stageErr)
	if resolved == queue.StatusReview {
		item.SetReview(message)
	} else {
		item.SetFailed(message)
	}

	stageLogger.Error(
		"stage failed",
		logging.String("resolved_status", string(resolved)),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, item); err != nil {
		if errors.Is(err, context.Canceled) {
			stageLogger.Debug("shutting down, could not persist stage failure")
		} else {
			stageLogger.Error("failed to persist stage failure", logging.Error(err))
		}
	}

	m.setLastError(stageErr)
	m.setLastItem(item)
	m.noteStageOutcome(item.Status)

	if m.notifier != nil {
		if err := m.notifier.NotifyError(ctx, stageErr, stageName); err != nil {
			stageLogger.Warn("error notification failed", logging.Error(err))
		}
	}
}

// noteQueueStarted opens a queue session the first time work begins after
// an idle period, so completion can be reported once for the whole batch.
func (m *Manager) noteQueueStarted(ctx context.Context) {
	m.mu.Lock()
	alreadyActive := m.queueActive
	if !alreadyActive {
		m.queueActive = true
		m.queueStart = time.Now()
		m.processed = 0
		m.failed = 0
	}
	m.mu.Unlock()
	if alreadyActive || m.notifier == nil {
		return
	}

	summary, err := m.store.Summary(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue summary", logging.Error(err))
		return
	}
	if err := m.notifier.NotifyQueueStarted(ctx, summary.Pending+summary.Processing); err != nil {
		m.logger.Warn("queue start notification failed", logging.Error(err))
	}
}

func (m *Manager) noteStageOutcome(status queue.Status) {
	m.mu.Lock()
	switch status {
	case queue.StatusCompleted:
		m.processed++
	case queue.StatusFailed, queue.StatusReview:
		m.failed++
	}
	m.mu.Unlock()
}

// checkQueueCompletion closes the queue session once nothing actionable
// remains and reports the batch outcome.
func (m *Manager) checkQueueCompletion(ctx context.Context) {
	m.mu.RLock()
	active := m.queueActive
	m.mu.RUnlock()
	if !active {
		return
	}

	summary, err := m.store.Summary(ctx)
	if err != nil {
		m.logger.Warn("failed to read queue summary", logging.Error(err))
		return
	}
	if summary.Pending > 0 || summary.Processing > 0 {
		return
	}

	m.mu.Lock()
	processed := m.processed
	failed := m.failed
	duration := time.Since(m.queueStart)
	m.queueActive = false
	m.mu.Unlock()

	m.logger.Info(
		"queue drained",
		logging.Int("processed", processed),
		logging.Int("failed", failed),
		logging.Duration("duration", duration),
	)
	if m.notifier != nil {
		if err := m.notifier.NotifyQueueCompleted(ctx, processed, failed, duration); err != nil {
			m.logger.Warn("queue completion notification failed", logging.Error(err))
		}
	}
}
