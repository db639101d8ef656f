// Package process runs the story pipeline as a long-lived foreground
// process with flock-based locking to prevent concurrent runs against the
// same queue database.
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/pipeline"
	"storyreel/internal/queue"
)

// Runner coordinates the pipeline manager and enforces single-instance
// execution.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *queue.Store
	manager  *pipeline.Manager
	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents runner diagnostics.
type Status struct {
	Running      bool
	Pipeline     pipeline.StatusSummary
	QueueDBPath  string
	LockFilePath string
}

// New constructs a runner with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, logger *slog.Logger, manager *pipeline.Manager) (*Runner, error) {
	if cfg == nil || store == nil || logger == nil || manager == nil {
		return nil, errors.New("runner requires config, store, logger, and pipeline manager")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "storyreel.lock")
	return &Runner{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start launches the pipeline manager and acquires the process lock.
func (r *Runner) Start(ctx context.Context) error {
	if r.running.Load() {
		return errors.New("process already running")
	}

	ok, err := r.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another storyreel process is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := r.manager.Start(runCtx); err != nil {
		_ = r.lock.Unlock()
		cancel()
		return fmt.Errorf("start pipeline: %w", err)
	}
	r.cancel = cancel

	r.running.Store(true)
	r.logger.Info("storyreel process started", logging.String("lock", r.lockPath))
	return nil
}

// Stop halts background processing and releases the process lock.
func (r *Runner) Stop() {
	if !r.running.Load() {
		return
	}

	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.manager.Stop()
	if err := r.lock.Unlock(); err != nil {
		r.logger.Warn("failed to release process lock", logging.Error(err))
	}
	r.running.Store(false)
	r.logger.Info("storyreel process stopped")
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	r.Stop()
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// Status reports the current runner and pipeline state.
func (r *Runner) Status(ctx context.Context) Status {
	return Status{
		Running:      r.running.Load(),
		Pipeline:     r.manager.Status(ctx),
		QueueDBPath:  r.store.Path(),
		LockFilePath: r.lockPath,
	}
}
