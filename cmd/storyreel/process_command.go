package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"storyreel/internal/logging"
	"storyreel/internal/pipeline"
	"storyreel/internal/process"
	"storyreel/internal/queue"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run the processing loop over the work queue",
		Long: "Process claims queued stories one at a time and walks each " +
			"through synthesis, rendering, and clip extraction, then keeps " +
			"watching the queue for new items. A lock file keeps a second " +
			"process from running against the same queue. " +
			"Stop with Ctrl-C; interrupted items roll back to their last " +
			"stable status and are picked up on the next run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}

			manager := pipeline.NewManager(cfg, store, logger)
			manager.ConfigureStages(pipeline.DefaultStages(cfg, store, logger))

			runner, err := process.New(cfg, store, logger, manager)
			if err != nil {
				_ = store.Close()
				return err
			}
			defer func() {
				if closeErr := runner.Close(); closeErr != nil {
					logger.Warn("shutdown cleanup failed", logging.Error(closeErr))
				}
			}()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := runner.Start(runCtx); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Processing queue (Ctrl-C to stop)")

			<-runCtx.Done()
			stop()
			fmt.Fprintln(out, "Stopping...")
			runner.Stop()

			status := runner.Status(cmd.Context())
			fmt.Fprintf(out, "Queue: %d completed, %d failed, %d awaiting review, %d pending\n",
				status.Pipeline.Queue.Completed,
				status.Pipeline.Queue.Failed,
				status.Pipeline.Queue.Review,
				status.Pipeline.Queue.Pending)
			return nil
		},
	}
}
