package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/logging"
	"storyreel/internal/pipeline"
	"storyreel/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show queue counts and stage readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				manager := pipeline.NewManager(cfg, store, logging.NewNop())
				manager.ConfigureStages(pipeline.DefaultStages(cfg, store, logging.NewNop()))
				summary := manager.Status(cmd.Context())

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				lines := renderSectionHeader("Queue", colorize)
				lines = append(lines,
					renderStatusLine("Pending", queueCountKind(summary.Queue.Pending, statusInfo), fmt.Sprintf("%d", summary.Queue.Pending), colorize),
					renderStatusLine("Processing", queueCountKind(summary.Queue.Processing, statusInfo), fmt.Sprintf("%d", summary.Queue.Processing), colorize),
					renderStatusLine("Completed", statusOK, fmt.Sprintf("%d", summary.Queue.Completed), colorize),
					renderStatusLine("Review", queueCountKind(summary.Queue.Review, statusWarn), fmt.Sprintf("%d", summary.Queue.Review), colorize),
					renderStatusLine("Failed", queueCountKind(summary.Queue.Failed, statusError), fmt.Sprintf("%d", summary.Queue.Failed), colorize),
				)

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Stages", colorize)...)
				names := make([]string, 0, len(summary.StageHealth))
				for name := range summary.StageHealth {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					health := summary.StageHealth[name]
					if health.Ready {
						lines = append(lines, renderStatusLine(name, statusOK, "ready", colorize))
					} else {
						lines = append(lines, renderStatusLine(name, statusError, health.Detail, colorize))
					}
				}

				lines = append(lines, "")
				lines = append(lines, renderSectionHeader("Paths", colorize)...)
				lines = append(lines,
					renderStatusLine("Stories", statusInfo, cfg.Paths.StoriesDir, colorize),
					renderStatusLine("Backgrounds", statusInfo, cfg.Paths.BackgroundsDir, colorize),
					renderStatusLine("Output", statusInfo, cfg.Paths.OutputDir, colorize),
					renderStatusLine("Queue DB", statusInfo, store.Path(), colorize),
				)

				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}
}

// queueCountKind keeps zero counts neutral so an empty queue does not light
// up warning colors.
func queueCountKind(count int, nonZero statusKind) statusKind {
	if count == 0 {
		return statusInfo
	}
	return nonZero
}
