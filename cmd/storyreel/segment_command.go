package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
	"storyreel/internal/media/ffprobe"
	"storyreel/internal/services/ffmpeg"
	"storyreel/internal/timeline"
)

func newSegmentCommand(ctx *commandContext) *cobra.Command {
	var targetSeconds float64
	var minSeconds float64
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "segment <video-file>",
		Short: "Cut an existing video into fixed-length clips",
		Long: "Segment slices any video into consecutive clips using the same " +
			"plan the pipeline applies after rendering. Clips land in a " +
			"sibling directory named after the video; a trailing remainder " +
			"shorter than the minimum is dropped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			videoPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			if _, err := os.Stat(videoPath); err != nil {
				return fmt.Errorf("stat video: %w", err)
			}

			target := targetSeconds
			if target <= 0 {
				target = cfg.Segments.TargetSeconds
			}
			minimum := minSeconds
			if minimum <= 0 {
				minimum = cfg.Segments.MinSeconds
			}

			total, err := ffprobe.MeasureDuration(cmd.Context(), cfg.FFprobeBinary(), videoPath)
			if err != nil {
				return fmt.Errorf("measure duration: %w", err)
			}

			plan, err := timeline.BuildVideoSegments(total, target, minimum)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(plan) == 0 {
				fmt.Fprintf(out, "%s is shorter than the minimum clip length; nothing to cut\n", videoPath)
				return nil
			}

			if dryRun {
				rows := make([][]string, 0, len(plan))
				for _, segment := range plan {
					rows = append(rows, []string{
						strconv.Itoa(segment.Index),
						ffmpeg.SegmentPath(videoPath, segment.Index),
						formatSeconds(segment.Start),
						formatSeconds(segment.End),
					})
				}
				table := renderTable(
					[]string{"Clip", "Output", "Start", "End"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight, alignRight},
				)
				fmt.Fprintln(out, table)
				return nil
			}

			client := ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.FFmpegBinary()))
			result, err := ffmpeg.ExtractSegments(cmd.Context(), client, videoPath, plan)
			if err != nil {
				return err
			}

			for _, path := range result.Created {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			for _, failure := range result.Failures {
				fmt.Fprintf(out, "Clip %02d failed: %s\n", failure.Range.Index, failure.Reason)
			}
			fmt.Fprintf(out, "Extracted %d of %d clips into %s\n", len(result.Created), len(plan), result.Dir)
			if !result.Complete() {
				return errors.New("some clips failed to extract")
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&targetSeconds, "target", 0, "Clip length in seconds (default from config)")
	cmd.Flags().Float64Var(&minSeconds, "min", 0, "Minimum length for the trailing clip (default from config)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the clip plan without cutting anything")
	return cmd
}
