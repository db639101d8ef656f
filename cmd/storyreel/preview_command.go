package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/textprep"
	"storyreel/internal/timeline"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var showCues bool

	cmd := &cobra.Command{
		Use:   "preview <story-file>",
		Short: "Estimate narration timing and clip plan without synthesizing",
		Long: "Preview reads a story from the library and reports an advisory " +
			"narration estimate, the caption cue count, and the clip plan that " +
			"extraction would produce at the estimated duration. The estimate " +
			"is words-per-minute based; the real timeline is rebuilt from the " +
			"measured audio during processing.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			text, err := lib.Read(args[0])
			if err != nil {
				return err
			}
			if cfg.TextPrep.Enabled {
				text = textprep.Clean(text)
			}

			estimated := timeline.EstimateDuration(text, cfg.Preview.WordsPerMinute)
			chunks := timeline.Split(text, cfg.Captions.MaxChunkChars)
			cues, err := timeline.BuildCaptionTimeline(text, estimated, timeline.CueConfig{
				MinCueSeconds: cfg.Captions.MinCueSeconds,
				MaxCueSeconds: cfg.Captions.MaxCueSeconds,
				MaxChunkChars: cfg.Captions.MaxChunkChars,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Story:              %s\n", args[0])
			fmt.Fprintf(out, "Estimated narration: %s (advisory, %.0f wpm)\n",
				formatSeconds(estimated), cfg.Preview.WordsPerMinute)
			fmt.Fprintf(out, "Caption chunks:     %d\n", len(chunks))
			fmt.Fprintf(out, "Caption cues:       %d\n", len(cues))

			if cfg.Segments.Enabled {
				plan, err := timeline.BuildVideoSegments(estimated, cfg.Segments.TargetSeconds, cfg.Segments.MinSeconds)
				if err != nil {
					return err
				}
				if len(plan) == 0 {
					fmt.Fprintln(out, "Clips:              none (shorter than the minimum clip length)")
				} else {
					fmt.Fprintf(out, "Clips:              %d\n", len(plan))
					rows := make([][]string, 0, len(plan))
					for _, segment := range plan {
						rows = append(rows, []string{
							strconv.Itoa(segment.Index),
							formatSeconds(segment.Start),
							formatSeconds(segment.End),
							formatSeconds(segment.Duration()),
						})
					}
					table := renderTable(
						[]string{"Clip", "Start", "End", "Length"},
						rows,
						[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
					)
					fmt.Fprintln(out, table)
				}
			}

			if showCues {
				fmt.Fprintln(out)
				for _, cue := range cues {
					fmt.Fprintf(out, "[%7.2fs - %7.2fs] %s\n", cue.Start, cue.End, cue.Chunk.Content)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showCues, "cues", false, "Print every caption cue with its time window")
	return cmd
}
