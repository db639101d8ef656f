package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"storyreel/internal/textprep"
	"storyreel/internal/timeline"
)

func newTimelineCommand(ctx *commandContext) *cobra.Command {
	var totalSeconds float64

	cmd := &cobra.Command{
		Use:   "timeline <story-file>",
		Short: "Print the caption cue timeline for a story",
		Long: "Timeline splits a story into caption chunks and allocates each " +
			"one a display window across the given duration, exactly as the " +
			"render stage does. Pass --duration with the measured narration " +
			"length; without it the advisory words-per-minute estimate is used.",
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

			total := totalSeconds
			estimated := total <= 0
			if estimated {
				total = timeline.EstimateDuration(text, cfg.Preview.WordsPerMinute)
			}

			cues, err := timeline.BuildCaptionTimeline(text, total, timeline.CueConfig{
				MinCueSeconds: cfg.Captions.MinCueSeconds,
				MaxCueSeconds: cfg.Captions.MaxCueSeconds,
				MaxChunkChars: cfg.Captions.MaxChunkChars,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if estimated {
				fmt.Fprintf(out, "Duration: %s (estimated at %.0f wpm)\n", formatSeconds(total), cfg.Preview.WordsPerMinute)
			} else {
				fmt.Fprintf(out, "Duration: %s (measured)\n", formatSeconds(total))
			}
			if len(cues) == 0 {
				fmt.Fprintln(out, "No caption cues (story is empty)")
				return nil
			}

			rows := make([][]string, 0, len(cues))
			for i, cue := range cues {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%.2f", cue.Start),
					fmt.Sprintf("%.2f", cue.End),
					fmt.Sprintf("%.2f", cue.Duration()),
					cue.Chunk.Content,
				})
			}
			table := renderTable(
				[]string{"Cue", "Start", "End", "Length", "Text"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
			)
			fmt.Fprintln(out, table)
			return nil
		},
	}

	cmd.Flags().Float64Var(&totalSeconds, "duration", 0, "Measured narration duration in seconds")
	return cmd
}
