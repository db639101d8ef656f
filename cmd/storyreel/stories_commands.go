package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"storyreel/internal/config"
)

func newStoriesCommand(ctx *commandContext) *cobra.Command {
	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "Manage the story library",
	}

	storiesCmd.AddCommand(newStoriesListCommand(ctx))
	storiesCmd.AddCommand(newStoriesShowCommand(ctx))
	storiesCmd.AddCommand(newStoriesCreateCommand(ctx))
	storiesCmd.AddCommand(newStoriesStatsCommand(ctx))

	return storiesCmd
}

func newStoriesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			entries, err := lib.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No stories found in %s\n", lib.Dir())
				fmt.Fprintln(cmd.OutOrStdout(), "Add .txt files or run `storyreel stories create` to get started.")
				return nil
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(entries))
			for _, story := range entries {
				rows = append(rows, []string{
					story.Name,
					story.Title,
					story.Preview,
					strconv.Itoa(story.WordCount),
					formatSeconds(story.EstimatedSeconds(cfg.Preview.WordsPerMinute)),
				})
			}
			tableText := renderTable(
				[]string{"File", "Title", "Preview", "Words", "Est. Narration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			)
			fmt.Fprintln(cmd.OutOrStdout(), tableText)
			return nil
		},
	}
}

func newStoriesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <story-file>",
		Short: "Print the full text of a story",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			text, err := lib.Read(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newStoriesCreateCommand(ctx *commandContext) *cobra.Command {
	var fromFile string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new story file from a file or stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}

			var content []byte
			if fromFile != "" {
				expanded, err := config.ExpandPath(fromFile)
				if err != nil {
					return err
				}
				content, err = os.ReadFile(expanded)
				if err != nil {
					return fmt.Errorf("read source file: %w", err)
				}
			} else {
				content, err = io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
			}
			if strings.TrimSpace(string(content)) == "" {
				return errors.New("story text is empty; provide --from or pipe text on stdin")
			}

			path, err := lib.Create(args[0], string(content), overwrite)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "from", "", "Read story text from a file instead of stdin")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing story with the same name")
	return cmd
}

func newStoriesStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library()
			if err != nil {
				return err
			}
			stats, err := lib.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stories:    %d\n", stats.Files)
			fmt.Fprintf(out, "Words:      %d\n", stats.TotalWords)
			fmt.Fprintf(out, "Characters: %d\n", stats.TotalChars)
			return nil
		},
	}
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds) / 60
	remainder := int(seconds) % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", remainder)
	}
	return fmt.Sprintf("%dm%02ds", minutes, remainder)
}
