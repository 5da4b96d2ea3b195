package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
	"github.com/ewilliams-labs/trackfinder/internal/core/parsing"
)

func newParseResultsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse-results",
		Short: "Parse a raw catalog listing from stdin",
		Long: `Reads catalog output ("N. Title-Artist-Album" per line) from stdin and prints
the candidates that could be parsed. Unparseable lines are dropped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}

			candidates := parsing.ParseResults(string(raw))
			if candidates == nil {
				candidates = []domain.SearchCandidate{}
			}

			out := cmd.OutOrStdout()
			if root.jsonOutput {
				return writeJSON(out, candidates)
			}
			for _, c := range candidates {
				labelColor.Fprintf(out, "%3d. ", c.Position)
				fmt.Fprintf(out, "%s | %s | %s\n", c.Title, c.Artist, c.Album)
			}
			return nil
		},
	}
}
