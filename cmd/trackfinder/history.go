package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func newHistoryCmd(root *rootOptions) *cobra.Command {
	var (
		limit int
		id    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded resolutions",
		Long:  "Lists resolutions from the configured journal, newest first. Requires journal.driver to be sqlite or postgres.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.openJournal(ctx, false); err != nil {
				return err
			}
			if a.journalStore == nil {
				return errors.New("journal is disabled; set journal.driver in the config")
			}

			out := cmd.OutOrStdout()
			if id != "" {
				entry, err := a.journalStore.Get(ctx, id)
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("no resolution with id %q", id)
				}
				if err != nil {
					return err
				}
				if root.jsonOutput {
					return writeJSON(out, entry)
				}
				printEntry(out, entry)
				printResolution(out, entry.Resolution)
				return nil
			}

			entries, err := a.journalStore.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if root.jsonOutput {
				if entries == nil {
					entries = []domain.JournalEntry{}
				}
				return writeJSON(out, entries)
			}
			for _, e := range entries {
				printEntry(out, e)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().StringVar(&id, "id", "", "Show a single resolution")
	return cmd
}
