package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func newResolveCmd(root *rootOptions) *cobra.Command {
	var (
		title    string
		artist   string
		live     bool
		acoustic bool
		studio   bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [request...]",
		Short: "Resolve a track request to a catalog position",
		Long: `Resolve a request such as "neil young's harvest" or "play a live version of
harvest by neil young". Use --title/--artist to skip free-text parsing.

Exits 1 when no suitable track is found; the resolution is printed either way.`,
		Example: `  trackfinder resolve play harvest by neil young
  trackfinder resolve --title harvest --artist "neil young" --live --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(strings.Join(args, " "))
			if raw != "" && title != "" {
				return errors.New("give either a free-text request or --title, not both")
			}
			if raw == "" && title == "" {
				return errors.New("a request or --title is required")
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
			ctx, cancel := context.WithTimeout(ctx, a.resolveTimeout())
			defer cancel()

			resolver := a.resolver(ctx)
			var res domain.Resolution
			if raw != "" {
				res, err = resolver.ResolveText(ctx, raw)
			} else {
				prefs := domain.Preferences{PreferLive: live, PreferAcoustic: acoustic, PreferStudio: studio}
				res, err = resolver.Resolve(ctx, domain.NewStructuredRequest(title, artist, prefs))
			}

			out := cmd.OutOrStdout()
			if root.jsonOutput {
				if jerr := writeJSON(out, res); jerr != nil {
					return jerr
				}
			} else {
				printResolution(out, res)
			}
			if err != nil {
				return &exitError{code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Track title (skips free-text parsing)")
	cmd.Flags().StringVar(&artist, "artist", "", "Artist name, used with --title")
	cmd.Flags().BoolVar(&live, "live", false, "Prefer a live recording (with --title)")
	cmd.Flags().BoolVar(&acoustic, "acoustic", false, "Prefer an acoustic recording (with --title)")
	cmd.Flags().BoolVar(&studio, "studio", false, "Prefer the studio recording (with --title)")
	return cmd
}
