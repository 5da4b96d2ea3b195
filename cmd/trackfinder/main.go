// Command trackfinder resolves free-text track requests against a music
// catalog, from the command line or over HTTP.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "trackfinder",
		Short:         "Resolve track requests against a music catalog",
		Long:          "trackfinder turns requests like \"play a live version of harvest by neil young\" into one position of a catalog search result.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (default: $TRACKFINDER_CONFIG or $XDG_CONFIG_HOME/trackfinder/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print machine-readable JSON")

	cmd.AddCommand(
		newResolveCmd(opts),
		newQueriesCmd(opts),
		newParseResultsCmd(opts),
		newServeCmd(opts),
		newHistoryCmd(opts),
	)
	return cmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
