package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

type queriesOutput struct {
	Request any      `json:"request"`
	Queries []string `json:"queries"`
}

func newQueriesCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "queries <request...>",
		Short: "Show how a request is parsed and which queries would be searched",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := strings.TrimSpace(strings.Join(args, " "))
			if raw == "" {
				return errors.New("request is empty")
			}

			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			req, queries, err := a.resolver(ctx).Plan(ctx, raw)
			if err != nil {
				return err
			}

			if root.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), queriesOutput{Request: req, Queries: queries})
			}
			printQueries(cmd.OutOrStdout(), req, queries)
			return nil
		},
	}
}
