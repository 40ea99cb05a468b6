package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanpama/graphplan/internal/executor"
)

func newValidateCmd(a *app) *cobra.Command {
	var queryPath, operation string
	cmd := &cobra.Command{
		Use:     "validate",
		Short:   "Validate a query document against the schema",
		Example: "graphplan validate -s schema.graphql -q query.graphql",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query, err := readQuery(queryPath)
			if err != nil {
				return err
			}
			e, err := a.executor(cmd.Context(), executor.Options{})
			if err != nil {
				return err
			}
			p, err := e.Prepare(cmd.Context(), query, operation)
			if err != nil {
				return fmt.Errorf("syntax error: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, m := range p.Messages.All() {
				fmt.Fprintln(out, m.String())
			}
			if !p.IsSuccessful() {
				return fmt.Errorf("%s: %d errors", queryPath, len(p.Messages.Criticals()))
			}
			fmt.Fprintf(out, "%s: ok\n", queryPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "query document file")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "operation name")
	return cmd
}
