package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanpama/graphplan/internal/executor"
)

func newPlanCmd(a *app) *cobra.Command {
	var queryPath, operation string
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the compiled plan of an operation as JSON",
		Args:  cobra.NoArgs,
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
			if !p.IsSuccessful() {
				for _, m := range p.Messages.Criticals() {
					fmt.Fprintln(cmd.ErrOrStderr(), m.String())
				}
				return fmt.Errorf("%s: plan could not be generated", queryPath)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p.Outline())
		},
	}
	cmd.Flags().StringVarP(&queryPath, "query", "q", "", "query document file")
	cmd.Flags().StringVarP(&operation, "operation", "o", "", "operation name")
	return cmd
}
