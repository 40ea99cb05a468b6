package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanpama/graphplan/internal/schema"
)

func newSDLCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sdl",
		Short: "Print the schema in SDL form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), schema.Render(s))
			return err
		},
	}
}
