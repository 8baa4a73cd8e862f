package main

import (
	"github.com/spf13/cobra"

	"github.com/arbor-lang/arbor/internal/validate"
	"github.com/arbor-lang/arbor/internal/workspace"
)

func newDumpCmd(root *rootOptions) *cobra.Command {
	var repair bool
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every code tree of the workspace as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := root.load()
			if err != nil {
				return err
			}
			if repair {
				if _, err := validate.Run(cmd.Context(), ws.Env, ws.Programs, validate.WithLogger(root.logger)); err != nil {
					return err
				}
			}
			return workspace.DumpJSON(cmd.OutOrStdout(), ws.Env, ws.Programs)
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false,
		"Repair the trees before dumping them")
	return cmd
}
