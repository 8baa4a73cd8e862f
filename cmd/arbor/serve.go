package main

import (
	"github.com/spf13/cobra"

	"github.com/arbor-lang/arbor/internal/rpc"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve editor sessions over JSON-RPC on stdin and stdout",
		Long: "Serve editor sessions over JSON-RPC on stdin and stdout.\n" +
			"\n" +
			"Messages are framed with a Content-Length header. Logs go to stderr.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := root.load()
			if err != nil {
				return err
			}
			s := rpc.NewServer(ws, rpc.WithLogger(root.logger), rpc.WithVersion(version))
			root.logger.Info("serving", "workspace", ws.Name)
			return s.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
