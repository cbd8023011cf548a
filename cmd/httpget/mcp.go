package main

import (
	"github.com/jongio/httpio/mcpserver"
	"github.com/spf13/cobra"
)

func newMCPCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the validate_url tool over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := mcpserver.New(a.info.Name, a.info.Version, mcpserver.WithPolicy(a.cfg.Policy()))
			log.Info("serving MCP on stdio")
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
