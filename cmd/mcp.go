package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/sharai/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:     "mcp",
	Aliases: []string{"serve"},
	Short:   "Start the MCP server for AI agent integration",
	Long:    `Starts a Model Context Protocol (MCP) server on stdio, exposing contract analysis and review tools to AI agents.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := commandContext(cmd)
		defer stop()

		// Stdout carries the protocol; toasts are printed to stderr.
		a, err := openApp(ctx, appOptions{restore: true})
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version
		srv := mcpserver.NewServer(a.sessions, a.log)

		sid := a.sessions.SessionID()
		if sid == "" {
			sid = "none"
		}
		fmt.Fprintf(os.Stderr, "sharai MCP server started on stdio (backend=%s, session=%s)\n", a.cfg.APIBaseURL, sid)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
