package commands

import (
	"context"

	"azdo-flow/internal/mcp"

	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCP(cmd.Context())
	},
}

func runMCP(ctx context.Context) error {
	catalog, err := newCatalog()
	if err != nil {
		return err
	}
	server, err := mcp.NewServer(catalog, cfg.QueryID, cfg.Workflow)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
