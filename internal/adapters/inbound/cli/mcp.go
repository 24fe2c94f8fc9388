package cli

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	mcpadapter "github.com/loamlabs/loam/internal/adapters/inbound/mcp"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands",
		Long:  "Commands for running the loam MCP (Model Context Protocol) server.",
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the loam MCP server (stdio)",
		Long:  "Start the loam MCP server using stdio transport. This lets AI coding assistants query zones, patterns, conventions, and the full codebase profile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if root == "" {
				root = "."
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			s := mcpadapter.NewLoamMCPServer(absRoot)
			return server.ServeStdio(s)
		},
	}

	cmd.Flags().StringVar(&root, "path", "", "Repository root (defaults to current working directory)")

	return cmd
}
