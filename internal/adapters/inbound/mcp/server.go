package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// NewLoamMCPServer creates an MCP server with all loam tools registered.
// The root is the repository to analyze.
func NewLoamMCPServer(root string) *server.MCPServer {
	s := server.NewMCPServer(
		"loam",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	registerTools(s, root)

	return s
}
