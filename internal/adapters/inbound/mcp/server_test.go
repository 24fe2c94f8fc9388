package mcp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/adapters/inbound/mcp"
)

func TestNewLoamMCPServer(t *testing.T) {
	s := mcp.NewLoamMCPServer(t.TempDir())
	require.NotNil(t, s)
}
