package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/loamlabs/loam/internal/adapters/outbound/compose"
	"github.com/loamlabs/loam/internal/adapters/outbound/configload"
	"github.com/loamlabs/loam/internal/adapters/outbound/gitinfo"
	"github.com/loamlabs/loam/internal/adapters/outbound/parsecache"
	"github.com/loamlabs/loam/internal/adapters/outbound/profilestore"
	"github.com/loamlabs/loam/internal/adapters/outbound/provider"
	"github.com/loamlabs/loam/internal/adapters/outbound/scanner"
	"github.com/loamlabs/loam/internal/adapters/outbound/zonedetect"
	"github.com/loamlabs/loam/internal/application"
	"github.com/loamlabs/loam/internal/domain"
)

// registerTools registers all loam MCP tools on the given server.
func registerTools(s *server.MCPServer, root string) {
	s.AddTool(
		mcplib.NewTool("loam_discover",
			mcplib.WithDescription("Run full discovery on the repository and return the codebase profile as JSON"),
			mcplib.WithBoolean("dry_run", mcplib.Description("Analyze without writing the profile to disk")),
		),
		handleDiscover(root),
	)

	s.AddTool(
		mcplib.NewTool("loam_get_profile",
			mcplib.WithDescription("Return the saved codebase profile, or run a dry discovery when none exists"),
		),
		handleGetProfile(root),
	)

	s.AddTool(
		mcplib.NewTool("loam_list_zones",
			mcplib.WithDescription("List the detected zones of the repository with language and origin"),
		),
		handleListZones(root),
	)

	s.AddTool(
		mcplib.NewTool("loam_get_zone",
			mcplib.WithDescription("Return the profile of a single zone: structure, patterns, conventions, architecture, tests"),
			mcplib.WithString("zone",
				mcplib.Required(),
				mcplib.Description("Name of the zone"),
			),
		),
		handleGetZone(root),
	)

	s.AddTool(
		mcplib.NewTool("loam_get_conventions",
			mcplib.WithDescription("Return the detected naming conventions per zone"),
		),
		handleGetConventions(root),
	)

	s.AddTool(
		mcplib.NewTool("loam_diff",
			mcplib.WithDescription("Re-analyze without persisting and return what changed against the saved profile"),
		),
		handleDiff(root),
	)
}

// newService wires the standard adapter set. The stdio transport owns stdout,
// so the logger is muted.
func newService() *application.DiscoveryService {
	logger := log.New(io.Discard)
	if os.Getenv("LOAM_MCP_DEBUG") != "" {
		logger = log.New(os.Stderr)
		logger.SetLevel(log.DebugLevel)
	}
	outputDir := os.Getenv("LOAM_OUTPUT_DIR")
	if outputDir == "" {
		outputDir = ".loam"
	}
	return application.NewDiscoveryService(
		scanner.New(),
		zonedetect.New(),
		provider.NewRegistry(),
		configload.New(),
		profilestore.New(outputDir),
		compose.New(),
		gitinfo.New(),
		parsecache.New(outputDir),
		logger,
	)
}

// loadOrDiscover returns the saved profile when present, otherwise the result
// of a dry discovery run.
func loadOrDiscover(ctx context.Context, root string) (*domain.CodebaseProfile, error) {
	outputDir := os.Getenv("LOAM_OUTPUT_DIR")
	store := profilestore.New(outputDir)
	if profile, err := store.Load(root); err == nil && profile != nil {
		return profile, nil
	}

	result, err := newService().Discover(ctx, application.Options{Root: root, DryRun: true})
	if err != nil {
		return nil, err
	}
	return result.Profile, nil
}

func handleDiscover(root string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		dryRun := request.GetBool("dry_run", false)
		result, err := newService().Discover(ctx, application.Options{Root: root, DryRun: dryRun})
		if err != nil {
			return errorResult(fmt.Sprintf("discovery failed: %v", err)), nil
		}
		return jsonResult(result.Profile)
	}
}

func handleGetProfile(root string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		profile, err := loadOrDiscover(ctx, root)
		if err != nil {
			return errorResult(fmt.Sprintf("loading profile failed: %v", err)), nil
		}
		return jsonResult(profile)
	}
}

func handleListZones(root string) server.ToolHandlerFunc {
	return func(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		zones, err := newService().Zones(root)
		if err != nil {
			return errorResult(fmt.Sprintf("zone detection failed: %v", err)), nil
		}
		return jsonResult(zones)
	}
}

func handleGetZone(root string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		name, err := request.RequireString("zone")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		profile, err := loadOrDiscover(ctx, root)
		if err != nil {
			return errorResult(fmt.Sprintf("loading profile failed: %v", err)), nil
		}
		zp, ok := profile.Zones[name]
		if !ok {
			return errorResult(fmt.Sprintf("zone %q not found", name)), nil
		}
		return jsonResult(zp)
	}
}

func handleGetConventions(root string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		profile, err := loadOrDiscover(ctx, root)
		if err != nil {
			return errorResult(fmt.Sprintf("loading profile failed: %v", err)), nil
		}

		conventions := make(map[string]map[string]domain.ConventionDetection, len(profile.Zones))
		for name, zp := range profile.Zones {
			if len(zp.Conventions) > 0 {
				conventions[name] = zp.Conventions
			}
		}
		return jsonResult(conventions)
	}
}

func handleDiff(root string) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		result, err := newService().Discover(ctx, application.Options{Root: root, DryRun: true})
		if err != nil {
			return errorResult(fmt.Sprintf("discovery failed: %v", err)), nil
		}
		if len(result.Diff) == 0 {
			return textResult("no changes since last saved profile"), nil
		}
		return jsonResult(result.Diff)
	}
}

func jsonResult(v interface{}) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// textResult returns a plain text content result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(text)},
	}
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
