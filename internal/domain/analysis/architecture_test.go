package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/domain"
	"github.com/loamlabs/loam/internal/domain/analysis"
)

func gatewayZone() *domain.ZoneSource {
	mod := "example.com/gateway"
	return &domain.ZoneSource{
		Zone:    domain.Zone{Name: "gateway", Path: "gateway", Language: "go"},
		Project: &domain.ProjectInfo{Name: "gateway", Language: "go", ModulePath: mod},
		Files: []*domain.SourceFile{
			{Path: "gateway/domain/reading.go", Language: "go", Namespace: "domain"},
			{
				Path: "gateway/application/service.go", Language: "go", Namespace: "application",
				Imports: []domain.Import{{Path: mod + "/domain", Line: 4}},
			},
			{
				Path: "gateway/infrastructure/memory_repo.go", Language: "go", Namespace: "infrastructure",
				Imports: []domain.Import{{Path: mod + "/domain", Line: 5}},
			},
			{
				Path: "gateway/presentation/handler.go", Language: "go", Namespace: "presentation",
				Imports: []domain.Import{
					{Path: mod + "/application", Line: 6},
					{Path: mod + "/domain", Line: 7},
					{Path: "net/http", Line: 8},
				},
			},
		},
	}
}

func TestMapArchitecture_FlagsPresentationToDomain(t *testing.T) {
	report := analysis.MapArchitecture(gatewayZone(), domain.DefaultLayerRules())

	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, "presentation", v.FromLayer)
	assert.Equal(t, "domain", v.ToLayer)
	assert.Equal(t, "presentation", v.FromModule)
	assert.Equal(t, "domain", v.ToModule)
	assert.Equal(t, domain.SeverityMajor, v.Severity)

	require.Len(t, v.Locations, 1)
	assert.Equal(t, "gateway/presentation/handler.go", v.Locations[0].File)
	assert.Equal(t, 7, v.Locations[0].Line)
}

func TestMapArchitecture_AllowedEdgesNotFlagged(t *testing.T) {
	src := gatewayZone()
	// Drop the offending file; everything left obeys the onion table.
	src.Files = src.Files[:3]

	report := analysis.MapArchitecture(src, domain.DefaultLayerRules())
	assert.Empty(t, report.Violations)
	assert.Len(t, report.Modules, 3)
}

func TestMapArchitecture_ModulesSortedWithImports(t *testing.T) {
	report := analysis.MapArchitecture(gatewayZone(), domain.DefaultLayerRules())

	require.Len(t, report.Modules, 4)
	assert.Equal(t, "application", report.Modules[0].Path)
	assert.Equal(t, "domain", report.Modules[1].Path)
	assert.Equal(t, []string{"domain"}, report.Modules[0].Imports)
	assert.Equal(t, []string{"application", "domain"}, report.Modules[3].Imports)
}

func TestMapArchitecture_UnclassifiedModulesNeverPenalized(t *testing.T) {
	mod := "example.com/tool"
	src := &domain.ZoneSource{
		Zone:    domain.Zone{Name: "tool", Path: "tool", Language: "go"},
		Project: &domain.ProjectInfo{ModulePath: mod},
		Files: []*domain.SourceFile{
			{Path: "tool/domain/thing.go", Language: "go", Namespace: "domain"},
			{
				// "helpers" maps to no layer, so its edge into domain is fine.
				Path: "tool/helpers/util.go", Language: "go", Namespace: "helpers",
				Imports: []domain.Import{{Path: mod + "/domain", Line: 3}},
			},
		},
	}

	report := analysis.MapArchitecture(src, domain.DefaultLayerRules())
	assert.Empty(t, report.Violations)
}

func TestMapArchitecture_RelativeImportsResolve(t *testing.T) {
	src := &domain.ZoneSource{
		Zone: domain.Zone{Name: "web", Path: "web", Language: "typescript"},
		Files: []*domain.SourceFile{
			{Path: "web/src/models/reading.ts", Language: "typescript"},
			{
				Path: "web/src/views/list.ts", Language: "typescript",
				Imports: []domain.Import{{Path: "../models/reading", Line: 1}},
			},
		},
	}

	report := analysis.MapArchitecture(src, domain.DefaultLayerRules())
	require.Len(t, report.Modules, 2)
	var views domain.GraphModule
	for _, m := range report.Modules {
		if m.Path == "src/views" {
			views = m
		}
	}
	assert.Equal(t, []string{"src/models"}, views.Imports)
}

func TestMapArchitecture_NamespaceImportsResolve(t *testing.T) {
	src := &domain.ZoneSource{
		Zone: domain.Zone{Name: "api", Path: "services/api", Language: "csharp"},
		Files: []*domain.SourceFile{
			{Path: "services/api/Domain/Order.cs", Language: "csharp", Namespace: "Api.Domain"},
			{
				Path: "services/api/Controllers/OrdersController.cs", Language: "csharp",
				Namespace: "Api.Controllers",
				Imports:   []domain.Import{{Path: "Api.Domain.Orders", Line: 2}},
			},
		},
	}

	report := analysis.MapArchitecture(src, domain.DefaultLayerRules())
	// Longest declared namespace prefix wins: Api.Domain.Orders → Api.Domain.
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "presentation", report.Violations[0].FromLayer)
	assert.Equal(t, "domain", report.Violations[0].ToLayer)
}

func TestMapArchitecture_EmptyZone(t *testing.T) {
	src := &domain.ZoneSource{Zone: domain.Zone{Name: "empty", Path: "empty"}}
	report := analysis.MapArchitecture(src, domain.DefaultLayerRules())
	assert.Empty(t, report.Modules)
	assert.Empty(t, report.Violations)
}
