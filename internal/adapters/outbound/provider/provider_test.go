package provider_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/adapters/outbound/provider"
	"github.com/loamlabs/loam/internal/adapters/outbound/scanner"
	"github.com/loamlabs/loam/internal/domain"
)

const fixtureRoot = "../../../../testdata/polyglot"

func fixturePath(rel string) string {
	return filepath.Join(fixtureRoot, filepath.FromSlash(rel))
}

func fixtureTree(t *testing.T) *domain.RepoTree {
	t.Helper()
	tree, err := scanner.New().Scan(fixtureRoot)
	require.NoError(t, err)
	return tree
}

func findSymbol(t *testing.T, sf *domain.SourceFile, name string) domain.Symbol {
	t.Helper()
	for _, s := range sf.Symbols {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("symbol %s not found in %s", name, sf.Path)
	return domain.Symbol{}
}

func TestRegistry_AllLanguagesWired(t *testing.T) {
	r := provider.NewRegistry()
	assert.Equal(t, []string{"csharp", "go", "javascript", "python", "typescript"}, r.Languages())

	p, ok := r.For("go")
	require.True(t, ok)
	assert.Equal(t, "go", p.Language())

	_, ok = r.For("cobol")
	assert.False(t, ok)
}

func TestGoProvider_ParseFile(t *testing.T) {
	sf, err := provider.NewGoProvider().ParseFile(fixturePath("gateway/domain/reading.go"), "gateway/domain/reading.go")
	require.NoError(t, err)

	assert.Equal(t, "domain", sf.Namespace)
	assert.False(t, sf.IsTest)
	require.Len(t, sf.Imports, 1)
	assert.Equal(t, "errors", sf.Imports[0].Path)

	reading := findSymbol(t, sf, "Reading")
	assert.Equal(t, domain.KindStruct, reading.Kind)
	assert.True(t, reading.Exported)

	repo := findSymbol(t, sf, "ReadingRepository")
	assert.Equal(t, domain.KindInterface, repo.Kind)

	validate := findSymbol(t, sf, "Validate")
	assert.Equal(t, domain.KindFunction, validate.Kind)
	assert.Equal(t, "error", validate.Returns)
}

func TestGoProvider_TestFileAndMethods(t *testing.T) {
	sf, err := provider.NewGoProvider().ParseFile(fixturePath("gateway/presentation/handler.go"), "gateway/presentation/handler.go")
	require.NoError(t, err)

	get := findSymbol(t, sf, "Get")
	assert.Equal(t, domain.KindMethod, get.Kind)
	assert.Equal(t, "*ReadingHandler", get.Owner)

	test, err := provider.NewGoProvider().ParseFile(fixturePath("gateway/application/service_test.go"), "gateway/application/service_test.go")
	require.NoError(t, err)
	assert.True(t, test.IsTest)
}

func TestGoProvider_ProjectAndDependencies(t *testing.T) {
	tree := fixtureTree(t)
	zone := domain.Zone{Name: "gateway", Path: "gateway", Language: "go", Marker: "gateway/go.mod"}
	p := provider.NewGoProvider()

	info, err := p.DetectProject(tree, zone)
	require.NoError(t, err)
	assert.Equal(t, "gateway", info.Name)
	assert.Equal(t, "example.com/gateway", info.ModulePath)

	deps, err := p.Dependencies(tree, zone)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	assert.Equal(t, "github.com/go-chi/chi/v5", deps[0].Name)
	assert.Equal(t, "v5.0.12", deps[0].Version)
}

func TestPythonProvider_ParseFile(t *testing.T) {
	sf, err := provider.NewPythonProvider().ParseFile(fixturePath("edge/sensors/reader.py"), "edge/sensors/reader.py")
	require.NoError(t, err)

	assert.Equal(t, "edge.sensors.reader", sf.Namespace)

	var paths []string
	for _, imp := range sf.Imports {
		paths = append(paths, imp.Path)
	}
	assert.Contains(t, paths, "json")
	assert.Contains(t, paths, "schemas.telemetry")

	cls := findSymbol(t, sf, "SensorReader")
	assert.Equal(t, domain.KindClass, cls.Kind)

	read := findSymbol(t, sf, "read_frame")
	assert.Equal(t, domain.KindMethod, read.Kind)
	assert.Equal(t, "SensorReader", read.Owner)

	private := findSymbol(t, sf, "_read_raw")
	assert.False(t, private.Exported)

	fn := findSymbol(t, sf, "frame_is_valid")
	assert.Equal(t, domain.KindFunction, fn.Kind)
}

func TestPythonProvider_TestFileDetection(t *testing.T) {
	sf, err := provider.NewPythonProvider().ParseFile(fixturePath("edge/tests/test_reader.py"), "edge/tests/test_reader.py")
	require.NoError(t, err)
	assert.True(t, sf.IsTest)
}

func TestPythonProvider_ProjectAndDependencies(t *testing.T) {
	tree := fixtureTree(t)
	zone := domain.Zone{Name: "edge", Path: "edge", Language: "python", Marker: "edge/pyproject.toml"}
	p := provider.NewPythonProvider()

	info, err := p.DetectProject(tree, zone)
	require.NoError(t, err)
	assert.Equal(t, "edge", info.Name)

	deps, err := p.Dependencies(tree, zone)
	require.NoError(t, err)
	require.Len(t, deps, 3)
	assert.Equal(t, "pika", deps[0].Name)
	assert.Equal(t, ">=1.3", deps[0].Version)
}

func TestCSharpProvider_ParseFile(t *testing.T) {
	rel := "services/api/Api/Controllers/ReadingsController.cs"
	sf, err := provider.NewCSharpProvider().ParseFile(fixturePath(rel), rel)
	require.NoError(t, err)

	assert.Equal(t, "Api.Controllers", sf.Namespace)

	var paths []string
	for _, imp := range sf.Imports {
		paths = append(paths, imp.Path)
	}
	assert.Equal(t, []string{"MediatR", "Api.Domain"}, paths)

	cls := findSymbol(t, sf, "ReadingsController")
	assert.Equal(t, domain.KindClass, cls.Kind)
	assert.True(t, cls.Exported)

	mediator := findSymbol(t, sf, "_mediator")
	assert.Equal(t, domain.KindField, mediator.Kind)
	assert.Equal(t, "ReadingsController", mediator.Owner)

	ctor := findSymbol(t, sf, "ctor")
	assert.Equal(t, []string{"IMediator", "IReadingRepository"}, ctor.Params)

	get := findSymbol(t, sf, "Get")
	assert.Equal(t, "Task<Reading?>", get.Returns)
}

func TestCSharpProvider_InterfaceDeclaration(t *testing.T) {
	rel := "services/api/Api/Domain/Reading.cs"
	sf, err := provider.NewCSharpProvider().ParseFile(fixturePath(rel), rel)
	require.NoError(t, err)

	iface := findSymbol(t, sf, "IReadingRepository")
	assert.Equal(t, domain.KindInterface, iface.Kind)
	assert.True(t, iface.Exported)
}

func TestCSharpProvider_SolutionProject(t *testing.T) {
	tree := fixtureTree(t)
	zone := domain.Zone{Name: "api", Path: "services/api", Language: "csharp", Marker: "services/api/Api.sln"}
	p := provider.NewCSharpProvider()

	info, err := p.DetectProject(tree, zone)
	require.NoError(t, err)
	assert.Equal(t, "Api", info.Name)
	require.Len(t, info.SubProjects, 1)
	assert.Equal(t, "services/api/Api/Api.csproj", info.SubProjects[0].Path)

	deps, err := p.Dependencies(tree, zone)
	require.NoError(t, err)
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"MediatR", "xunit"}, names)
}

func TestTypeScriptProvider_ParseFile(t *testing.T) {
	sf, err := provider.NewTypeScriptProvider("typescript").ParseFile(fixturePath("web/src/readings.ts"), "web/src/readings.ts")
	require.NoError(t, err)

	require.NotEmpty(t, sf.Imports)
	assert.Equal(t, "../../schemas/telemetry.json", sf.Imports[0].Path)

	iface := findSymbol(t, sf, "Reading")
	assert.Equal(t, domain.KindInterface, iface.Kind)
	assert.True(t, iface.Exported)

	store := findSymbol(t, sf, "ReadingStore")
	assert.Equal(t, domain.KindClass, store.Kind)

	fn := findSymbol(t, sf, "validate")
	assert.Equal(t, domain.KindFunction, fn.Kind)
	assert.True(t, fn.Exported)
}

func TestTypeScriptProvider_TestCasesCounted(t *testing.T) {
	sf, err := provider.NewTypeScriptProvider("typescript").ParseFile(fixturePath("web/src/readings.test.ts"), "web/src/readings.test.ts")
	require.NoError(t, err)

	assert.True(t, sf.IsTest)
	assert.Equal(t, 2, sf.TestCases)
}

func TestTypeScriptProvider_ProjectAndDependencies(t *testing.T) {
	tree := fixtureTree(t)
	zone := domain.Zone{Name: "web", Path: "web", Language: "typescript", Marker: "web/package.json"}
	p := provider.NewTypeScriptProvider("typescript")

	info, err := p.DetectProject(tree, zone)
	require.NoError(t, err)
	assert.Equal(t, "web", info.Name)

	deps, err := p.Dependencies(tree, zone)
	require.NoError(t, err)
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"kafkajs", "react", "typescript", "vitest"}, names)
}

func TestGoProvider_ParseError(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.go")
	require.NoError(t, os.WriteFile(bad, []byte("package {{{"), 0o644))

	_, err := provider.NewGoProvider().ParseFile(bad, "bad.go")
	assert.Error(t, err)
}
