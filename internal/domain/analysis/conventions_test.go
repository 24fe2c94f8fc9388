package analysis_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/domain"
	"github.com/loamlabs/loam/internal/domain/analysis"
)

func TestInferConventions_InterfacePrefixMajority(t *testing.T) {
	// Eight I-prefixed interfaces against two plain PascalCase ones.
	var symbols []domain.Symbol
	for i := 0; i < 8; i++ {
		symbols = append(symbols, domain.Symbol{
			Name: fmt.Sprintf("IService%d", i), Kind: domain.KindInterface, Exported: true, Line: i + 1,
		})
	}
	symbols = append(symbols,
		domain.Symbol{Name: "OrderSink", Kind: domain.KindInterface, Exported: true, Line: 20},
		domain.Symbol{Name: "EventBus", Kind: domain.KindInterface, Exported: true, Line: 21},
	)

	src := &domain.ZoneSource{
		Zone:  domain.Zone{Name: "api", Path: "api", Language: "csharp"},
		Files: []*domain.SourceFile{{Path: "api/Contracts.cs", Language: "csharp", Symbols: symbols}},
	}

	out := analysis.InferConventions(src, domain.DefaultThresholds())
	cd := out[analysis.ConventionInterfaceNames]

	assert.Equal(t, analysis.ShapeIPrefixed, cd.Dominant)
	assert.InDelta(t, 0.8, cd.Consistency, 0.001)
	assert.Equal(t, 10, cd.SampleSize)

	require.Len(t, cd.Alternatives, 1)
	assert.Equal(t, analysis.ShapePascalCase, cd.Alternatives[0].Pattern)
	assert.InDelta(t, 0.2, cd.Alternatives[0].Frequency, 0.001)

	assert.Equal(t, []string{"EventBus", "OrderSink"}, cd.Exceptions)
}

func TestInferConventions_SnakeCaseFiles(t *testing.T) {
	src := &domain.ZoneSource{
		Zone: domain.Zone{Name: "edge", Path: "edge", Language: "python"},
		Files: []*domain.SourceFile{
			{Path: "edge/sensor_reader.py", Language: "python"},
			{Path: "edge/frame_publisher.py", Language: "python"},
			{Path: "edge/config.py", Language: "python"},
		},
	}

	out := analysis.InferConventions(src, domain.DefaultThresholds())
	cd := out[analysis.ConventionFileNames]

	assert.Equal(t, analysis.ShapeSnakeCase, cd.Dominant)
	assert.Equal(t, 3, cd.SampleSize)
}

func TestInferConventions_LowFrequencyAlternativesDropped(t *testing.T) {
	var files []*domain.SourceFile
	for i := 0; i < 19; i++ {
		files = append(files, &domain.SourceFile{Path: fmt.Sprintf("z/file_%02d.py", i)})
	}
	files = append(files, &domain.SourceFile{Path: "z/Outlier.py"})

	src := &domain.ZoneSource{Zone: domain.Zone{Name: "z", Path: "z"}, Files: files}

	out := analysis.InferConventions(src, domain.DefaultThresholds())
	cd := out[analysis.ConventionFileNames]

	assert.Equal(t, analysis.ShapeSnakeCase, cd.Dominant)
	// 1/20 = 5% is below the 10% reporting floor.
	assert.Empty(t, cd.Alternatives)
	assert.Equal(t, []string{"Outlier"}, cd.Exceptions)
}

func TestInferConventions_TestNamesFromTestFilesOnly(t *testing.T) {
	src := &domain.ZoneSource{
		Zone: domain.Zone{Name: "edge", Path: "edge", Language: "python"},
		Files: []*domain.SourceFile{
			{
				Path: "edge/tests/test_reader.py", Language: "python", IsTest: true,
				Symbols: []domain.Symbol{
					{Name: "test_reads_frame", Kind: domain.KindFunction, Exported: true, Line: 4},
					{Name: "test_rejects_bad_frame", Kind: domain.KindFunction, Exported: true, Line: 9},
				},
			},
			{
				Path: "edge/reader.py", Language: "python",
				Symbols: []domain.Symbol{
					{Name: "read_frame", Kind: domain.KindFunction, Exported: true, Line: 3},
				},
			},
		},
	}

	out := analysis.InferConventions(src, domain.DefaultThresholds())
	cd := out[analysis.ConventionTestNames]
	assert.Equal(t, 2, cd.SampleSize)
	assert.Equal(t, analysis.ShapeSnakeCase, cd.Dominant)
}

func TestInferConventions_EmptyCategoryHasNoDominant(t *testing.T) {
	src := &domain.ZoneSource{Zone: domain.Zone{Name: "empty", Path: "empty"}}
	out := analysis.InferConventions(src, domain.DefaultThresholds())

	cd := out[analysis.ConventionClassNames]
	assert.Equal(t, "", cd.Dominant)
	assert.Equal(t, 0, cd.SampleSize)
}

func TestClassifyShapeViaPrivateFields(t *testing.T) {
	src := &domain.ZoneSource{
		Zone: domain.Zone{Name: "api", Path: "api", Language: "csharp"},
		Files: []*domain.SourceFile{
			{
				Path: "api/Service.cs", Language: "csharp",
				Symbols: []domain.Symbol{
					{Name: "_mediator", Kind: domain.KindField, Exported: false, Line: 5},
					{Name: "_repository", Kind: domain.KindField, Exported: false, Line: 6},
					{Name: "count", Kind: domain.KindField, Exported: false, Line: 7},
				},
			},
		},
	}

	out := analysis.InferConventions(src, domain.DefaultThresholds())
	cd := out[analysis.ConventionPrivateFields]
	assert.Equal(t, analysis.ShapeUnderscored, cd.Dominant)
	assert.InDelta(t, 2.0/3.0, cd.Consistency, 0.001)
}
