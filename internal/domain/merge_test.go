package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/domain"
)

func freshProfile() *domain.CodebaseProfile {
	return &domain.CodebaseProfile{
		SchemaVersion: domain.SchemaVersion,
		GeneratedAt:   time.Now(),
		Zones: map[string]*domain.ZoneProfile{
			"gateway": {
				Language:  "go",
				Path:      "gateway",
				Detection: domain.DetectionAuto,
				Patterns: map[string]domain.PatternDetection{
					"repository": {
						Pattern:    "repository",
						Detected:   true,
						Variant:    "interface-backed",
						Confidence: 0.82,
						Source:     domain.SourceAutoDetected,
					},
				},
				Conventions: map[string]domain.ConventionDetection{
					"file_names": {
						Category:    "file_names",
						Dominant:    "snake_case",
						Consistency: 0.95,
						Source:      domain.SourceAutoDetected,
					},
				},
			},
		},
	}
}

func TestMergeProfiles_NilPriorReturnsFresh(t *testing.T) {
	fresh := freshProfile()
	merged := domain.MergeProfiles(nil, fresh)
	assert.Same(t, fresh, merged)
}

func TestMergeProfiles_HumanCuratedPatternSurvives(t *testing.T) {
	curated := domain.PatternDetection{
		Pattern:    "repository",
		Detected:   true,
		Variant:    "concrete",
		Confidence: 1.0,
		Source:     domain.SourceHumanCurated,
	}
	prior := freshProfile()
	prior.Zones["gateway"].Patterns["repository"] = curated

	merged := domain.MergeProfiles(prior, freshProfile())

	require.Contains(t, merged.Zones, "gateway")
	got := merged.Zones["gateway"].Patterns["repository"]
	assert.Equal(t, curated, got, "curated detection must survive bit-for-bit")
}

func TestMergeProfiles_AutoDetectedPatternReplaced(t *testing.T) {
	prior := freshProfile()
	prior.Zones["gateway"].Patterns["repository"] = domain.PatternDetection{
		Pattern:    "repository",
		Detected:   false,
		Confidence: 0.1,
		Source:     domain.SourceAutoDetected,
	}

	merged := domain.MergeProfiles(prior, freshProfile())
	assert.InDelta(t, 0.82, merged.Zones["gateway"].Patterns["repository"].Confidence, 0.001)
}

func TestMergeProfiles_HumanCuratedConventionSurvives(t *testing.T) {
	curated := domain.ConventionDetection{
		Category:    "file_names",
		Dominant:    "kebab-case",
		Consistency: 1.0,
		Source:      domain.SourceHumanCurated,
	}
	prior := freshProfile()
	prior.Zones["gateway"].Conventions["file_names"] = curated

	merged := domain.MergeProfiles(prior, freshProfile())
	assert.Equal(t, curated, merged.Zones["gateway"].Conventions["file_names"])
}

func TestMergeProfiles_ConformanceCarriedFromPrior(t *testing.T) {
	prior := freshProfile()
	prior.Conformance = map[string]domain.ConformanceSummary{
		"gateway": {TotalViolations: 3, BySeverity: map[string]int{"major": 1, "minor": 2}},
	}

	merged := domain.MergeProfiles(prior, freshProfile())
	assert.Equal(t, prior.Conformance, merged.Conformance)
}

func TestMergeProfiles_PriorPurposeFillsEmptyFresh(t *testing.T) {
	prior := freshProfile()
	prior.Zones["gateway"].Purpose = "ingress routing"
	prior.Zones["gateway"].Contracts = []string{"no direct db access"}

	merged := domain.MergeProfiles(prior, freshProfile())
	assert.Equal(t, "ingress routing", merged.Zones["gateway"].Purpose)
	assert.Equal(t, []string{"no direct db access"}, merged.Zones["gateway"].Contracts)
}

func TestMergeProfiles_InputsNotMutated(t *testing.T) {
	prior := freshProfile()
	prior.Zones["gateway"].Patterns["repository"] = domain.PatternDetection{
		Pattern: "repository",
		Source:  domain.SourceHumanCurated,
		Variant: "concrete",
	}
	fresh := freshProfile()

	_ = domain.MergeProfiles(prior, fresh)

	assert.Equal(t, "interface-backed", fresh.Zones["gateway"].Patterns["repository"].Variant)
	assert.Equal(t, "concrete", prior.Zones["gateway"].Patterns["repository"].Variant)
}
