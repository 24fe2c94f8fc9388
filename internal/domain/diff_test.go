package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/domain"
)

func profileWith(zones map[string]*domain.ZoneProfile) *domain.CodebaseProfile {
	return &domain.CodebaseProfile{
		SchemaVersion: domain.SchemaVersion,
		GeneratedAt:   time.Now(),
		Zones:         zones,
	}
}

func TestDiffProfiles_NilPriorReportsAllAdded(t *testing.T) {
	current := profileWith(map[string]*domain.ZoneProfile{
		"edge": {Language: "python", Path: "edge", Detection: domain.DetectionAuto},
	})

	diff := domain.DiffProfiles(nil, current)
	require.Len(t, diff, 1)
	assert.Equal(t, domain.DiffAdded, diff[0].Kind)
	assert.Equal(t, "edge", diff[0].Zone)
}

func TestDiffProfiles_RemovedZone(t *testing.T) {
	prior := profileWith(map[string]*domain.ZoneProfile{
		"edge": {Language: "python", Path: "edge", Detection: domain.DetectionAuto},
		"web":  {Language: "typescript", Path: "web", Detection: domain.DetectionAuto},
	})
	current := profileWith(map[string]*domain.ZoneProfile{
		"edge": {Language: "python", Path: "edge", Detection: domain.DetectionAuto},
	})

	diff := domain.DiffProfiles(prior, current)
	require.Len(t, diff, 1)
	assert.Equal(t, domain.DiffRemoved, diff[0].Kind)
	assert.Equal(t, "web", diff[0].Zone)
}

func TestDiffProfiles_DominantConventionChanged(t *testing.T) {
	prior := profileWith(map[string]*domain.ZoneProfile{
		"edge": {
			Language: "python", Path: "edge", Detection: domain.DetectionAuto,
			Conventions: map[string]domain.ConventionDetection{
				"file_names": {Category: "file_names", Dominant: "snake_case"},
			},
		},
	})
	current := profileWith(map[string]*domain.ZoneProfile{
		"edge": {
			Language: "python", Path: "edge", Detection: domain.DetectionAuto,
			Conventions: map[string]domain.ConventionDetection{
				"file_names": {Category: "file_names", Dominant: "kebab-case"},
			},
		},
	})

	diff := domain.DiffProfiles(prior, current)
	require.Len(t, diff, 1)
	assert.Equal(t, domain.DiffChanged, diff[0].Kind)
	assert.Equal(t, "convention.file_names", diff[0].Field)
	assert.Equal(t, "snake_case", diff[0].Before)
	assert.Equal(t, "kebab-case", diff[0].After)
}

func TestDiffProfiles_ViolationCountChanged(t *testing.T) {
	prior := profileWith(map[string]*domain.ZoneProfile{
		"gateway": {Language: "go", Path: "gateway", Detection: domain.DetectionAuto},
	})
	current := profileWith(map[string]*domain.ZoneProfile{
		"gateway": {
			Language: "go", Path: "gateway", Detection: domain.DetectionAuto,
			Architecture: domain.ArchitectureReport{
				Violations: []domain.ArchitectureViolation{{
					FromLayer: "presentation", ToLayer: "domain",
					Severity:  domain.SeverityMajor,
					Locations: []domain.Location{{File: "gateway/presentation/handler.go", Line: 8}},
				}},
			},
		},
	})

	diff := domain.DiffProfiles(prior, current)
	require.Len(t, diff, 1)
	assert.Equal(t, "violations", diff[0].Field)
	assert.Equal(t, "0", diff[0].Before)
	assert.Equal(t, "1", diff[0].After)
}

func TestDiffProfiles_IdenticalProfilesAreQuiet(t *testing.T) {
	p := profileWith(map[string]*domain.ZoneProfile{
		"edge": {Language: "python", Path: "edge", Detection: domain.DetectionAuto, FileCount: 4},
	})
	assert.Empty(t, domain.DiffProfiles(p, p))
}
