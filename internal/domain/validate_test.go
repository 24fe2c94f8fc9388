package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/domain"
)

func validProfile() *domain.CodebaseProfile {
	return &domain.CodebaseProfile{
		SchemaVersion: domain.SchemaVersion,
		GeneratedAt:   time.Now(),
		Zones: map[string]*domain.ZoneProfile{
			"gateway": {Language: "go", Path: "gateway", Detection: domain.DetectionAuto},
			"edge":    {Language: "python", Path: "edge", Detection: domain.DetectionAuto},
		},
	}
}

func TestValidateProfile_Valid(t *testing.T) {
	assert.NoError(t, domain.ValidateProfile(validProfile()))
}

func TestValidateProfile_MissingSchemaVersion(t *testing.T) {
	p := validProfile()
	p.SchemaVersion = ""
	err := domain.ValidateProfile(p)
	require.ErrorIs(t, err, domain.ErrInvalidProfile)
	assert.Contains(t, err.Error(), "schema_version")
}

func TestValidateProfile_ConfidenceOutOfRange(t *testing.T) {
	p := validProfile()
	p.Zones["gateway"].Patterns = map[string]domain.PatternDetection{
		"cqrs": {Pattern: "cqrs", Confidence: 1.2, Source: domain.SourceAutoDetected},
	}
	require.ErrorIs(t, domain.ValidateProfile(p), domain.ErrInvalidProfile)
}

func TestValidateProfile_UnknownPatternSource(t *testing.T) {
	p := validProfile()
	p.Zones["gateway"].Patterns = map[string]domain.PatternDetection{
		"cqrs": {Pattern: "cqrs", Confidence: 0.5, Source: "guessed"},
	}
	require.ErrorIs(t, domain.ValidateProfile(p), domain.ErrInvalidProfile)
}

func TestValidateProfile_ViolationWithoutLocations(t *testing.T) {
	p := validProfile()
	p.Zones["gateway"].Architecture.Violations = []domain.ArchitectureViolation{
		{FromLayer: "presentation", ToLayer: "domain", Severity: domain.SeverityMajor},
	}
	err := domain.ValidateProfile(p)
	require.ErrorIs(t, err, domain.ErrInvalidProfile)
	assert.Contains(t, err.Error(), "no source locations")
}

func TestValidateProfile_OverlappingZones(t *testing.T) {
	p := validProfile()
	p.Zones["nested"] = &domain.ZoneProfile{
		Language: "go", Path: "gateway/internal", Detection: domain.DetectionManual,
	}
	require.ErrorIs(t, domain.ValidateProfile(p), domain.ErrInvalidProfile)
}

func TestValidateProfile_InteractionMissingID(t *testing.T) {
	p := validProfile()
	p.Interactions = []domain.Interaction{{Type: domain.InteractionDockerCompose}}
	require.ErrorIs(t, domain.ValidateProfile(p), domain.ErrInvalidProfile)
}

func TestValidateProfile_CoverageOutOfRange(t *testing.T) {
	p := validProfile()
	p.Zones["edge"].Tests.CoverageEstimate = -0.1
	require.ErrorIs(t, domain.ValidateProfile(p), domain.ErrInvalidProfile)
}
