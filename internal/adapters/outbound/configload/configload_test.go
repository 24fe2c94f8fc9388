package configload_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/internal/adapters/outbound/configload"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".loam.yaml"), []byte(content), 0o644))
	return root
}

func TestLoad_MissingFileYieldsZeroConfig(t *testing.T) {
	cfg, err := configload.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.Zones)
	assert.Equal(t, ".loam", cfg.EffectiveSettings().OutputDir)
}

func TestLoad_EmptyFileYieldsZeroConfig(t *testing.T) {
	cfg, err := configload.New().Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Zones)
}

func TestLoad_FullDocument(t *testing.T) {
	root := writeConfig(t, `
zones:
  legacy:
    path: old/monolith
    language: csharp
  generated:
    path: gen
    exclude: true
layers:
  order: [domain, application, presentation]
  allowed:
    application: [domain]
    presentation: [application]
settings:
  parallelism: 2
  thresholds:
    detect: 0.4
`)
	cfg, err := configload.New().Load(root)
	require.NoError(t, err)

	require.Contains(t, cfg.Zones, "legacy")
	assert.Equal(t, "old/monolith", cfg.Zones["legacy"].Path)
	assert.True(t, cfg.Zones["generated"].Exclude)
	assert.Equal(t, []string{"domain", "application", "presentation"}, cfg.Layers.Order)
	assert.Equal(t, 2, cfg.EffectiveSettings().Parallelism)
	assert.InDelta(t, 0.4, cfg.EffectiveSettings().Thresholds.Detect, 0.001)
	// Unset thresholds still fall back to stock values.
	assert.InDelta(t, 0.7, cfg.EffectiveSettings().Thresholds.AutoApply, 0.001)
}

func TestLoad_MalformedYAMLIsFatal(t *testing.T) {
	_, err := configload.New().Load(writeConfig(t, "zones: [broken"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".loam.yaml")
}

func TestLoad_UnknownFieldsRejected(t *testing.T) {
	_, err := configload.New().Load(writeConfig(t, "zoness:\n  oops: {}\n"))
	assert.Error(t, err)
}

func TestLoad_InvalidDocumentRejected(t *testing.T) {
	// Manual zone without a path fails validation.
	_, err := configload.New().Load(writeConfig(t, "zones:\n  legacy: {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path is required")
}
