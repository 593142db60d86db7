package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAndResolve(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"base_dir": "`+filepath.ToSlash(base)+`",
		"sprite_dir": "collab/sprite",
		"output_dir": "/tmp/analysis-out",
		"prefer_standard": false,
		"ignore_stored_grid_for": [],
		"workers": 3
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	cfg.Resolve(Flags{Workers: 5})

	assert.Equal(t, filepath.Join(base, "collab", "sprite"), cfg.SpriteDir)
	assert.Equal(t, filepath.Join(base, "offset_adjustments.json"), cfg.AdjustmentsFile)
	assert.Equal(t, "/tmp/analysis-out", cfg.OutputDir)
	assert.Equal(t, 5, cfg.Workers)
	assert.False(t, cfg.Standard())
	assert.Empty(t, cfg.IgnoreStoredGridFor)
	assert.Equal(t, []string{"Idle", "Walk"}, cfg.PrimaryAnimations)
	assert.Equal(t, 0.6, cfg.AnomalyGroundRatio)
	assert.Equal(t, 64, cfg.CacheSize)
}

func TestResolveDefaults(t *testing.T) {
	base := t.TempDir()
	var cfg Config
	cfg.Resolve(Flags{DataDir: base})

	assert.True(t, cfg.Standard())
	assert.Contains(t, cfg.IgnoreStoredGridFor, "Attack")
	assert.Contains(t, cfg.IgnoreStoredGridFor, "WalkDown")
	assert.Equal(t, filepath.Join(base, "sprite"), cfg.SpriteDir)
	assert.Equal(t, filepath.Join(base, "analysis"), cfg.OutputDir)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, 3.0, cfg.OutlierZ)
	assert.Equal(t, 2, cfg.PreviewScale)
}

func TestResolveGenericFlag(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{DataDir: t.TempDir(), Generic: true})
	assert.False(t, cfg.Standard())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
	_, err = Load(path)
	assert.Error(t, err)
}
