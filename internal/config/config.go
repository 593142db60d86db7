package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"sprite-offsets/internal/anim"
)

// Config holds all configurable paths and analysis settings.
type Config struct {
	// Paths
	BaseDir         string `json:"base_dir"`
	SpriteDir       string `json:"sprite_dir"`
	AdjustmentsFile string `json:"adjustments_file"`
	OutputDir       string `json:"output_dir"`

	// Detection
	PreferStandard      *bool    `json:"prefer_standard"`
	IgnoreStoredGridFor []string `json:"ignore_stored_grid_for"`
	OffsetRows          []int    `json:"offset_rows"`
	PrimaryAnimations   []string `json:"primary_animations"`

	// Anomaly thresholds
	AnomalyGroundRatio float64 `json:"anomaly_ground_ratio"`
	OutlierZ           float64 `json:"outlier_z"`

	// Runtime and output
	Workers      int `json:"workers"`
	CacheSize    int `json:"cache_size"`
	PreviewScale int `json:"preview_scale"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	DataDir     string
	SpriteDir   string
	Adjustments string
	OutputDir   string
	Workers     int
	Generic     bool // disable the standard-layout fast path
}

// Resolve fills in any empty fields with auto-detected defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.DataDir != "" {
		c.BaseDir = flags.DataDir
	}
	if flags.SpriteDir != "" {
		c.SpriteDir = flags.SpriteDir
	}
	if flags.Adjustments != "" {
		c.AdjustmentsFile = flags.Adjustments
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Generic {
		off := false
		c.PreferStandard = &off
	}

	// Auto-detect base dir if still empty
	if c.BaseDir == "" {
		c.BaseDir = detectBaseDir()
	}

	// Resolve relative paths against base dir
	if c.BaseDir != "" {
		c.SpriteDir = under(c.BaseDir, c.SpriteDir, "sprite")
		c.AdjustmentsFile = under(c.BaseDir, c.AdjustmentsFile, "offset_adjustments.json")
		c.OutputDir = under(c.BaseDir, c.OutputDir, "analysis")
	}

	// Defaults for analysis settings
	if c.PreferStandard == nil {
		on := true
		c.PreferStandard = &on
	}
	if c.IgnoreStoredGridFor == nil {
		for _, t := range anim.DefaultIgnoreStoredGrid {
			c.IgnoreStoredGridFor = append(c.IgnoreStoredGridFor, string(t))
		}
	}
	if len(c.PrimaryAnimations) == 0 {
		c.PrimaryAnimations = []string{string(anim.Idle), string(anim.Walk)}
	}
	if c.AnomalyGroundRatio <= 0 {
		c.AnomalyGroundRatio = 0.6
	}
	if c.OutlierZ <= 0 {
		c.OutlierZ = 3.0
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 64
	}
	if c.PreviewScale <= 0 {
		c.PreviewScale = 2
	}
}

// Standard reports whether the standard-layout fast path is enabled.
func (c *Config) Standard() bool {
	return c.PreferStandard == nil || *c.PreferStandard
}

func under(base, path, def string) string {
	switch {
	case path == "":
		return filepath.Join(base, def)
	case filepath.IsAbs(path):
		return path
	default:
		return filepath.Join(base, path)
	}
}

func detectBaseDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir), filepath.Join(dir, "..", "..")} {
			if _, err := os.Stat(filepath.Join(base, "sprite")); err == nil {
				return base
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, "sprite")); err == nil {
		return cwd
	}

	// Try parent of cwd
	parent := filepath.Dir(cwd)
	if _, err := os.Stat(filepath.Join(parent, "sprite")); err == nil {
		return parent
	}

	return ""
}
