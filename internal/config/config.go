package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/fileutil"
	"github.com/alnah/go-pdf2grid/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// MaxPathLength bounds path-like fields.
const MaxPathLength = 4096

// Output formats.
const (
	FormatHeatmap = "heatmap" // titled heat map (gonum/plot)
	FormatMask    = "mask"    // bare bitmap, one block per cell
)

// configDirName is the directory searched under os.UserConfigDir.
const configDirName = "go-pdf2grid"

// Config holds all configuration for grid generation.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Grid       GridConfig       `yaml:"grid"`
	Rasterizer RasterizerConfig `yaml:"rasterizer"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines visualization output options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = next to the PDF)
	Format     string `yaml:"format"`     // "heatmap" or "mask"
	CellSize   int    `yaml:"cellSize"`   // Mask pixels per cell side
	Invert     bool   `yaml:"invert"`     // Occupied cells light instead of dark
}

// GridConfig defines the discretization.
type GridConfig struct {
	Rows      int `yaml:"rows"`
	Cols      int `yaml:"cols"`
	Threshold int `yaml:"threshold"` // 0-255, pixels strictly below are ink
}

// RasterizerConfig defines how the first page is rendered.
type RasterizerConfig struct {
	Backend     string `yaml:"backend"`     // "poppler" or "mupdf"
	PopplerPath string `yaml:"popplerPath"` // Directory holding pdftoppm (empty = PATH)
	DPI         int    `yaml:"dpi"`
	Timeout     string `yaml:"timeout"` // Go duration, e.g. "30s"
}

// TimeoutDuration parses Timeout. Call Validate first.
func (r RasterizerConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// DefaultConfig returns the built-in defaults: a 108x192 grid at threshold
// 200, rendered by poppler at 200 DPI, exported as a heat map.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format:   FormatHeatmap,
			CellSize: pdf2grid.DefaultCellSize,
		},
		Grid: GridConfig{
			Rows:      pdf2grid.DefaultRows,
			Cols:      pdf2grid.DefaultCols,
			Threshold: pdf2grid.DefaultThreshold,
		},
		Rasterizer: RasterizerConfig{
			Backend: string(pdf2grid.DefaultBackend),
			DPI:     pdf2grid.DefaultDPI,
			Timeout: "30s",
		},
	}
}

// Validate checks every field.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"input.defaultDir", c.Input.DefaultDir},
		{"output.defaultDir", c.Output.DefaultDir},
		{"rasterizer.popplerPath", c.Rasterizer.PopplerPath},
	} {
		if err := validateFieldLength(f.name, f.value, MaxPathLength); err != nil {
			return err
		}
	}

	switch strings.ToLower(c.Output.Format) {
	case FormatHeatmap, FormatMask:
	default:
		return fmt.Errorf("%w: output.format %q (must be %s or %s)", ErrInvalidValue, c.Output.Format, FormatHeatmap, FormatMask)
	}
	if err := pdf2grid.ValidateCellSize(c.Output.CellSize); err != nil {
		return fmt.Errorf("output.cellSize: %w", err)
	}

	if err := (pdf2grid.GridShape{Rows: c.Grid.Rows, Cols: c.Grid.Cols}).Validate(); err != nil {
		return fmt.Errorf("grid: %w", err)
	}
	if err := pdf2grid.ValidateThreshold(c.Grid.Threshold); err != nil {
		return fmt.Errorf("grid.threshold: %w", err)
	}

	if _, err := pdf2grid.ParseBackend(c.Rasterizer.Backend); err != nil {
		return fmt.Errorf("rasterizer.backend: %w", err)
	}
	if err := pdf2grid.ValidateDPI(c.Rasterizer.DPI); err != nil {
		return fmt.Errorf("rasterizer.dpi: %w", err)
	}
	d, err := time.ParseDuration(c.Rasterizer.Timeout)
	if err != nil || d <= 0 {
		return fmt.Errorf("%w: rasterizer.timeout %q (must be a positive duration like 30s)", ErrInvalidValue, c.Rasterizer.Timeout)
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields missing from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists, in lookup order, the files LoadConfig tries for a
// config name: ./<name>.yaml, ./<name>.yml, then the same two names under
// <user config dir>/go-pdf2grid/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}

	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}

	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	triedPaths := SearchPaths(name)
	for _, p := range triedPaths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
