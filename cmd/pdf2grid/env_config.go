package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-pdf2grid/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath  string        // PDF2GRID_CONFIG: config file name or path
	Backend     string        // PDF2GRID_BACKEND: poppler or mupdf
	PopplerPath string        // PDF2GRID_POPPLER_PATH: directory holding pdftoppm
	DPI         int           // PDF2GRID_DPI: rasterization resolution
	Timeout     time.Duration // PDF2GRID_TIMEOUT: rasterization timeout
	Workers     int           // PDF2GRID_WORKERS: parallel workers
	InputDir    string        // PDF2GRID_INPUT_DIR: default input directory
	OutputDir   string        // PDF2GRID_OUTPUT_DIR: default output directory
}

// knownEnvVars lists valid PDF2GRID_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"PDF2GRID_CONFIG":       true,
	"PDF2GRID_BACKEND":      true,
	"PDF2GRID_POPPLER_PATH": true,
	"PDF2GRID_DPI":          true,
	"PDF2GRID_TIMEOUT":      true,
	"PDF2GRID_WORKERS":      true,
	"PDF2GRID_INPUT_DIR":    true,
	"PDF2GRID_OUTPUT_DIR":   true,
	"PDF2GRID_CONTAINER":    true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored, not errors.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("PDF2GRID_CONFIG"),
		Backend:     os.Getenv("PDF2GRID_BACKEND"),
		PopplerPath: os.Getenv("PDF2GRID_POPPLER_PATH"),
		InputDir:    os.Getenv("PDF2GRID_INPUT_DIR"),
		OutputDir:   os.Getenv("PDF2GRID_OUTPUT_DIR"),
	}

	if dpi := os.Getenv("PDF2GRID_DPI"); dpi != "" {
		if d, err := strconv.Atoi(dpi); err == nil && d > 0 {
			cfg.DPI = d
		}
	}

	if timeout := os.Getenv("PDF2GRID_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("PDF2GRID_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized PDF2GRID_* variables.
// Helps catch typos like PDF2GRID_POPLER_PATH.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "PDF2GRID_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overlays environment values on a loaded config.
// Env beats the YAML file; CLI flags are applied afterwards by mergeFlags,
// giving: CLI flags > env vars > config file > defaults.
// Workers is not part of Config and is resolved in resolveWorkers.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Backend != "" {
		cfg.Rasterizer.Backend = env.Backend
	}
	if env.PopplerPath != "" {
		cfg.Rasterizer.PopplerPath = env.PopplerPath
	}
	if env.DPI > 0 {
		cfg.Rasterizer.DPI = env.DPI
	}
	if env.Timeout > 0 {
		cfg.Rasterizer.Timeout = env.Timeout.String()
	}
	if env.InputDir != "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
}
