package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/config"
	"github.com/alnah/go-pdf2grid/internal/fileutil"
	"github.com/alnah/go-pdf2grid/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput = errors.New("no input specified")
	ErrNoPDFs  = errors.New("no PDF files found")
)

// batchError reports failed conversions after they were printed.
// It unwraps to the first failure so the exit code reflects its cause.
type batchError struct {
	failed int
	total  int
	first  error
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d of %d conversion(s) failed", e.failed, e.total)
}

func (e *batchError) Unwrap() error { return e.first }

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	// Validate worker count early
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w%s", err, configHint(err, flags.common.config, envCfg.ConfigPath))
	}

	// CLI flags > env vars > config file > defaults
	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	workers, err := resolveWorkers(flags.workers, envCfg.Workers)
	if err != nil {
		return err
	}

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return err
	}
	outputDir := resolveOutputDir(flags.output, cfg)

	files, err := discoverFiles(inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", ErrNoPDFs, inputPath)
	}

	poolSize := min(workers, len(files))
	opts, err := buildConverterOptions(cfg)
	if err != nil {
		return err
	}
	if len(files) == 1 {
		// A lone file gets the worker budget for its cells instead.
		opts = append(opts, pdf2grid.WithWorkers(workers))
	}
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Pool size: %d\n", poolSize)
	}

	pool, err := env.NewPool(poolSize, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = pool.Close() }()

	params := &conversionParams{
		shape:     pdf2grid.GridShape{Rows: cfg.Grid.Rows, Cols: cfg.Grid.Cols},
		threshold: cfg.Grid.Threshold,
		noExport:  flags.export.disabled,
	}

	results := convertBatch(ctx, pool, files, params)

	failed := printResultsWithWriter(results, printOptions{
		quiet:       flags.common.quiet,
		verbose:     flags.common.verbose,
		previewRows: flags.previewRows,
		format:      cfg.Output.Format,
	}, env)
	if failed > 0 {
		return &batchError{failed: failed, total: len(results), first: firstError(results)}
	}

	return nil
}

// loadConfig loads the named config, falling back to the PDF2GRID_CONFIG
// value, or returns the defaults when neither is set.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}
	return config.LoadConfig(name)
}

// configHint suggests where to put a config that could not be found.
func configHint(err error, flagName, envName string) string {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return ""
	}
	name := flagName
	if name == "" {
		name = envName
	}
	if fileutil.IsFilePath(name) {
		return hints.ForConfigNotFound(nil)
	}
	return hints.ForConfigNotFound(config.SearchPaths(name))
}

// mergeFlags merges CLI flags into config. CLI values override config values.
// Numeric flags apply whenever given, so an explicit invalid value is
// reported instead of silently replaced by a default.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	changed := flags.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	// Grid flags
	if changed("rows") {
		cfg.Grid.Rows = flags.grid.rows
	}
	if changed("cols") {
		cfg.Grid.Cols = flags.grid.cols
	}
	if changed("threshold") {
		cfg.Grid.Threshold = flags.grid.threshold
	}

	// Rasterizer flags
	if flags.raster.backend != "" {
		cfg.Rasterizer.Backend = flags.raster.backend
	}
	if flags.raster.popplerPath != "" {
		cfg.Rasterizer.PopplerPath = flags.raster.popplerPath
	}
	if changed("dpi") {
		cfg.Rasterizer.DPI = flags.raster.dpi
	}
	if flags.raster.timeout != "" {
		cfg.Rasterizer.Timeout = flags.raster.timeout
	}

	// Export flags
	if flags.export.format != "" {
		cfg.Output.Format = flags.export.format
	}
	if changed("cell-size") {
		cfg.Output.CellSize = flags.export.cellSize
	}
	if changed("invert") {
		cfg.Output.Invert = flags.export.invert
	}
}

// resolveWorkers picks the pool size: flag, then PDF2GRID_WORKERS, then auto.
func resolveWorkers(flagWorkers, envWorkers int) (int, error) {
	n := flagWorkers
	if n == 0 {
		if err := validateWorkers(envWorkers); err != nil {
			return 0, fmt.Errorf("PDF2GRID_WORKERS: %w", err)
		}
		n = envWorkers
	}
	return pdf2grid.ResolvePoolSize(n), nil
}

// resolveInputPath determines the input path from args or config.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Input.DefaultDir != "" {
		return cfg.Input.DefaultDir, nil
	}
	return "", ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// buildConverterOptions translates a validated config into converter options.
func buildConverterOptions(cfg *config.Config) ([]pdf2grid.Option, error) {
	backend, err := pdf2grid.ParseBackend(cfg.Rasterizer.Backend)
	if err != nil {
		return nil, err
	}

	opts := []pdf2grid.Option{
		pdf2grid.WithBackend(backend),
		pdf2grid.WithPopplerPath(cfg.Rasterizer.PopplerPath),
		pdf2grid.WithDPI(cfg.Rasterizer.DPI),
		pdf2grid.WithExporter(buildExporter(cfg.Output)),
	}
	if d := cfg.Rasterizer.TimeoutDuration(); d > 0 {
		opts = append(opts, pdf2grid.WithTimeout(d))
	}
	return opts, nil
}

// buildExporter creates the exporter selected by output.format.
func buildExporter(out config.OutputConfig) pdf2grid.Exporter {
	polarity := pdf2grid.PolarityDarkOccupied
	if out.Invert {
		polarity = pdf2grid.PolarityLightOccupied
	}

	if strings.EqualFold(out.Format, config.FormatMask) {
		e := pdf2grid.NewMaskExporter(out.CellSize)
		e.Polarity = polarity
		return e
	}

	e := pdf2grid.NewHeatmapExporter()
	e.Polarity = polarity
	return e
}

// firstError returns the first failure in input order.
func firstError(results []ConversionResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
