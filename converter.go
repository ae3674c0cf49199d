package pdf2grid

import (
	"context"
	"fmt"
	"image"
	"io"
	"time"
)

// Compile-time interface implementation checks.
var (
	_ Rasterizer    = (*PopplerRasterizer)(nil)
	_ Rasterizer    = (*MuPDFRasterizer)(nil)
	_ CommandRunner = (*ExecRunner)(nil)
)

// Stage identifies a step of the conversion pipeline.
type Stage string

// Pipeline stages, in execution order.
const (
	StageRasterize  Stage = "rasterize"
	StageDiscretize Stage = "discretize"
	StageExport     Stage = "export"
)

// StageEvent reports the outcome of one pipeline stage.
type StageEvent struct {
	Stage    Stage
	Duration time.Duration
	Err      error
}

// Observer receives stage events. It is called synchronously from Convert.
type Observer func(StageEvent)

// Converter runs the PDF-to-grid pipeline: rasterize the first page,
// discretize it, then optionally export a visualization.
// Create with NewConverter, use Convert for conversion, and Close when done.
// A Converter is safe for sequential reuse; use a ConverterPool for parallel work.
type Converter struct {
	cfg        converterConfig
	rasterizer Rasterizer
	exporter   Exporter
	now        func() time.Time
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithBackend, WithDPI, WithExporter).
// Returns error if an option value is invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout: defaultTimeout,
			backend: DefaultBackend,
			dpi:     DefaultDPI,
		},
		now: time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cfg.workers < 0 {
		return nil, fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkers, c.cfg.workers)
	}

	if c.rasterizer == nil {
		r, err := NewRasterizer(RasterizerConfig{
			Backend:     c.cfg.backend,
			PopplerPath: c.cfg.popplerPath,
			DPI:         c.cfg.dpi,
		})
		if err != nil {
			return nil, err
		}
		c.rasterizer = r
	}

	if c.exporter == nil {
		c.exporter = NewHeatmapExporter()
	}

	return c, nil
}

// Convert runs the pipeline on input and returns the grid with stage timings.
// The context is used for cancellation; rasterization is additionally
// bounded by the configured timeout. Export is skipped when
// input.OutputPath is empty. No partial result is returned on error.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	var timings Timings

	// Rasterize
	img, d, err := c.rasterize(ctx, input.PDFPath)
	timings.Rasterize = d
	c.notify(StageRasterize, d, err)
	if err != nil {
		return nil, fmt.Errorf("rasterizing: %w", err)
	}

	// Discretize
	start := c.now()
	grid, err := DiscretizeWith(img, input.Shape.Rows, input.Shape.Cols, input.threshold(),
		DiscretizeOptions{Workers: c.cfg.workers})
	timings.Discretize = c.now().Sub(start)
	c.notify(StageDiscretize, timings.Discretize, err)
	if err != nil {
		return nil, fmt.Errorf("discretizing: %w", err)
	}

	b := img.Bounds()
	res := &ConvertResult{
		Grid:        grid,
		ImageWidth:  b.Dx(),
		ImageHeight: b.Dy(),
	}

	// Export (optional)
	if input.OutputPath != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start = c.now()
		err = c.exporter.Export(grid, input.OutputPath)
		timings.Export = c.now().Sub(start)
		c.notify(StageExport, timings.Export, err)
		if err != nil {
			return nil, fmt.Errorf("exporting: %w", err)
		}
		res.OutputPath = input.OutputPath
	}

	res.Timings = timings
	return res, nil
}

func (c *Converter) rasterize(ctx context.Context, path string) (image.Image, time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	start := c.now()
	img, err := c.rasterizer.RasterizeFirstPage(ctx, path)
	return img, c.now().Sub(start), err
}

func (c *Converter) notify(stage Stage, d time.Duration, err error) {
	if c.cfg.observer != nil {
		c.cfg.observer(StageEvent{Stage: stage, Duration: d, Err: err})
	}
}

// validateInput checks the parameters that do not depend on the page
// before any rendering work is done.
func (c *Converter) validateInput(input Input) error {
	if input.PDFPath == "" {
		return fmt.Errorf("%w: empty path", ErrSourceUnavailable)
	}
	if err := input.Shape.Validate(); err != nil {
		return err
	}
	return ValidateThreshold(input.threshold())
}

// Close releases backend resources held by the rasterizer or exporter, if any.
func (c *Converter) Close() error {
	var err error
	if closer, ok := c.rasterizer.(io.Closer); ok {
		err = closer.Close()
	}
	if closer, ok := c.exporter.(io.Closer); ok {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
