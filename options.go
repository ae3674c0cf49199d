package pdf2grid

import (
	"time"
)

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	backend     Backend
	popplerPath string
	dpi         int
	workers     int
	observer    Observer
}

// defaultTimeout bounds the rasterization stage when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the rasterization timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("pdf2grid: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithRasterizer replaces the rasterizer built from the backend options.
// WithBackend, WithPopplerPath and WithDPI are ignored when it is set.
func WithRasterizer(r Rasterizer) Option {
	return func(c *Converter) {
		c.rasterizer = r
	}
}

// WithBackend selects the rasterizer backend. Validated by NewConverter.
func WithBackend(b Backend) Option {
	return func(c *Converter) {
		c.cfg.backend = b
	}
}

// WithPopplerPath sets the directory holding pdftoppm.
func WithPopplerPath(dir string) Option {
	return func(c *Converter) {
		c.cfg.popplerPath = dir
	}
}

// WithDPI sets the rendering resolution. Validated by NewConverter.
func WithDPI(dpi int) Option {
	return func(c *Converter) {
		c.cfg.dpi = dpi
	}
}

// WithExporter sets the visualization exporter (default: heat map).
func WithExporter(e Exporter) Option {
	return func(c *Converter) {
		c.exporter = e
	}
}

// WithWorkers sets the number of goroutines used to classify cells.
// 0 or 1 runs sequentially.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.cfg.workers = n
	}
}

// WithObserver registers a hook called after every pipeline stage.
func WithObserver(o Observer) Option {
	return func(c *Converter) {
		c.cfg.observer = o
	}
}
