package pdf2grid

import "errors"

// Sentinel errors for library operations.
var (
	// ErrSourceUnavailable reports that the PDF could not be located, read
	// or rasterized (missing file, corrupt PDF, failing backend).
	ErrSourceUnavailable = errors.New("PDF source unavailable")
	ErrBackendNotFound   = errors.New("rasterizer backend not found")

	// Discretizer validation errors.
	ErrInvalidShape     = errors.New("invalid grid shape")
	ErrInvalidThreshold = errors.New("invalid threshold")

	// Option validation errors.
	ErrInvalidBackend  = errors.New("invalid rasterizer backend")
	ErrInvalidDPI      = errors.New("invalid DPI")
	ErrInvalidCellSize = errors.New("invalid cell size")
	ErrInvalidPolarity = errors.New("invalid polarity")
	ErrInvalidWorkers  = errors.New("invalid worker count")

	// ErrPoolClosed is returned by ConverterPool.Acquire after Close.
	ErrPoolClosed = errors.New("converter pool closed")

	// Export errors.
	ErrUnsupportedFormat = errors.New("unsupported output format")
	ErrExport            = errors.New("grid export failed")
)
