package main

import (
	"errors"
	"os"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/config"
)

// Exit codes for pdf2grid CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied, export failed
	ExitBackend = 4 // PDF could not be rasterized or backend missing
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Rasterizer errors (exit 4)
	if errors.Is(err, pdf2grid.ErrSourceUnavailable) ||
		errors.Is(err, pdf2grid.ErrBackendNotFound) {
		return ExitBackend
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, pdf2grid.ErrInvalidShape) ||
		errors.Is(err, pdf2grid.ErrInvalidThreshold) ||
		errors.Is(err, pdf2grid.ErrInvalidBackend) ||
		errors.Is(err, pdf2grid.ErrInvalidDPI) ||
		errors.Is(err, pdf2grid.ErrInvalidCellSize) ||
		errors.Is(err, pdf2grid.ErrInvalidPolarity) ||
		errors.Is(err, pdf2grid.ErrInvalidWorkers) ||
		errors.Is(err, pdf2grid.ErrUnsupportedFormat) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrNoPDFs) ||
		errors.Is(err, pdf2grid.ErrExport) {
		return ExitIO
	}

	return ExitGeneral
}
