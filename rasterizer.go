package pdf2grid

import (
	"context"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/alnah/go-pdf2grid/internal/fileutil"
)

// Rasterizer renders the first page of a PDF into a raster image.
// Implementations return ErrSourceUnavailable when the document cannot be
// rendered and never return an empty image without an error.
type Rasterizer interface {
	RasterizeFirstPage(ctx context.Context, path string) (image.Image, error)
}

// Backend names a rasterizer implementation.
type Backend string

// Supported backends.
const (
	BackendPoppler Backend = "poppler" // native pdftoppm executable
	BackendMuPDF   Backend = "mupdf"   // in-process MuPDF
)

// DefaultBackend is used when no backend is configured.
const DefaultBackend = BackendPoppler

// Rendering resolution bounds, in dots per inch.
const (
	DefaultDPI = 200
	MinDPI     = 1
	MaxDPI     = 1200
)

// ParseBackend converts a backend name (case-insensitive) to a Backend.
// An empty name yields DefaultBackend.
func ParseBackend(name string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(name)))
	if b == "" {
		return DefaultBackend, nil
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b, nil
}

// Validate checks that b is a known backend.
func (b Backend) Validate() error {
	switch b {
	case BackendPoppler, BackendMuPDF:
		return nil
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)", ErrInvalidBackend, string(b), BackendPoppler, BackendMuPDF)
	}
}

// ValidateDPI checks that dpi is within [MinDPI, MaxDPI].
func ValidateDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidDPI, dpi, MinDPI, MaxDPI)
	}
	return nil
}

// RasterizerConfig selects and configures a rasterizer backend.
type RasterizerConfig struct {
	Backend     Backend // Empty = DefaultBackend
	PopplerPath string  // Directory holding pdftoppm (poppler only, empty = PATH)
	DPI         int     // 0 = DefaultDPI
}

// NewRasterizer builds the rasterizer described by cfg.
func NewRasterizer(cfg RasterizerConfig) (Rasterizer, error) {
	backend := cfg.Backend
	if backend == "" {
		backend = DefaultBackend
	}
	if err := backend.Validate(); err != nil {
		return nil, err
	}

	dpi := cfg.DPI
	if dpi == 0 {
		dpi = DefaultDPI
	}
	if err := ValidateDPI(dpi); err != nil {
		return nil, err
	}

	if backend == BackendMuPDF {
		return NewMuPDFRasterizer(dpi), nil
	}
	return NewPopplerRasterizer(cfg.PopplerPath, dpi), nil
}

// validateSource rejects paths that cannot be a readable PDF before any
// backend is started.
func validateSource(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrSourceUnavailable)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrSourceUnavailable, path)
	}

	ok, err := fileutil.HasPDFHeader(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s is not a PDF document", ErrSourceUnavailable, path)
	}
	return nil
}

// checkRaster enforces the non-empty result guarantee.
func checkRaster(img image.Image) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: backend returned no image", ErrSourceUnavailable)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: backend returned an empty %dx%d image", ErrSourceUnavailable, b.Dx(), b.Dy())
	}
	return img, nil
}
