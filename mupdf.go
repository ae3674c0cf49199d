package pdf2grid

import (
	"context"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// fitzDocument is the subset of *fitz.Document the MuPDF rasterizer uses.
type fitzDocument interface {
	NumPage() int
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// MuPDFRasterizer renders pages in-process through MuPDF.
// No external executable is required.
type MuPDFRasterizer struct {
	DPI int

	open func(path string) (fitzDocument, error)
}

// NewMuPDFRasterizer creates a MuPDFRasterizer. dpi <= 0 selects DefaultDPI.
func NewMuPDFRasterizer(dpi int) *MuPDFRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &MuPDFRasterizer{DPI: dpi, open: openFitz}
}

func openFitz(path string) (fitzDocument, error) {
	return fitz.New(path)
}

type rasterResult struct {
	img image.Image
	err error
}

// RasterizeFirstPage renders page 1 of the PDF at m.DPI.
// MuPDF calls cannot be interrupted; on cancellation the render finishes in
// the background and its result is discarded.
func (m *MuPDFRasterizer) RasterizeFirstPage(ctx context.Context, path string) (image.Image, error) {
	if err := validateSource(path); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: mupdf not started: %w", ErrSourceUnavailable, err)
	}

	open := m.open
	if open == nil {
		open = openFitz
	}
	dpi := m.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	done := make(chan rasterResult, 1)
	go func() {
		img, err := renderFirstPage(open, path, dpi)
		done <- rasterResult{img: img, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return checkRaster(res.img)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: mupdf interrupted: %w", ErrSourceUnavailable, ctx.Err())
	}
}

func renderFirstPage(open func(string) (fitzDocument, error), path string, dpi int) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: mupdf panic: %v", ErrSourceUnavailable, r)
		}
	}()

	doc, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening with mupdf: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = doc.Close() }()

	if doc.NumPage() < 1 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrSourceUnavailable, path)
	}

	rgba, err := doc.ImageDPI(0, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("%w: rendering page 1: %v", ErrSourceUnavailable, err)
	}
	if rgba == nil {
		return nil, fmt.Errorf("%w: mupdf returned no image", ErrSourceUnavailable)
	}
	return rgba, nil
}
