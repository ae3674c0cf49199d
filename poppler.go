package pdf2grid

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	_ "github.com/jbuchbinder/gopnm" // registers the PGM/PPM decoders

	"github.com/alnah/go-pdf2grid/internal/fileutil"
)

// pdftoppmName returns the platform-specific executable name.
func pdftoppmName() string {
	if runtime.GOOS == "windows" {
		return "pdftoppm.exe"
	}
	return "pdftoppm"
}

// PopplerRasterizer renders pages with the pdftoppm tool from poppler-utils.
// The page is written as an 8-bit PGM into a private temporary directory
// and decoded from there.
type PopplerRasterizer struct {
	Runner CommandRunner
	Path   string // Directory containing pdftoppm, or the executable itself. Empty = PATH.
	DPI    int

	lookPath func(string) (string, error)
}

// NewPopplerRasterizer creates a PopplerRasterizer with a real command runner.
// dpi <= 0 selects DefaultDPI.
func NewPopplerRasterizer(popplerPath string, dpi int) *PopplerRasterizer {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &PopplerRasterizer{
		Runner:   &ExecRunner{},
		Path:     popplerPath,
		DPI:      dpi,
		lookPath: exec.LookPath,
	}
}

// Executable locates pdftoppm. A configured Path wins over PATH lookup and
// is never silently ignored.
func (p *PopplerRasterizer) Executable() (string, error) {
	name := pdftoppmName()

	if p.Path != "" {
		if fileutil.DirExists(p.Path) {
			candidate := filepath.Join(p.Path, name)
			if fileutil.FileExists(candidate) {
				return candidate, nil
			}
			return "", fmt.Errorf("%w: %s not found in %s", ErrBackendNotFound, name, p.Path)
		}
		if fileutil.FileExists(p.Path) {
			return p.Path, nil
		}
		return "", fmt.Errorf("%w: poppler path %s does not exist", ErrBackendNotFound, p.Path)
	}

	lookPath := p.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s not on PATH", ErrBackendNotFound, name)
	}
	return path, nil
}

// RasterizeFirstPage renders page 1 of the PDF at p.DPI as a grayscale image.
func (p *PopplerRasterizer) RasterizeFirstPage(ctx context.Context, path string) (image.Image, error) {
	if err := validateSource(path); err != nil {
		return nil, err
	}

	exe, err := p.Executable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	dir, cleanup, err := fileutil.MakeTempDir("pdf2grid-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer cleanup()

	dpi := p.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	// -singlefile writes <outBase>.pgm without a page-number suffix.
	outBase := filepath.Join(dir, "page")
	args := []string{
		"-f", "1", "-l", "1",
		"-r", strconv.Itoa(dpi),
		"-gray",
		"-singlefile",
		path,
		outBase,
	}

	_, stderr, err := p.Runner.Run(ctx, exe, args...)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: pdftoppm interrupted: %w", ErrSourceUnavailable, ctxErr)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm failed: %s: %v", ErrSourceUnavailable, strings.TrimSpace(stderr), err)
	}

	img, err := decodeRaster(outBase + ".pgm")
	if err != nil {
		return nil, err
	}
	return checkRaster(img)
}

// decodeRaster reads a Netpbm file produced by pdftoppm.
func decodeRaster(path string) (image.Image, error) {
	f, err := os.Open(path) // #nosec G304 -- path inside our own temp dir
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm produced no output: %v", ErrSourceUnavailable, err)
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding pdftoppm output: %v", ErrSourceUnavailable, err)
	}
	return img, nil
}
