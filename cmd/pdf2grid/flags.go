package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// defaultPreviewRows matches the partial grid dump of the console contract.
const defaultPreviewRows = 10

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// gridFlags holds discretization flags.
type gridFlags struct {
	rows      int
	cols      int
	threshold int
}

// rasterFlags holds rasterizer flags.
type rasterFlags struct {
	backend     string
	popplerPath string
	dpi         int
	timeout     string
}

// exportFlags holds visualization flags.
type exportFlags struct {
	format   string
	cellSize int
	invert   bool
	disabled bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common      commonFlags
	output      string
	workers     int
	previewRows int
	grid        gridFlags
	raster      rasterFlags
	export      exportFlags

	// changed reports whether a flag was set on the command line.
	// Needed where the zero value is meaningful (threshold 0, --invert=false).
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addGridFlags adds discretization flags to a FlagSet.
func addGridFlags(fs *flag.FlagSet, f *gridFlags) {
	fs.IntVarP(&f.rows, "rows", "r", 0, "grid rows (default 108)")
	fs.IntVarP(&f.cols, "cols", "k", 0, "grid columns (default 192)")
	fs.IntVarP(&f.threshold, "threshold", "t", 0, "luminance cutoff 0-255, darker pixels are ink (default 200)")
}

// addRasterFlags adds rasterizer flags to a FlagSet.
func addRasterFlags(fs *flag.FlagSet, f *rasterFlags) {
	fs.StringVarP(&f.backend, "backend", "b", "", "rasterizer backend: poppler, mupdf")
	fs.StringVar(&f.popplerPath, "poppler-path", "", "directory holding pdftoppm")
	fs.IntVar(&f.dpi, "dpi", 0, "rasterization resolution (1-1200, default 200)")
	fs.StringVar(&f.timeout, "timeout", "", "rasterization timeout (e.g., 30s, 2m)")
}

// addExportFlags adds visualization flags to a FlagSet.
func addExportFlags(fs *flag.FlagSet, f *exportFlags) {
	fs.StringVar(&f.format, "format", "", "visualization: heatmap, mask")
	fs.IntVar(&f.cellSize, "cell-size", 0, "mask pixels per cell side (1-64)")
	fs.BoolVar(&f.invert, "invert", false, "draw occupied cells light instead of dark")
	fs.BoolVar(&f.disabled, "no-export", false, "skip writing the visualization")
}

// newConvertFlagSet registers every convert flag into a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.IntVar(&f.previewRows, "preview-rows", defaultPreviewRows, "grid rows printed after conversion (0 = none)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addGridFlags(fs, &f.grid)
	addRasterFlags(fs, &f.raster)
	addExportFlags(fs, &f.export)

	return fs
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	fs.SetOutput(io.Discard) // errors are reported by the caller
	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if f.previewRows < 0 {
		return nil, nil, fmt.Errorf("%w: --preview-rows %d (must be >= 0)", ErrUsage, f.previewRows)
	}

	f.changed = fs.Changed
	return f, fs.Args(), nil
}
