// Package pdf2grid turns the first page of a PDF into a binary occupancy
// grid: a coarse rows x cols mask where each cell records whether the page
// area it covers contains any ink.
//
// # Quick Start
//
// Create a converter, convert a document, and close when done:
//
//	conv, err := pdf2grid.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, pdf2grid.Input{
//	    PDFPath:    "layout.pdf",
//	    Shape:      pdf2grid.DefaultGridShape(),
//	    OutputPath: pdf2grid.DefaultOutputName,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Grid.WriteRows(os.Stdout, 10)
//
// # Conversion Pipeline
//
//  1. Rasterization of page 1 (pdftoppm from poppler-utils, or MuPDF in-process)
//  2. Discretization: grayscale conversion, then one cell per
//     (height/rows) x (width/cols) pixel block. A cell is occupied when any of
//     its pixels is strictly darker than the threshold (default 200).
//     Pixels past the last whole cell are ignored.
//  3. Optional export of a heat map or a bare mask image
//
// Discretize can be used on its own with any image.Image.
//
// # Configuration
//
//	conv, err := pdf2grid.NewConverter(
//	    pdf2grid.WithBackend(pdf2grid.BackendPoppler),
//	    pdf2grid.WithPopplerPath(`C:\poppler\Library\bin`),
//	    pdf2grid.WithDPI(150),
//	    pdf2grid.WithExporter(pdf2grid.NewMaskExporter(4)),
//	    pdf2grid.WithTimeout(time.Minute),
//	)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool:
//
//	pool, err := pdf2grid.NewConverterPool(pdf2grid.ResolvePoolSize(0))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	...
//	pool.Release(conv)
//
// # Errors
//
// Failures wrap sentinel errors that can be tested with errors.Is:
// ErrSourceUnavailable and ErrBackendNotFound for rasterization,
// ErrInvalidShape and ErrInvalidThreshold for discretization,
// ErrUnsupportedFormat and ErrExport for export.
package pdf2grid
