package pdf2grid

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
)

// DiscretizeOptions tunes how Discretize spreads work.
type DiscretizeOptions struct {
	// Workers is the number of goroutines classifying cells. Each worker
	// owns a contiguous band of grid rows, so bands never share pixels or
	// cells. 0 or 1 runs sequentially.
	Workers int
}

// cellGeometry describes how the image is partitioned into cells.
type cellGeometry struct {
	rows, cols  int
	cellHeight  int
	cellWidth   int
	threshold   uint8
	thresholdOK bool // false when threshold is 0: nothing can be darker
}

// Discretize partitions img into a rows x cols grid and marks a cell as
// occupied when any pixel inside it has a luminance strictly below
// threshold. Cells are height/rows by width/cols pixels (floor division);
// trailing pixel rows and columns that do not fill a whole cell are ignored.
func Discretize(img image.Image, rows, cols, threshold int) (*OccupancyGrid, error) {
	return DiscretizeWith(img, rows, cols, threshold, DiscretizeOptions{})
}

// DiscretizeWith is Discretize with explicit options.
// The result does not depend on opts.
func DiscretizeWith(img image.Image, rows, cols, threshold int, opts DiscretizeOptions) (*OccupancyGrid, error) {
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkers, opts.Workers)
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if err := (GridShape{Rows: rows, Cols: cols}).Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidShape)
	}

	b := img.Bounds()
	height, width := b.Dy(), b.Dx()
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: empty image %dx%d", ErrInvalidShape, width, height)
	}
	if rows > height || cols > width {
		return nil, fmt.Errorf("%w: %dx%d exceeds image of %dx%d pixels (rows x cols vs height x width)",
			ErrInvalidShape, rows, cols, height, width)
	}

	gray := toGray(img)
	geom := cellGeometry{
		rows:        rows,
		cols:        cols,
		cellHeight:  height / rows,
		cellWidth:   width / cols,
		threshold:   uint8(threshold), // #nosec G115 -- validated to [0, 255]
		thresholdOK: threshold > 0,
	}

	grid := newOccupancyGrid(rows, cols)
	workers := min(max(opts.Workers, 1), rows)
	if workers == 1 {
		classifyRows(gray, geom, grid, 0, rows)
		return grid, nil
	}

	// Bands of grid rows; the last band absorbs the remainder.
	band := rows / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * band
		end := start + band
		if w == workers-1 {
			end = rows
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			classifyRows(gray, geom, grid, start, end)
		}()
	}
	wg.Wait()

	return grid, nil
}

// classifyRows fills grid rows [start, end).
func classifyRows(gray *image.Gray, geom cellGeometry, grid *OccupancyGrid, start, end int) {
	for r := start; r < end; r++ {
		for c := 0; c < geom.cols; c++ {
			if cellHasDarkPixel(gray, geom, r, c) {
				grid.set(r, c, CellOccupied)
			}
		}
	}
}

// cellHasDarkPixel is the OR-reduction over one cell's pixels.
func cellHasDarkPixel(gray *image.Gray, geom cellGeometry, r, c int) bool {
	if !geom.thresholdOK {
		return false
	}
	y0 := r * geom.cellHeight
	x0 := c * geom.cellWidth
	for y := y0; y < y0+geom.cellHeight; y++ {
		row := gray.Pix[y*gray.Stride+x0 : y*gray.Stride+x0+geom.cellWidth]
		for _, v := range row {
			if v < geom.threshold {
				return true
			}
		}
	}
	return false
}

// toGray returns a single-channel copy of img whose bounds start at (0, 0).
// Colors go through color.GrayModel (ITU-R 601 luma). Translucent pixels
// are composited over white, the color of an unprinted page.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}

	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		return dst
	}

	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
