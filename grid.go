package pdf2grid

import (
	"fmt"
	"io"
	"strings"
)

// Cell values of an OccupancyGrid.
const (
	CellEmpty    uint8 = 0
	CellOccupied uint8 = 1
)

// OccupancyGrid is a read-only rows x cols matrix of cell values in {0, 1}.
// A value of 1 means the cell contains at least one pixel darker than the
// threshold used to build it.
type OccupancyGrid struct {
	rows  int
	cols  int
	cells []uint8 // row-major
}

// newOccupancyGrid allocates an all-empty grid. Callers validate the shape.
func newOccupancyGrid(rows, cols int) *OccupancyGrid {
	return &OccupancyGrid{
		rows:  rows,
		cols:  cols,
		cells: make([]uint8, rows*cols),
	}
}

// Rows returns the number of grid rows.
func (g *OccupancyGrid) Rows() int { return g.rows }

// Cols returns the number of grid columns.
func (g *OccupancyGrid) Cols() int { return g.cols }

// Shape returns the grid dimensions.
func (g *OccupancyGrid) Shape() GridShape {
	return GridShape{Rows: g.rows, Cols: g.cols}
}

// Value returns the cell value at (r, c).
// Panics if the coordinates are out of range, like slice indexing.
func (g *OccupancyGrid) Value(r, c int) uint8 {
	if r < 0 || r >= g.rows || c < 0 || c >= g.cols {
		panic(fmt.Sprintf("pdf2grid: cell (%d, %d) out of range for %dx%d grid", r, c, g.rows, g.cols))
	}
	return g.cells[r*g.cols+c]
}

// Occupied reports whether the cell at (r, c) is occupied.
func (g *OccupancyGrid) Occupied(r, c int) bool {
	return g.Value(r, c) == CellOccupied
}

// OccupiedCount returns the number of occupied cells.
func (g *OccupancyGrid) OccupiedCount() int {
	n := 0
	for _, v := range g.cells {
		n += int(v)
	}
	return n
}

// Values returns a copy of the grid as a slice of rows.
func (g *OccupancyGrid) Values() [][]uint8 {
	out := make([][]uint8, g.rows)
	for r := range out {
		row := make([]uint8, g.cols)
		copy(row, g.cells[r*g.cols:(r+1)*g.cols])
		out[r] = row
	}
	return out
}

// set marks a cell. Only used while the grid is being built.
func (g *OccupancyGrid) set(r, c int, v uint8) {
	g.cells[r*g.cols+c] = v
}

// WriteRows writes the first n rows as "[0 1 0 ...]" lines.
// n <= 0 or n > Rows() writes every row.
func (g *OccupancyGrid) WriteRows(w io.Writer, n int) error {
	if n <= 0 || n > g.rows {
		n = g.rows
	}
	var b strings.Builder
	for r := 0; r < n; r++ {
		b.Reset()
		b.WriteByte('[')
		for c := 0; c < g.cols; c++ {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('0' + g.cells[r*g.cols+c])
		}
		b.WriteString("]\n")
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// String renders the whole grid, one row per line.
func (g *OccupancyGrid) String() string {
	var b strings.Builder
	_ = g.WriteRows(&b, 0)
	return b.String()
}
