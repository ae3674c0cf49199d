package pdf2grid

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func gridFrom(rows [][]uint8) *OccupancyGrid {
	g := newOccupancyGrid(len(rows), len(rows[0]))
	for r, row := range rows {
		for c, v := range row {
			g.set(r, c, v)
		}
	}
	return g
}

// ---------------------------------------------------------------------------
// TestOccupancyGrid_Accessors
// ---------------------------------------------------------------------------

func TestOccupancyGrid_Accessors(t *testing.T) {
	t.Parallel()

	g := gridFrom([][]uint8{
		{0, 1, 0},
		{1, 1, 0},
	})

	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", g.Rows(), g.Cols())
	}
	if !g.Occupied(0, 1) || g.Occupied(0, 0) {
		t.Error("Occupied() returned wrong values for row 0")
	}
	if got := g.Value(1, 0); got != CellOccupied {
		t.Errorf("Value(1, 0) = %d, want 1", got)
	}
	if got := g.OccupiedCount(); got != 3 {
		t.Errorf("OccupiedCount() = %d, want 3", got)
	}
}

func TestOccupancyGrid_ValuesIsACopy(t *testing.T) {
	t.Parallel()

	g := gridFrom([][]uint8{{0, 0}, {0, 0}})
	v := g.Values()
	v[0][0] = CellOccupied

	if g.Occupied(0, 0) {
		t.Error("mutating Values() changed the grid")
	}
	if diff := cmp.Diff([][]uint8{{0, 0}, {0, 0}}, g.Values()); diff != "" {
		t.Errorf("Values() mismatch (-want +got):\n%s", diff)
	}
}

func TestOccupancyGrid_ValueOutOfRangePanics(t *testing.T) {
	t.Parallel()

	g := gridFrom([][]uint8{{0}})

	for _, rc := range [][2]int{{-1, 0}, {0, -1}, {1, 0}, {0, 1}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Value(%d, %d) did not panic", rc[0], rc[1])
				}
			}()
			_ = g.Value(rc[0], rc[1])
		}()
	}
}

// ---------------------------------------------------------------------------
// TestOccupancyGrid_WriteRows - Console preview
// ---------------------------------------------------------------------------

func TestOccupancyGrid_WriteRows(t *testing.T) {
	t.Parallel()

	g := gridFrom([][]uint8{
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 0},
	})

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"first row", 1, "[0 1 0]\n"},
		{"two rows", 2, "[0 1 0]\n[1 1 1]\n"},
		{"zero means all", 0, "[0 1 0]\n[1 1 1]\n[0 0 0]\n"},
		{"more than rows", 10, "[0 1 0]\n[1 1 1]\n[0 0 0]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var b strings.Builder
			if err := g.WriteRows(&b, tt.n); err != nil {
				t.Fatalf("WriteRows() error = %v", err)
			}
			if b.String() != tt.want {
				t.Errorf("WriteRows(%d) = %q, want %q", tt.n, b.String(), tt.want)
			}
		})
	}

	if got := g.String(); got != tests[2].want {
		t.Errorf("String() = %q", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestOccupancyGrid_WriteRowsError(t *testing.T) {
	t.Parallel()

	g := gridFrom([][]uint8{{1}})
	if err := g.WriteRows(failingWriter{}, 1); err == nil {
		t.Error("WriteRows() error = nil, want write error")
	}
}
