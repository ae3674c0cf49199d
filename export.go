package pdf2grid

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/alnah/go-pdf2grid/internal/fileutil"
)

// Compile-time interface implementation checks.
var (
	_ Exporter        = (*HeatmapExporter)(nil)
	_ Exporter        = (*MaskExporter)(nil)
	_ plotter.GridXYZ = gridXYZ{}
	_ plot.Ticker     = cellTicks{}
)

// DefaultOutputName is the visualization file name used when none is given.
const DefaultOutputName = "grid_output.png"

// Mask cell size bounds, in pixels per cell side.
const (
	DefaultCellSize = 4
	MinCellSize     = 1
	MaxCellSize     = 64
)

// Exporter writes a visualization of a grid to path.
// The format is chosen from the file extension.
type Exporter interface {
	Export(grid *OccupancyGrid, path string) error
}

// Polarity maps cell values to colors.
type Polarity int

const (
	// PolarityDarkOccupied renders occupied cells black on white, like the page.
	PolarityDarkOccupied Polarity = iota
	// PolarityLightOccupied renders occupied cells white on black.
	PolarityLightOccupied
)

// Validate checks that p is a known polarity.
func (p Polarity) Validate() error {
	switch p {
	case PolarityDarkOccupied, PolarityLightOccupied:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidPolarity, int(p))
	}
}

func (p Polarity) String() string {
	switch p {
	case PolarityDarkOccupied:
		return "dark-occupied"
	case PolarityLightOccupied:
		return "light-occupied"
	default:
		return fmt.Sprintf("Polarity(%d)", int(p))
	}
}

// colors returns the (empty, occupied) colors.
func (p Polarity) colors() (empty, occupied color.Gray) {
	if p == PolarityLightOccupied {
		return color.Gray{Y: 0}, color.Gray{Y: 255}
	}
	return color.Gray{Y: 255}, color.Gray{Y: 0}
}

// ValidateCellSize checks that n is within [MinCellSize, MaxCellSize].
func ValidateCellSize(n int) error {
	if n < MinCellSize || n > MaxCellSize {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidCellSize, n, MinCellSize, MaxCellSize)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Heat map
// ---------------------------------------------------------------------------

// heatmapFormats maps extensions to gonum/plot writer formats.
var heatmapFormats = map[string]string{
	".png":  "png",
	".jpg":  "jpg",
	".jpeg": "jpg",
	".svg":  "svg",
	".pdf":  "pdf",
	".tif":  "tif",
	".tiff": "tif",
}

// HeatmapExporter renders the grid as a titled heat map with row and
// column axes. Row 0 is drawn at the top.
type HeatmapExporter struct {
	Polarity Polarity
	Width    vg.Length // Figure width (0 = 8in). Height follows the grid aspect ratio.
}

// NewHeatmapExporter creates a HeatmapExporter with default settings.
func NewHeatmapExporter() *HeatmapExporter {
	return &HeatmapExporter{Polarity: PolarityDarkOccupied}
}

// Export renders grid to path. Supported extensions: .png, .jpg, .jpeg,
// .svg, .pdf, .tif, .tiff.
// A panic inside the plotting backend is reported as ErrExport.
func (e *HeatmapExporter) Export(grid *OccupancyGrid, path string) (err error) {
	format, ok := heatmapFormats[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("%w: %q for heat map (use .png, .jpg, .svg, .pdf or .tif)", ErrUnsupportedFormat, filepath.Ext(path))
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: rendering %s: %v", ErrExport, format, r)
		}
	}()
	if err := checkExportable(grid, e.Polarity); err != nil {
		return err
	}

	p := e.plot(grid)
	w, h := e.size(grid)
	wt, err := p.WriterTo(w, h, format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}

	return writeExport(path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

func (e *HeatmapExporter) plot(grid *OccupancyGrid) *plot.Plot {
	empty, occupied := e.Polarity.colors()

	hm := plotter.NewHeatMap(gridXYZ{grid: grid}, twoColors{empty, occupied})
	hm.Min, hm.Max = float64(CellEmpty), float64(CellOccupied)
	hm.Rasterized = true

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s Grid Representation", grid.Shape())
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row"
	p.X.Tick.Marker = cellTicks{n: grid.Cols()}
	p.Y.Tick.Marker = cellTicks{n: grid.Rows(), flip: true}
	p.Add(hm)
	p.X.Min, p.X.Max = -0.5, float64(grid.Cols())-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(grid.Rows())-0.5
	return p
}

// size keeps cells square inside the plot area, leaving room for the
// title and axes.
func (e *HeatmapExporter) size(grid *OccupancyGrid) (vg.Length, vg.Length) {
	w := e.Width
	if w <= 0 {
		w = 8 * vg.Inch
	}
	margin := vg.Inch
	h := (w-margin)*vg.Length(grid.Rows())/vg.Length(grid.Cols()) + margin
	if h < 2*vg.Inch {
		h = 2 * vg.Inch
	}
	return w, h
}

// gridXYZ exposes an OccupancyGrid as a plotter.GridXYZ.
// Column c is X = c. Grid row r is plotted at Y = rows-1-r so that row 0
// sits at the top on a plain linear axis; the rasterized heat map draws
// nothing on a non-linear scale.
type gridXYZ struct {
	grid *OccupancyGrid
}

func (g gridXYZ) Dims() (c, r int) { return g.grid.Cols(), g.grid.Rows() }
func (g gridXYZ) Z(c, r int) float64 { return float64(g.grid.Value(g.grid.Rows()-1-r, c)) }
func (g gridXYZ) X(c int) float64 { return float64(c) }
func (g gridXYZ) Y(r int) float64 { return float64(r) }
func (g gridXYZ) Min() float64 { return float64(CellEmpty) }
func (g gridXYZ) Max() float64 { return float64(CellOccupied) }

// cellTicks labels whole cell indices on an axis spanning [-0.5, n-0.5].
// With flip, the tick at position v is labelled n-1-v, matching gridXYZ.
type cellTicks struct {
	n    int
	flip bool
}

func (t cellTicks) Ticks(_, _ float64) []plot.Tick {
	step := 1
	for _, s := range []int{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000} {
		step = s
		if t.n/s <= 10 {
			break
		}
	}

	ticks := make([]plot.Tick, 0, t.n/step+1)
	for i := 0; i < t.n; i += step {
		v := float64(i)
		if t.flip {
			v = float64(t.n - 1 - i)
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: strconv.Itoa(i)})
	}
	return ticks
}

// twoColors is a palette.Palette of exactly two entries.
type twoColors [2]color.Color

func (t twoColors) Colors() []color.Color { return t[:] }

// ---------------------------------------------------------------------------
// Mask
// ---------------------------------------------------------------------------

// MaskExporter writes the grid as a bare bitmap, one CellSize x CellSize
// block per cell, with no title or axes.
type MaskExporter struct {
	Polarity Polarity
	CellSize int // Pixels per cell side (0 = DefaultCellSize)
}

// NewMaskExporter creates a MaskExporter with the given cell size.
// cellSize 0 selects DefaultCellSize.
func NewMaskExporter(cellSize int) *MaskExporter {
	return &MaskExporter{Polarity: PolarityDarkOccupied, CellSize: cellSize}
}

// Export writes the mask to path. Supported extensions: .png, .bmp, .tif, .tiff.
func (e *MaskExporter) Export(grid *OccupancyGrid, path string) error {
	encode, ok := maskEncoder(filepath.Ext(path))
	if !ok {
		return fmt.Errorf("%w: %q for mask (use .png, .bmp or .tif)", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err := checkExportable(grid, e.Polarity); err != nil {
		return err
	}

	size := e.CellSize
	if size == 0 {
		size = DefaultCellSize
	}
	if err := ValidateCellSize(size); err != nil {
		return err
	}

	img := e.Render(grid, size)
	return writeExport(path, func(w io.Writer) error {
		return encode(w, img)
	})
}

// Render draws the mask into a new image of (cols*size) x (rows*size) pixels.
func (e *MaskExporter) Render(grid *OccupancyGrid, size int) *image.Gray {
	src := maskImage(grid, e.Polarity)
	dst := image.NewGray(image.Rect(0, 0, grid.Cols()*size, grid.Rows()*size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// maskImage renders one pixel per cell.
func maskImage(grid *OccupancyGrid, polarity Polarity) *image.Gray {
	empty, occupied := polarity.colors()
	img := image.NewGray(image.Rect(0, 0, grid.Cols(), grid.Rows()))
	for r := 0; r < grid.Rows(); r++ {
		for c := 0; c < grid.Cols(); c++ {
			v := empty
			if grid.Occupied(r, c) {
				v = occupied
			}
			img.SetGray(c, r, v)
		}
	}
	return img
}

func maskEncoder(ext string) (func(io.Writer, image.Image) error, bool) {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Encode, true
	case ".bmp":
		return bmp.Encode, true
	case ".tif", ".tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate})
		}, true
	default:
		return nil, false
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func checkExportable(grid *OccupancyGrid, polarity Polarity) error {
	if grid == nil || grid.Rows() == 0 || grid.Cols() == 0 {
		return fmt.Errorf("%w: empty grid", ErrExport)
	}
	return polarity.Validate()
}

// writeExport creates parent directories and writes path atomically.
func writeExport(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("%w: creating output directory: %v", ErrExport, err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, 0o644, write); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrExport, path, err)
	}
	return nil
}
