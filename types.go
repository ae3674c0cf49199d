package pdf2grid

import (
	"fmt"
	"time"
)

// Threshold bounds for 8-bit grayscale intensities.
const (
	MinThreshold     = 0
	MaxThreshold     = 255
	DefaultThreshold = 200
)

// Default grid resolution: a 16:9 layout at 108x192 cells.
const (
	DefaultRows = 108
	DefaultCols = 192
)

// GridShape is the target discretization resolution.
type GridShape struct {
	Rows int
	Cols int
}

// DefaultGridShape returns the 108x192 default shape.
func DefaultGridShape() GridShape {
	return GridShape{Rows: DefaultRows, Cols: DefaultCols}
}

// Validate checks that both dimensions are positive.
// Upper bounds depend on the image and are checked by Discretize.
func (s GridShape) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 {
		return fmt.Errorf("%w: %dx%d (rows and cols must be positive)", ErrInvalidShape, s.Rows, s.Cols)
	}
	return nil
}

// String formats the shape as "ROWSxCOLS".
func (s GridShape) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// ValidateThreshold checks that t is a valid 8-bit intensity.
func ValidateThreshold(t int) error {
	if t < MinThreshold || t > MaxThreshold {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidThreshold, t, MinThreshold, MaxThreshold)
	}
	return nil
}

// Input contains conversion parameters.
type Input struct {
	PDFPath    string    // Path to the PDF file (required)
	Shape      GridShape // Target grid resolution (required)
	Threshold  *int      // Intensity cutoff (optional, nil = DefaultThreshold)
	OutputPath string    // Visualization file (optional, empty = no export)
}

// threshold returns the effective threshold for the input.
func (in Input) threshold() int {
	if in.Threshold == nil {
		return DefaultThreshold
	}
	return *in.Threshold
}

// Timings holds the wall-clock duration of each conversion stage.
type Timings struct {
	Rasterize  time.Duration
	Discretize time.Duration
	Export     time.Duration
}

// Total returns the sum of all stage durations.
func (t Timings) Total() time.Duration {
	return t.Rasterize + t.Discretize + t.Export
}

// ConvertResult contains the output of a conversion.
type ConvertResult struct {
	Grid        *OccupancyGrid
	ImageWidth  int    // Width of the rasterized page in pixels
	ImageHeight int    // Height of the rasterized page in pixels
	OutputPath  string // Written visualization, empty if export was skipped
	Timings     Timings
}
