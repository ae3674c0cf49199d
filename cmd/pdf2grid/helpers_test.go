package main

// Notes:
// - Shared test infrastructure for the CLI: a scripted GridConverter, an
//   in-memory Pool, an Environment writing to buffers, and a PDF tree
//   builder. The files it creates only need a .pdf name: the mock
//   converter never opens them.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-pdf2grid"
)

// ---------------------------------------------------------------------------
// mockConverter - Scripted GridConverter
// ---------------------------------------------------------------------------

type mockConverter struct {
	mu     sync.Mutex
	inputs []pdf2grid.Input
	errFor map[string]error // keyed by base name of the PDF
}

func (m *mockConverter) Convert(_ context.Context, in pdf2grid.Input) (*pdf2grid.ConvertResult, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, in)
	m.mu.Unlock()

	if err := m.errFor[filepath.Base(in.PDFPath)]; err != nil {
		return nil, err
	}

	grid, err := pdf2grid.Discretize(diagonalPage(in.Shape.Rows*2, in.Shape.Cols*2), in.Shape.Rows, in.Shape.Cols, *in.Threshold)
	if err != nil {
		return nil, err
	}
	return &pdf2grid.ConvertResult{
		Grid:        grid,
		ImageWidth:  in.Shape.Cols * 2,
		ImageHeight: in.Shape.Rows * 2,
		OutputPath:  in.OutputPath,
		Timings: pdf2grid.Timings{
			Rasterize:  420 * time.Millisecond,
			Discretize: 30 * time.Millisecond,
		},
	}, nil
}

func (m *mockConverter) seen() []pdf2grid.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]pdf2grid.Input(nil), m.inputs...)
}

// diagonalPage is a white page with black pixels on the main diagonal.
func diagonalPage(h, w int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for i := 0; i < min(h, w); i++ {
		img.SetGray(i, i, color.Gray{Y: 0})
	}
	return img
}

// ---------------------------------------------------------------------------
// testPool - In-memory Pool
// ---------------------------------------------------------------------------

type testPool struct {
	conv       GridConverter
	size       int
	acquireErr error

	mu       sync.Mutex
	released int
	closed   bool
}

func (p *testPool) Acquire() (GridConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *testPool) Release(GridConverter) {
	p.mu.Lock()
	p.released++
	p.mu.Unlock()
}

func (p *testPool) Size() int { return p.size }

func (p *testPool) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// testEnv - Environment backed by buffers
// ---------------------------------------------------------------------------

type testEnv struct {
	*Environment
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	conv     *mockConverter
	pool     *testPool
	poolSize int
	opts     []pdf2grid.Option
}

func newTestEnv(conv *mockConverter) *testEnv {
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		conv:   conv,
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		Stdout: te.stdout,
		Stderr: te.stderr,
		NewPool: func(size int, opts ...pdf2grid.Option) (Pool, error) {
			te.poolSize = size
			te.opts = opts
			te.pool = &testPool{conv: conv, size: size}
			return te.pool, nil
		},
	}
	return te
}

// setupTestDir creates a temp directory with the given files (empty content).
func setupTestDir(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		full := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := os.WriteFile(full, []byte("%PDF-1.7\n"), 0o600); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	return dir
}

// mustParse parses convert flags or fails the test.
func mustParse(t *testing.T, args ...string) (*convertFlags, []string) {
	t.Helper()
	flags, rest, err := parseConvertFlags(args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("parseConvertFlags(%v) error = %v", args, err)
	}
	return flags, rest
}
