package main

// Notes:
// - run/runConvert: end to end through the CLI with a mock converter pool,
//   covering single files, directory batches, exit codes and hints.
// - Precedence: flags > PDF2GRID_* env > YAML config > defaults, checked on
//   the values that reach the converter.
// - mergeFlags, buildExporter, buildConverterOptions, resolveWorkers:
//   unit-level checks of the translation from settings to library options.
// - Tests that set PDF2GRID_* variables cannot use t.Parallel().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/config"
)

func runCLI(te *testEnv, args ...string) int {
	return run(context.Background(), append([]string{"pdf2grid"}, args...), te.Environment)
}

// ---------------------------------------------------------------------------
// TestRunConvert - End to end through the CLI
// ---------------------------------------------------------------------------

func TestRunConvert(t *testing.T) {
	t.Parallel()

	t.Run("single file", func(t *testing.T) {
		t.Parallel()
		dir := setupTestDir(t, "scan.pdf")
		te := newTestEnv(&mockConverter{})

		code := runCLI(te, "convert", "-r", "3", "-k", "4", filepath.Join(dir, "scan.pdf"))
		if code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}

		in := te.conv.seen()[0]
		if in.Shape != (pdf2grid.GridShape{Rows: 3, Cols: 4}) || *in.Threshold != pdf2grid.DefaultThreshold {
			t.Errorf("input = %+v (threshold %d)", in, *in.Threshold)
		}
		wantOut := filepath.Join(dir, "grid_output.png")
		if in.OutputPath != wantOut {
			t.Errorf("OutputPath = %q, want %q", in.OutputPath, wantOut)
		}
		if te.poolSize != 1 || !te.pool.closed {
			t.Errorf("pool size %d closed %v, want 1 and closed", te.poolSize, te.pool.closed)
		}
		out := te.stdout.String()
		for _, want := range []string{"Execution Times:", "Generated Grid (partial view):", "Created " + wantOut} {
			if !strings.Contains(out, want) {
				t.Errorf("stdout missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("default shape", func(t *testing.T) {
		t.Parallel()
		dir := setupTestDir(t, "scan.pdf")
		te := newTestEnv(&mockConverter{})

		if code := runCLI(te, "convert", "-q", filepath.Join(dir, "scan.pdf")); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		if got := te.conv.seen()[0].Shape; got != pdf2grid.DefaultGridShape() {
			t.Errorf("Shape = %v, want %v", got, pdf2grid.DefaultGridShape())
		}
	})

	t.Run("directory batch", func(t *testing.T) {
		t.Parallel()
		dir := setupTestDir(t, "a.pdf", "sub/b.pdf", "sub/c.pdf")
		out := filepath.Join(t.TempDir(), "grids")
		te := newTestEnv(&mockConverter{})

		code := runCLI(te, "convert", "-r", "3", "-k", "4", "-w", "2", "-o", out, dir)
		if code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		if te.poolSize != 2 {
			t.Errorf("pool size = %d, want 2", te.poolSize)
		}
		got := map[string]bool{}
		for _, in := range te.conv.seen() {
			got[in.OutputPath] = true
		}
		for _, want := range []string{
			filepath.Join(out, "a_grid.png"),
			filepath.Join(out, "sub", "b_grid.png"),
			filepath.Join(out, "sub", "c_grid.png"),
		} {
			if !got[want] {
				t.Errorf("no conversion wrote %s (got %v)", want, got)
			}
		}
		if !strings.Contains(te.stdout.String(), "3 succeeded, 0 failed") {
			t.Errorf("stdout missing summary:\n%s", te.stdout.String())
		}
	})

	t.Run("no export", func(t *testing.T) {
		t.Parallel()
		dir := setupTestDir(t, "scan.pdf")
		te := newTestEnv(&mockConverter{})

		if code := runCLI(te, "convert", "-r", "3", "-k", "4", "--no-export", filepath.Join(dir, "scan.pdf")); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		if got := te.conv.seen()[0].OutputPath; got != "" {
			t.Errorf("OutputPath = %q, want empty", got)
		}
	})

	t.Run("help", func(t *testing.T) {
		t.Parallel()
		te := newTestEnv(&mockConverter{})
		if code := runCLI(te, "convert", "--help"); code != ExitSuccess {
			t.Errorf("exit = %d, want %d", code, ExitSuccess)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRunConvert_Errors - Exit codes and hints
// ---------------------------------------------------------------------------

func TestRunConvert_Errors(t *testing.T) {
	t.Parallel()

	pdf := func(t *testing.T) string {
		return filepath.Join(setupTestDir(t, "scan.pdf"), "scan.pdf")
	}

	tests := []struct {
		name     string
		args     func(t *testing.T) []string
		conv     *mockConverter
		wantCode int
		wantErr  string
	}{
		{
			name:     "no input",
			args:     func(t *testing.T) []string { return nil },
			wantCode: ExitIO,
			wantErr:  "no input specified",
		},
		{
			name:     "missing file",
			args:     func(t *testing.T) []string { return []string{filepath.Join(t.TempDir(), "gone.pdf")} },
			wantCode: ExitIO,
		},
		{
			name:     "empty directory",
			args:     func(t *testing.T) []string { return []string{t.TempDir()} },
			wantCode: ExitIO,
			wantErr:  "no PDF files found",
		},
		{
			name:     "zero rows",
			args:     func(t *testing.T) []string { return []string{"-r", "0", pdf(t)} },
			wantCode: ExitUsage,
			wantErr:  "invalid grid shape",
		},
		{
			name:     "threshold out of range",
			args:     func(t *testing.T) []string { return []string{"-t", "256", pdf(t)} },
			wantCode: ExitUsage,
			wantErr:  "invalid threshold",
		},
		{
			name:     "unknown backend",
			args:     func(t *testing.T) []string { return []string{"-b", "ghostscript", pdf(t)} },
			wantCode: ExitUsage,
		},
		{
			name:     "bad timeout",
			args:     func(t *testing.T) []string { return []string{"--timeout", "soon", pdf(t)} },
			wantCode: ExitUsage,
		},
		{
			name:     "too many workers",
			args:     func(t *testing.T) []string { return []string{"-w", "99", pdf(t)} },
			wantCode: ExitUsage,
		},
		{
			name:     "unknown flag",
			args:     func(t *testing.T) []string { return []string{"--margin", "1", pdf(t)} },
			wantCode: ExitUsage,
		},
		{
			name:     "config not found",
			args:     func(t *testing.T) []string { return []string{"-c", filepath.Join(t.TempDir(), "none.yaml"), pdf(t)} },
			wantCode: ExitUsage,
			wantErr:  "hint: use --config",
		},
		{
			name:     "backend missing",
			args:     func(t *testing.T) []string { return []string{pdf(t)} },
			conv:     &mockConverter{errFor: map[string]error{"scan.pdf": pdf2grid.ErrBackendNotFound}},
			wantCode: ExitBackend,
			wantErr:  "1 of 1 conversion(s) failed",
		},
		{
			name:     "export failure",
			args:     func(t *testing.T) []string { return []string{pdf(t)} },
			conv:     &mockConverter{errFor: map[string]error{"scan.pdf": pdf2grid.ErrExport}},
			wantCode: ExitIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			conv := tt.conv
			if conv == nil {
				conv = &mockConverter{}
			}
			te := newTestEnv(conv)

			code := runCLI(te, append([]string{"convert"}, tt.args(t)...)...)
			if code != tt.wantCode {
				t.Errorf("exit = %d, want %d (stderr: %s)", code, tt.wantCode, te.stderr.String())
			}
			if tt.wantErr != "" && !strings.Contains(te.stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", te.stderr.String(), tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunConvert_Precedence - flags > env > config > defaults
// ---------------------------------------------------------------------------

func TestRunConvert_Precedence(t *testing.T) {
	dir := setupTestDir(t, "scan.pdf")
	input := filepath.Join(dir, "scan.pdf")
	cfgPath := filepath.Join(t.TempDir(), "grid.yaml")
	yaml := "grid:\n  rows: 3\n  cols: 4\n  threshold: 90\noutput:\n  defaultDir: " + filepath.ToSlash(filepath.Join(dir, "from-config")) + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("config file over defaults", func(t *testing.T) {
		te := newTestEnv(&mockConverter{})
		if code := runCLI(te, "convert", "-q", "-c", cfgPath, input); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		in := te.conv.seen()[0]
		if *in.Threshold != 90 {
			t.Errorf("Threshold = %d, want 90 from config", *in.Threshold)
		}
		if want := filepath.Join(dir, "from-config", "scan_grid.png"); in.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", in.OutputPath, want)
		}
	})

	t.Run("env config and output dir", func(t *testing.T) {
		t.Setenv("PDF2GRID_CONFIG", cfgPath)
		t.Setenv("PDF2GRID_OUTPUT_DIR", filepath.Join(dir, "from-env"))
		te := newTestEnv(&mockConverter{})
		if code := runCLI(te, "convert", "-q", input); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		in := te.conv.seen()[0]
		if *in.Threshold != 90 {
			t.Errorf("Threshold = %d, want 90 from PDF2GRID_CONFIG", *in.Threshold)
		}
		if want := filepath.Join(dir, "from-env", "scan_grid.png"); in.OutputPath != want {
			t.Errorf("OutputPath = %q, want %q", in.OutputPath, want)
		}
	})

	t.Run("flags over everything", func(t *testing.T) {
		t.Setenv("PDF2GRID_OUTPUT_DIR", filepath.Join(dir, "from-env"))
		out := filepath.Join(dir, "flag.png")
		te := newTestEnv(&mockConverter{})
		if code := runCLI(te, "convert", "-q", "-c", cfgPath, "-t", "0", "-o", out, input); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		in := te.conv.seen()[0]
		if *in.Threshold != 0 {
			t.Errorf("Threshold = %d, want explicit 0 from flag", *in.Threshold)
		}
		if in.OutputPath != out {
			t.Errorf("OutputPath = %q, want %q", in.OutputPath, out)
		}
	})

	t.Run("env workers", func(t *testing.T) {
		t.Setenv("PDF2GRID_WORKERS", "3")
		te := newTestEnv(&mockConverter{})
		if code := runCLI(te, "convert", "-q", "-r", "3", "-k", "4", dir); code != ExitSuccess {
			t.Fatalf("exit = %d, stderr = %s", code, te.stderr.String())
		}
		// One file caps the pool at one converter.
		if te.poolSize != 1 {
			t.Errorf("pool size = %d, want 1", te.poolSize)
		}
	})
}

// ---------------------------------------------------------------------------
// TestMergeFlags - CLI values override config
// ---------------------------------------------------------------------------

func TestMergeFlags(t *testing.T) {
	t.Parallel()

	t.Run("given flags override", func(t *testing.T) {
		t.Parallel()
		f, _ := mustParse(t, "-r", "5", "-k", "6", "-t", "0", "-b", "mupdf", "--poppler-path", "/p",
			"--dpi", "72", "--timeout", "5s", "--format", "mask", "--cell-size", "2", "--invert")
		cfg := config.DefaultConfig()
		mergeFlags(f, cfg)

		want := config.Config{
			Output:     config.OutputConfig{Format: "mask", CellSize: 2, Invert: true},
			Grid:       config.GridConfig{Rows: 5, Cols: 6, Threshold: 0},
			Rasterizer: config.RasterizerConfig{Backend: "mupdf", PopplerPath: "/p", DPI: 72, Timeout: "5s"},
		}
		if *cfg != want {
			t.Errorf("merged = %+v, want %+v", *cfg, want)
		}
	})

	t.Run("absent flags keep config", func(t *testing.T) {
		t.Parallel()
		f, _ := mustParse(t)
		cfg := config.DefaultConfig()
		cfg.Grid.Threshold = 42
		cfg.Output.Invert = true
		want := *cfg

		mergeFlags(f, cfg)
		if *cfg != want {
			t.Errorf("merged = %+v, want %+v", *cfg, want)
		}
	})

	t.Run("explicit invert=false", func(t *testing.T) {
		t.Parallel()
		f, _ := mustParse(t, "--invert=false")
		cfg := config.DefaultConfig()
		cfg.Output.Invert = true

		mergeFlags(f, cfg)
		if cfg.Output.Invert {
			t.Error("Invert = true, want false from flag")
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildExporter - Format and polarity selection
// ---------------------------------------------------------------------------

func TestBuildExporter(t *testing.T) {
	t.Parallel()

	t.Run("heatmap", func(t *testing.T) {
		t.Parallel()
		e, ok := buildExporter(config.OutputConfig{Format: "heatmap"}).(*pdf2grid.HeatmapExporter)
		if !ok {
			t.Fatal("want *HeatmapExporter")
		}
		if e.Polarity != pdf2grid.PolarityDarkOccupied {
			t.Errorf("Polarity = %v, want dark-occupied", e.Polarity)
		}
	})

	t.Run("mask inverted", func(t *testing.T) {
		t.Parallel()
		e, ok := buildExporter(config.OutputConfig{Format: "MASK", CellSize: 7, Invert: true}).(*pdf2grid.MaskExporter)
		if !ok {
			t.Fatal("want *MaskExporter")
		}
		if e.CellSize != 7 || e.Polarity != pdf2grid.PolarityLightOccupied {
			t.Errorf("mask = %+v, want cell size 7, light-occupied", e)
		}
	})
}

// ---------------------------------------------------------------------------
// TestBuildConverterOptions - Options accepted by the library
// ---------------------------------------------------------------------------

func TestBuildConverterOptions(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Rasterizer.Backend = "mupdf"
	opts, err := buildConverterOptions(cfg)
	if err != nil {
		t.Fatalf("buildConverterOptions() error = %v", err)
	}
	c, err := pdf2grid.NewConverter(opts...)
	if err != nil {
		t.Fatalf("NewConverter(opts...) error = %v", err)
	}
	_ = c.Close()

	cfg.Rasterizer.Backend = "ghostscript"
	if _, err := buildConverterOptions(cfg); !errors.Is(err, pdf2grid.ErrInvalidBackend) {
		t.Errorf("error = %v, want ErrInvalidBackend", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolveWorkers - Pool sizing
// ---------------------------------------------------------------------------

func TestResolveWorkers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		flag, env   int
		want        int
		wantErr     bool
		wantAtLeast bool
	}{
		{name: "flag wins", flag: 2, env: 5, want: 2},
		{name: "env when no flag", env: 3, want: 3},
		{name: "auto", want: pdf2grid.MinPoolSize, wantAtLeast: true},
		{name: "env too large", env: pdf2grid.MaxPoolSize + 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveWorkers(tt.flag, tt.env)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveWorkers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.wantAtLeast {
				if got < tt.want || got > pdf2grid.MaxPoolSize {
					t.Errorf("resolveWorkers() = %d, want in [%d, %d]", got, tt.want, pdf2grid.MaxPoolSize)
				}
				return
			}
			if got != tt.want {
				t.Errorf("resolveWorkers() = %d, want %d", got, tt.want)
			}
		})
	}
}
