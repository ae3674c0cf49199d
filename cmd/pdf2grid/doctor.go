package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/fileutil"
	"github.com/alnah/go-pdf2grid/internal/hints"
)

// versionProbeTimeout bounds the "pdftoppm -v" call.
const versionProbeTimeout = 5 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string      `json:"status"` // "ready", "warnings", "errors"
	Poppler  popplerInfo `json:"poppler"`
	MuPDF    mupdfInfo   `json:"mupdf"`
	Env      envInfo     `json:"environment"`
	System   systemInfo  `json:"system"`
	Warnings []string    `json:"warnings,omitempty"`
	Errors   []string    `json:"errors,omitempty"`
}

// popplerInfo holds pdftoppm detection results.
type popplerInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// mupdfInfo describes the in-process backend.
type mupdfInfo struct {
	Available bool `json:"available"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	PopplerPath   string `json:"poppler_path"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorOptions selects what runDoctor inspects.
type doctorOptions struct {
	popplerPath string
	runner      pdf2grid.CommandRunner // nil = real processes
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(ctx context.Context, args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "machine-readable output")
	popplerPath := fs.String("poppler-path", "", "directory holding pdftoppm")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		printDoctorUsage(env.Stderr)
		return reportError(env, fmt.Errorf("%w: %v", ErrUsage, err))
	}

	opts := doctorOptions{popplerPath: *popplerPath}
	if opts.popplerPath == "" {
		opts.popplerPath = os.Getenv("PDF2GRID_POPPLER_PATH")
	}

	result := runDoctor(ctx, opts)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, opts doctorOptions) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:          runtime.GOOS,
			Arch:        runtime.GOARCH,
			PopplerPath: opts.popplerPath,
		},
		// go-fitz is linked into the binary.
		MuPDF: mupdfInfo{Available: true},
	}

	checkPoppler(ctx, result, opts)
	checkEnvironment(result)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkPoppler locates pdftoppm the same way the converter does and asks
// it for its version. A missing pdftoppm is a warning: mupdf still works.
func checkPoppler(ctx context.Context, result *doctorResult, opts doctorOptions) {
	r := pdf2grid.NewPopplerRasterizer(opts.popplerPath, pdf2grid.DefaultDPI)
	if opts.runner != nil {
		r.Runner = opts.runner
	}

	exe, err := r.Executable()
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%v (the mupdf backend is still available)%s", err, hints.ForBackendNotFound()))
		return
	}

	result.Poppler.Found = true
	result.Poppler.Path = exe

	ctx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()

	// pdftoppm prints its version on stderr.
	stdout, stderr, err := r.Runner.Run(ctx, exe, "-v")
	if v := firstLine(stderr + "\n" + stdout); v != "" {
		result.Poppler.Version = v
		return
	}
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get pdftoppm version: %v", err))
	}
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = isContainer()

	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer() (bool, string) {
	// Explicit override (highest priority)
	if os.Getenv("PDF2GRID_CONTAINER") == "1" {
		return true, "PDF2GRID_CONTAINER=1"
	}
	// Docker
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies that pdftoppm output can be staged in the temp dir.
func checkSystem(result *doctorResult) {
	dir, cleanup, err := fileutil.MakeTempDir("pdf2grid-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	defer cleanup()

	probe := filepath.Join(dir, "probe")
	if err := fileutil.WriteFileAtomic(probe, 0o600, func(w io.Writer) error {
		_, err := io.WriteString(w, "probe")
		return err
	}); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "pdf2grid doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Poppler (pdftoppm)")
	if r.Poppler.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Poppler.Path)
		if r.Poppler.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Poppler.Version)
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "MuPDF")
	if r.MuPDF.Available {
		fmt.Fprintln(w, "  [OK] Built in (--backend mupdf)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.PopplerPath != "" {
		fmt.Fprintf(w, "  [OK] Poppler path: %s\n", r.Env.PopplerPath)
	}
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to convert")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
