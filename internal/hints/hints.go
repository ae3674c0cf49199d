// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-pdf2grid/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// goos is the target platform, replaceable in tests.
var goos = runtime.GOOS

// ForBackendNotFound returns hints for a missing pdftoppm executable:
// how to install poppler on this platform, how to point at an existing
// installation, and the in-process alternative.
func ForBackendNotFound() string {
	var hints []string

	switch {
	case IsInContainer():
		hints = append(hints, "install poppler-utils in the image (apt-get install -y poppler-utils)")
	case goos == "darwin":
		hints = append(hints, "install poppler with: brew install poppler")
	case goos == "windows":
		hints = append(hints, "download a poppler build for Windows and point --poppler-path at its Library\\bin directory")
	default:
		hints = append(hints, "install poppler-utils with your package manager")
	}

	if os.Getenv("PDF2GRID_POPPLER_PATH") == "" {
		hints = append(hints, "set PDF2GRID_POPPLER_PATH or use --poppler-path if poppler is installed outside PATH")
	}

	hints = append(hints, "or render in-process with --backend mupdf")
	return formatHints(hints)
}

// ForTimeout returns a hint about increasing timeout for slow operations.
func ForTimeout() string {
	return format("for complex pages, use the --timeout flag or a lower --dpi")
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(filepathSlash(p), "/go-pdf2grid/") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output directory creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

// ForInvalidShape returns hints for grids that do not fit the rendered page.
func ForInvalidShape() string {
	return format("rows and cols must be positive and at most the page height and width in pixels; raise --dpi or lower --rows/--cols")
}

// ForUnsupportedFormat lists the extensions each output format accepts.
func ForUnsupportedFormat(outputFormat string) string {
	if outputFormat == "mask" {
		return format("mask output supports .png, .bmp and .tif")
	}
	return format("heatmap output supports .png, .jpg, .svg, .pdf and .tif")
}

// filepathSlash normalizes separators so Windows paths match too.
func filepathSlash(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
