package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdf2grid <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert the first page of PDF files to occupancy grids")
	fmt.Fprintln(w, "  doctor     Check rasterizer backends and system readiness")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pdf2grid help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdf2grid convert <input> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rasterize the first page of each PDF, split it into a grid and mark")
	fmt.Fprintln(w, "every cell holding at least one pixel darker than the threshold.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input    PDF file or directory (optional if config has input.defaultDir)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (single PDF) or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Grid:")
	fmt.Fprintln(w, "  -r, --rows <n>            Grid rows (default 108)")
	fmt.Fprintln(w, "  -k, --cols <n>            Grid columns (default 192)")
	fmt.Fprintln(w, "  -t, --threshold <n>       Luminance cutoff 0-255 (default 200)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rasterizer:")
	fmt.Fprintln(w, "  -b, --backend <s>         Backend: poppler, mupdf (default poppler)")
	fmt.Fprintln(w, "      --poppler-path <dir>  Directory holding pdftoppm")
	fmt.Fprintln(w, "      --dpi <n>             Resolution 1-1200 (default 200)")
	fmt.Fprintln(w, "      --timeout <d>         Rasterization timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Visualization:")
	fmt.Fprintln(w, "      --format <s>          heatmap or mask (default heatmap)")
	fmt.Fprintln(w, "      --cell-size <n>       Mask pixels per cell side 1-64 (default 4)")
	fmt.Fprintln(w, "      --invert              Draw occupied cells light")
	fmt.Fprintln(w, "      --no-export           Skip writing the visualization")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --preview-rows <n>    Grid rows printed after conversion (default 10)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  PDF2GRID_CONFIG, PDF2GRID_BACKEND, PDF2GRID_POPPLER_PATH, PDF2GRID_DPI,")
	fmt.Fprintln(w, "  PDF2GRID_TIMEOUT, PDF2GRID_WORKERS, PDF2GRID_INPUT_DIR, PDF2GRID_OUTPUT_DIR")
	fmt.Fprintln(w, "  Precedence: flags > environment > config file > defaults")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdf2grid doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that a rasterizer backend is usable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Machine-readable output")
	fmt.Fprintln(w, "      --poppler-path <dir>  Directory holding pdftoppm")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pdf2grid version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pdf2grid help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	return nil
}
