package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/hints"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for command dispatch.
var (
	ErrUsage          = errors.New("invalid usage")
	ErrUnknownCommand = errors.New("unknown command")
)

func main() {
	// Configure GOMAXPROCS with conditional logging
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if hasVerboseFlag(os.Args[1:]) {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	ctx, stop := notifyContext(context.Background())
	code := run(ctx, os.Args, DefaultEnv())
	stop()
	os.Exit(code)
}

// run dispatches a command and returns the process exit code.
// args includes the program name, as in os.Args.
func run(ctx context.Context, args []string, env *Environment) int {
	if len(args) < 2 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "convert":
		return reportError(env, runConvertCmd(ctx, rest, env))
	case "doctor":
		return runDoctorCmd(ctx, rest, env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "pdf2grid %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		return reportError(env, runHelp(rest, env))
	default:
		err := fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
		return reportError(env, err)
	}
}

// runConvertCmd parses convert flags and runs the conversion.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// reportError prints err with an actionable hint and returns its exit code.
// Per-file failures were already printed by the batch report.
func reportError(env *Environment, err error) int {
	if err == nil {
		return ExitSuccess
	}

	var be *batchError
	if errors.As(err, &be) {
		fmt.Fprintf(env.Stderr, "error: %v\n", err)
	} else {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err, ""))
	}
	return exitCodeFor(err)
}

// hintFor returns an actionable hint for known failures, or "".
// outputFormat selects the extension list for unsupported formats.
func hintFor(err error, outputFormat string) string {
	switch {
	case errors.Is(err, pdf2grid.ErrBackendNotFound):
		return hints.ForBackendNotFound()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, pdf2grid.ErrInvalidShape):
		return hints.ForInvalidShape()
	case errors.Is(err, pdf2grid.ErrUnsupportedFormat):
		return hints.ForUnsupportedFormat(outputFormat)
	case errors.Is(err, pdf2grid.ErrExport):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}

// hasVerboseFlag reports whether -v or --verbose appears before any "--".
func hasVerboseFlag(args []string) bool {
	for _, a := range args {
		switch a {
		case "--":
			return false
		case "-v", "--verbose":
			return true
		}
	}
	return false
}
