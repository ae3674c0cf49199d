package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-pdf2grid"
	"github.com/alnah/go-pdf2grid/internal/fileutil"
)

// Output naming.
const (
	singleOutputName = pdf2grid.DefaultOutputName // next to a single PDF
	batchOutputExt   = ".png"
	batchSuffix      = "_grid"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .pdf extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// FileToConvert represents a single file to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles finds all PDF files to convert.
// A directory is walked recursively; its outputs mirror the input tree.
func discoverFiles(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validatePDFExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var files []FileToConvert
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !isPDF(path) {
			return nil
		}
		outPath := resolveOutputPath(path, outputDir, inputPath)
		files = append(files, FileToConvert{InputPath: path, OutputPath: outPath})
		return nil
	})

	return files, err
}

// resolveOutputPath determines the visualization path for a PDF.
//
// A single file (baseInputDir == "") writes grid_output.png next to the PDF,
// or to outputDir itself when it names a file, or to
// outputDir/<name>_grid.png otherwise. Files found under baseInputDir write
// <name>_grid.png next to the PDF, or at the same relative place under
// outputDir.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	gridName := base + batchSuffix + batchOutputExt

	if baseInputDir == "" {
		switch {
		case outputDir == "":
			return filepath.Join(filepath.Dir(inputPath), singleOutputName)
		case filepath.Ext(outputDir) != "":
			return outputDir
		default:
			return filepath.Join(outputDir, gridName)
		}
	}

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), gridName)
	}

	relPath, err := filepath.Rel(baseInputDir, inputPath)
	if err == nil {
		return filepath.Join(outputDir, filepath.Dir(relPath), gridName)
	}
	return filepath.Join(outputDir, gridName)
}

// isPDF reports whether path has a .pdf extension, in any case.
func isPDF(path string) bool {
	return fileutil.HasExtension(path, ".pdf")
}

// validatePDFExtension checks that the file has a .pdf extension.
func validatePDFExtension(path string) error {
	if !isPDF(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > pdf2grid.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, pdf2grid.MaxPoolSize)
	}
	return nil
}
