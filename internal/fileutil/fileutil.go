// Package fileutil provides file and path utility functions.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Sentinel errors for file utility operations.
var (
	ErrPatternEmpty         = errors.New("temp pattern cannot be empty")
	ErrPatternPathTraversal = errors.New("temp pattern contains path separator or null byte")
)

// pdfHeaderWindow is how far into the file the %PDF- marker may appear.
// Readers tolerate leading garbage up to 1024 bytes.
const pdfHeaderWindow = 1024

var pdfMagic = []byte("%PDF-")

// MakeTempDir creates a private temporary directory.
// Returns the directory path and a cleanup function that removes it.
func MakeTempDir(pattern string) (dir string, cleanup func(), err error) {
	if err := ValidatePattern(pattern); err != nil {
		return "", nil, err
	}

	dir, err = os.MkdirTemp("", pattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

// ValidatePattern checks that a temp name pattern cannot escape the temp dir.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return ErrPatternEmpty
	}
	if strings.ContainsAny(pattern, "/\\\x00") {
		return ErrPatternPathTraversal
	}
	return nil
}

// WriteFileAtomic writes through a temp file in the destination directory
// and renames it into place, so a failed write never leaves a partial file.
func WriteFileAtomic(path string, perm os.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }() // no-op after a successful rename

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "scans" -> false (name)
//   - "./scans.yaml" -> true (relative path)
//   - "/etc/pdf2grid/scans.yaml" -> true (absolute)
//   - "C:\config\scans.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// HasExtension reports whether path ends with one of exts (case-insensitive).
// Extensions include the leading dot.
func HasExtension(path string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// HasPDFHeader reports whether the file starts with a PDF header.
func HasPDFHeader(path string) (bool, error) {
	f, err := os.Open(path) // #nosec G304 -- caller-provided input path
	if err != nil {
		return false, err
	}
	defer f.Close()

	buf := make([]byte, pdfHeaderWindow)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return bytes.Contains(buf[:n], pdfMagic), nil
}
