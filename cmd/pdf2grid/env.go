package main

import (
	"io"
	"os"
	"time"

	"github.com/alnah/go-pdf2grid"
)

// PoolFactory builds the converter pool for a batch.
type PoolFactory func(size int, opts ...pdf2grid.Option) (Pool, error)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, and converter pool construction.
type Environment struct {
	Now     func() time.Time
	Stdout  io.Writer
	Stderr  io.Writer
	NewPool PoolFactory
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		NewPool: newConverterPool,
	}
}
