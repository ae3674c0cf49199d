package main

import (
	"context"

	"github.com/alnah/go-pdf2grid"
)

// GridConverter is the interface for the conversion service.
type GridConverter interface {
	Convert(ctx context.Context, input pdf2grid.Input) (*pdf2grid.ConvertResult, error)
}

// Compile-time interface implementation checks.
var (
	_ GridConverter = (*pdf2grid.Converter)(nil)
	_ Pool          = (*converterPool)(nil)
)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (GridConverter, error)
	Release(GridConverter)
	Size() int
	Close() error
}

// converterPool adapts pdf2grid.ConverterPool to Pool.
type converterPool struct {
	pool *pdf2grid.ConverterPool
}

// newConverterPool is the production PoolFactory.
func newConverterPool(size int, opts ...pdf2grid.Option) (Pool, error) {
	p, err := pdf2grid.NewConverterPool(size, opts...)
	if err != nil {
		return nil, err
	}
	return &converterPool{pool: p}, nil
}

// Acquire gets a converter, blocking while all are in use.
func (p *converterPool) Acquire() (GridConverter, error) {
	c, err := p.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Release returns a converter obtained from Acquire.
func (p *converterPool) Release(c GridConverter) {
	if conv, ok := c.(*pdf2grid.Converter); ok {
		p.pool.Release(conv)
	}
}

// Size returns the pool capacity.
func (p *converterPool) Size() int { return p.pool.Size() }

// Close releases every converter.
func (p *converterPool) Close() error { return p.pool.Close() }
