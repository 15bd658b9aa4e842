package main

import (
	"context"

	svg2pdf "github.com/alnah/go-svg2pdf"
)

// Converter is the interface for the conversion library.
type Converter interface {
	Convert(ctx context.Context, input svg2pdf.Input) (*svg2pdf.ConvertResult, error)
	Close() error
}

// Compile-time interface implementation check.
var _ Converter = (*svg2pdf.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire() (Converter, error)
	Release(Converter)
	Size() int
	Close() error
}

// PoolFactory builds a Pool of the given size with library options.
// Production uses newLibraryPool; tests substitute fakes.
type PoolFactory func(size int, opts ...svg2pdf.Option) Pool

// libraryPool adapts svg2pdf.ConverterPool to the CLI Pool interface.
type libraryPool struct {
	pool *svg2pdf.ConverterPool
}

// Compile-time check that libraryPool implements Pool.
var _ Pool = (*libraryPool)(nil)

// newLibraryPool creates the production pool backed by svg2pdf.ConverterPool.
func newLibraryPool(size int, opts ...svg2pdf.Option) Pool {
	return &libraryPool{pool: svg2pdf.NewConverterPool(size, opts...)}
}

func (p *libraryPool) Acquire() (Converter, error) {
	return p.pool.Acquire()
}

func (p *libraryPool) Release(c Converter) {
	if conv, ok := c.(*svg2pdf.Converter); ok {
		p.pool.Release(conv)
	}
}

func (p *libraryPool) Size() int {
	return p.pool.Size()
}

func (p *libraryPool) Close() error {
	return p.pool.Close()
}
