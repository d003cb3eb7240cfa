package main

import (
	"context"

	mdmath "github.com/alnah/go-mdmath"
)

// CLIConverter is the part of mdmath.Converter the commands use.
type CLIConverter interface {
	Convert(ctx context.Context, input mdmath.Input) (*mdmath.ConvertResult, error)
	RenderFragment(ctx context.Context, markdown string) (string, error)
}

// Compile-time interface implementation check.
var _ CLIConverter = (*mdmath.Converter)(nil)

// Pool abstracts converter pool operations for testability.
type Pool interface {
	Acquire(ctx context.Context) (CLIConverter, error)
	Release(CLIConverter)
	Size() int
	Close() error
}

// poolAdapter adapts mdmath.ConverterPool to the Pool interface.
type poolAdapter struct {
	pool *mdmath.ConverterPool
}

// Compile-time check that poolAdapter implements Pool.
var _ Pool = (*poolAdapter)(nil)

func newConverterPool(size int, opts ...mdmath.Option) Pool {
	return &poolAdapter{pool: mdmath.NewConverterPool(size, opts...)}
}

func (a *poolAdapter) Acquire(ctx context.Context) (CLIConverter, error) {
	conv, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// Release ignores converters the pool did not hand out.
func (a *poolAdapter) Release(c CLIConverter) {
	if conv, ok := c.(*mdmath.Converter); ok {
		a.pool.Release(conv)
	}
}

func (a *poolAdapter) Size() int {
	return a.pool.Size()
}

func (a *poolAdapter) Close() error {
	return a.pool.Close()
}

// poolRenderer renders fragments on pooled converters, so concurrent
// requests spread across typesetting engines.
type poolRenderer struct {
	pool Pool
}

func (r *poolRenderer) RenderFragment(ctx context.Context, markdown string) (string, error) {
	conv, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer r.pool.Release(conv)
	return conv.RenderFragment(ctx, markdown)
}
