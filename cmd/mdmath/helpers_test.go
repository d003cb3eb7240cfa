package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	mdmath "github.com/alnah/go-mdmath"
)

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// mockConverter echoes its input so tests can check what reached it.
type mockConverter struct {
	mu     sync.Mutex
	inputs []mdmath.Input
	err    error
}

func (m *mockConverter) Convert(_ context.Context, input mdmath.Input) (*mdmath.ConvertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)
	if m.err != nil {
		return nil, m.err
	}
	result := &mdmath.ConvertResult{HTML: []byte("title=" + input.Title + "\n" + input.Markdown)}
	if input.PDF {
		result.PDF = []byte("%PDF-1.7 " + input.Title)
	}
	return result, nil
}

func (m *mockConverter) RenderFragment(_ context.Context, markdown string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "<p>" + markdown + "</p>\n", nil
}

func (m *mockConverter) calls() []mdmath.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mdmath.Input(nil), m.inputs...)
}

// mockPool hands out a single shared mockConverter.
type mockPool struct {
	mu         sync.Mutex
	conv       *mockConverter
	size       int
	acquireErr error
	acquired   int
	released   int
	closed     bool
}

func newMockPool(size int) *mockPool {
	return &mockPool{conv: &mockConverter{}, size: size}
}

func (p *mockPool) Acquire(ctx context.Context) (CLIConverter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	p.acquired++
	return p.conv, nil
}

func (p *mockPool) Release(CLIConverter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *mockPool) Size() int { return p.size }

func (p *mockPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// testEnv is an Environment over buffers and a fixed variable table.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	mu        sync.Mutex
	pools     []*mockPool
	poolSizes []int
	poolOpts  [][]mdmath.Option
	convErr   error
	poolErr   error
}

func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()
	te := &testEnv{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	te.Environment = &Environment{
		Stdin:           strings.NewReader(""),
		Stdout:          te.stdout,
		Stderr:          te.stderr,
		StdinIsTerminal: func() bool { return true },
		Getenv:          func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewPool: func(size int, opts ...mdmath.Option) Pool {
			te.mu.Lock()
			defer te.mu.Unlock()
			p := newMockPool(size)
			p.conv.err = te.convErr
			p.acquireErr = te.poolErr
			te.pools = append(te.pools, p)
			te.poolSizes = append(te.poolSizes, size)
			te.poolOpts = append(te.poolOpts, opts)
			return p
		},
	}
	return te
}

// pipeStdin makes the environment look like markdown piped on stdin.
func (te *testEnv) pipeStdin(content string) {
	te.Stdin = strings.NewReader(content)
	te.StdinIsTerminal = func() bool { return false }
}

func (te *testEnv) lastPool(t *testing.T) *mockPool {
	t.Helper()
	te.mu.Lock()
	defer te.mu.Unlock()
	if len(te.pools) == 0 {
		t.Fatal("no pool was created")
	}
	return te.pools[len(te.pools)-1]
}

var errBoom = errors.New("boom")
