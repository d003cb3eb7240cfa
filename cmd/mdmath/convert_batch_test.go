package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdmath "github.com/alnah/go-mdmath"
)

// ---------------------------------------------------------------------------
// TestConvertFile - Single file conversion
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("html", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := filepath.Join(dir, "doc.md")
		out := filepath.Join(dir, "out", "nested", "doc.html")
		writeFile(t, in, "# Doc\n\n$$E$$\n")

		conv := &mockConverter{}
		params := &conversionParams{css: "p{}", page: mdmath.DefaultPageSettings()}
		result := convertFile(context.Background(), conv, FileToConvert{InputPath: in, OutputPath: out}, params)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		got, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "title=Doc\n# Doc\n\n$$E$$\n" {
			t.Errorf("output = %q", got)
		}

		input := conv.calls()[0]
		if input.SourceDir != dir || input.CSS != "p{}" || input.PDF || input.Page == nil {
			t.Errorf("input = %+v", input)
		}
	})

	t.Run("pdf with html", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := filepath.Join(dir, "doc.md")
		out := filepath.Join(dir, "doc.pdf")
		writeFile(t, in, "body")

		params := &conversionParams{title: "Fixed", pdf: true, html: true}
		result := convertFile(context.Background(), &mockConverter{}, FileToConvert{InputPath: in, OutputPath: out}, params)
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}

		pdf, err := os.ReadFile(out)
		if err != nil || string(pdf) != "%PDF-1.7 Fixed" {
			t.Errorf("pdf = %q, %v", pdf, err)
		}
		html, err := os.ReadFile(filepath.Join(dir, "doc.html"))
		if err != nil || string(html) != "title=Fixed\nbody" {
			t.Errorf("html = %q, %v", html, err)
		}
	})

	t.Run("pdf only", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := filepath.Join(dir, "doc.md")
		writeFile(t, in, "body")

		result := convertFile(context.Background(), &mockConverter{},
			FileToConvert{InputPath: in, OutputPath: filepath.Join(dir, "doc.pdf")}, &conversionParams{pdf: true})
		if result.Err != nil {
			t.Fatalf("unexpected error: %v", result.Err)
		}
		if _, err := os.Stat(filepath.Join(dir, "doc.html")); !os.IsNotExist(err) {
			t.Error("html should not be written without --html")
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		result := convertFile(context.Background(), &mockConverter{},
			FileToConvert{InputPath: filepath.Join(dir, "missing.md"), OutputPath: filepath.Join(dir, "x.html")}, &conversionParams{})
		if !errors.Is(result.Err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown", result.Err)
		}
	})

	t.Run("converter error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		in := filepath.Join(dir, "doc.md")
		writeFile(t, in, "body")

		result := convertFile(context.Background(), &mockConverter{err: mdmath.ErrPageLoad},
			FileToConvert{InputPath: in, OutputPath: filepath.Join(dir, "doc.pdf")}, &conversionParams{pdf: true})
		if !errors.Is(result.Err, mdmath.ErrPageLoad) {
			t.Errorf("error = %v, want ErrPageLoad", result.Err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Concurrent batch conversion
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []FileToConvert
	for i := range 10 {
		in := filepath.Join(dir, fmt.Sprintf("doc%d.md", i))
		writeFile(t, in, fmt.Sprintf("# Doc %d\n", i))
		files = append(files, FileToConvert{InputPath: in, OutputPath: filepath.Join(dir, fmt.Sprintf("doc%d.html", i))})
	}

	pool := newMockPool(3)
	results := convertBatch(context.Background(), pool, files, &conversionParams{})

	if len(results) != len(files) {
		t.Fatalf("got %d results, want %d", len(results), len(files))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result %d: %v", i, r.Err)
		}
		if r.InputPath != files[i].InputPath {
			t.Errorf("result %d is for %s, want %s", i, r.InputPath, files[i].InputPath)
		}
	}
	if pool.acquired != 3 || pool.released != 3 {
		t.Errorf("acquired/released = %d/%d, want 3/3", pool.acquired, pool.released)
	}
}

func TestConvertBatch_Empty(t *testing.T) {
	t.Parallel()

	if results := convertBatch(context.Background(), newMockPool(2), nil, &conversionParams{}); results != nil {
		t.Errorf("convertBatch(nil) = %v, want nil", results)
	}
}

func TestConvertBatch_AcquireError(t *testing.T) {
	t.Parallel()

	files := []FileToConvert{{InputPath: "a.md"}, {InputPath: "b.md"}}
	pool := newMockPool(2)
	pool.acquireErr = errBoom

	results := convertBatch(context.Background(), pool, files, &conversionParams{})
	for _, r := range results {
		if !errors.Is(r.Err, errBoom) {
			t.Errorf("%s: error = %v, want boom", r.InputPath, r.Err)
		}
	}
}

func TestConvertBatch_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	in := filepath.Join(dir, "doc.md")
	writeFile(t, in, "x")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := newMockPool(1)
	results := convertBatch(ctx, pool, []FileToConvert{{InputPath: in, OutputPath: filepath.Join(dir, "doc.html")}}, &conversionParams{})
	if !errors.Is(results[0].Err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", results[0].Err)
	}
	if len(pool.conv.calls()) != 0 {
		t.Error("converter should not run after cancellation")
	}
}

// ---------------------------------------------------------------------------
// TestConvertStdin - Piped conversion
// ---------------------------------------------------------------------------

func TestConvertStdin(t *testing.T) {
	t.Parallel()

	t.Run("to stdout", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.Stdin = strings.NewReader("# Piped\n")
		pool := newMockPool(1)

		if err := convertStdin(context.Background(), pool, "", &conversionParams{fragment: true}, env.Environment); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if env.stdout.String() != "title=Piped\n# Piped\n" {
			t.Errorf("stdout = %q", env.stdout.String())
		}
		if input := pool.conv.calls()[0]; !input.Fragment || input.SourceDir != "" {
			t.Errorf("input = %+v", input)
		}
		if pool.released != 1 {
			t.Errorf("released = %d, want 1", pool.released)
		}
	})

	t.Run("pdf to file", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.Stdin = strings.NewReader("body")
		out := filepath.Join(t.TempDir(), "new", "doc.pdf")

		err := convertStdin(context.Background(), newMockPool(1), out, &conversionParams{title: "T", pdf: true}, env.Environment)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(out)
		if err != nil || string(got) != "%PDF-1.7 T" {
			t.Errorf("output = %q, %v", got, err)
		}
		if env.stdout.Len() != 0 {
			t.Errorf("stdout should be empty, got %q", env.stdout.String())
		}
	})

	t.Run("converter error", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, nil)
		env.Stdin = strings.NewReader("")
		pool := newMockPool(1)
		pool.conv.err = mdmath.ErrEmptyMarkdown

		err := convertStdin(context.Background(), pool, "", &conversionParams{}, env.Environment)
		if !errors.Is(err, mdmath.ErrEmptyMarkdown) {
			t.Errorf("error = %v, want ErrEmptyMarkdown", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintResults - Result reporting
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputPath: "a.html"},
		{InputPath: "b.md", OutputPath: "b.html", Err: errBoom},
	}

	tests := []struct {
		name       string
		quiet      bool
		verbose    bool
		wantStdout []string
		noStdout   bool
	}{
		{name: "normal", wantStdout: []string{"Created a.html", "1 succeeded, 1 failed"}},
		{name: "verbose", verbose: true, wantStdout: []string{"a.md -> a.html"}},
		{name: "quiet", quiet: true, noStdout: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			env := &Environment{Stdout: &stdout, Stderr: &stderr}

			if failed := printResults(results, tt.quiet, tt.verbose, env); failed != 1 {
				t.Errorf("printResults() = %d, want 1", failed)
			}
			if !strings.Contains(stderr.String(), "FAILED b.md: boom") {
				t.Errorf("stderr = %q", stderr.String())
			}
			if tt.noStdout && stdout.Len() != 0 {
				t.Errorf("stdout should be empty, got %q", stdout.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout should contain %q, got %q", want, stdout.String())
				}
			}
		})
	}
}

func TestCountResults(t *testing.T) {
	t.Parallel()

	got := countResults([]ConversionResult{{}, {Err: errBoom}, {}})
	if got != (ResultSummary{Succeeded: 2, Failed: 1}) {
		t.Errorf("countResults() = %+v", got)
	}
}
