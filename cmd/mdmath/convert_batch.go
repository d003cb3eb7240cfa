package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	mdmath "github.com/alnah/go-mdmath"
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := min(pool.Size(), len(files))

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv, err := pool.Acquire(ctx)
			if err != nil {
				// Converter creation failed, mark remaining jobs as failed
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile processes a single file and returns the result.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams) ConversionResult {
	start := time.Now()
	result := ConversionResult{InputPath: f.InputPath, OutputPath: f.OutputPath}
	fail := func(err error) ConversionResult {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		return fail(fmt.Errorf("%w: %w", ErrReadMarkdown, err))
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		return fail(fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err))
	}

	markdown := string(content)
	convResult, err := conv.Convert(ctx, mdmath.Input{
		Markdown:  markdown,
		Title:     documentTitle(params.title, markdown, f.InputPath),
		CSS:       params.css,
		SourceDir: filepath.Dir(f.InputPath),
		Fragment:  params.fragment,
		PDF:       params.pdf,
		Page:      params.page,
	})
	if err != nil {
		return fail(err)
	}

	if !params.pdf {
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(f.OutputPath, convResult.HTML, filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
		result.Duration = time.Since(start)
		return result
	}

	if params.html {
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(htmlOutputPath(f.OutputPath), convResult.HTML, filePermissions); err != nil {
			return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
		}
	}
	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, convResult.PDF, filePermissions); err != nil {
		return fail(fmt.Errorf("%w: %w", ErrWriteOutput, err))
	}

	result.Duration = time.Since(start)
	return result
}

// convertStdin converts Markdown read from standard input. The result goes
// to outputPath, or to standard output when outputPath is empty.
func convertStdin(ctx context.Context, pool Pool, outputPath string, params *conversionParams, env *Environment) error {
	content, err := io.ReadAll(env.Stdin)
	if err != nil {
		return fmt.Errorf("%w: stdin: %w", ErrReadMarkdown, err)
	}

	conv, err := pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer pool.Release(conv)

	markdown := string(content)
	result, err := conv.Convert(ctx, mdmath.Input{
		Markdown: markdown,
		Title:    documentTitle(params.title, markdown, ""),
		CSS:      params.css,
		Fragment: params.fragment,
		PDF:      params.pdf,
		Page:     params.page,
	})
	if err != nil {
		return err
	}

	out := result.HTML
	if params.pdf {
		out = result.PDF
	}

	if outputPath == "" {
		if _, err := env.Stdout.Write(out); err != nil {
			return fmt.Errorf("%w: stdout: %w", ErrWriteOutput, err)
		}
		return nil
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err)
		}
	}
	// #nosec G306 -- output files are meant to be readable
	if err := os.WriteFile(outputPath, out, filePermissions); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResults outputs conversion results and returns the failure count.
func printResults(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.InputPath, r.Err)
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%v)\n", r.InputPath, r.OutputPath, r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}
