package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no input specified")
	ErrReadCSS            = errors.New("failed to read CSS file")
	ErrReadMarkdown       = errors.New("failed to read markdown file")
	ErrWriteOutput        = errors.New("failed to write output file")
	ErrInvalidExtension   = errors.New("file must have a markdown extension (.md, .markdown, .mdown, .mkd)")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidTimeout     = errors.New("invalid timeout")
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// conversionParams groups parameters shared across batch/file conversion.
type conversionParams struct {
	css      string
	title    string
	fragment bool
	pdf      bool
	html     bool
	page     *mdmath.PageSettings
}

// extension returns the primary output extension.
func (p *conversionParams) extension() string {
	if p.pdf {
		return ".pdf"
	}
	return ".html"
}

// runConvertCmd parses convert flags and runs the conversion.
func runConvertCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	return runConvert(ctx, positional, flags, env)
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(flags.common.config, envCfg)
	if err != nil {
		return err
	}
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Document.Fragment && cfg.PDF.Enabled {
		return mdmath.ErrFragmentPDF
	}

	timeout, err := resolveTimeout(flags.timeout, cfg)
	if err != nil {
		return err
	}
	extraCSS, err := readExtraCSS(flags.style.css)
	if err != nil {
		return err
	}

	params := &conversionParams{
		css:      extraCSS,
		title:    cfg.Document.Title,
		fragment: cfg.Document.Fragment,
		pdf:      cfg.PDF.Enabled,
		html:     flags.html,
		page:     buildPageSettings(cfg),
	}

	logger := newLogger(env.Stderr, flags.common.verbose)
	opts := converterOptions(cfg, flags.math, logger)
	if timeout > 0 {
		opts = append(opts, mdmath.WithTimeout(timeout))
	}

	inputs, err := resolveInputPaths(positional, cfg)
	if errors.Is(err, ErrNoInput) && !env.StdinIsTerminal() {
		pool := env.NewPool(1, opts...)
		defer pool.Close()
		return convertStdin(ctx, pool, flags.output, params, env)
	}
	if err != nil {
		return err
	}

	outputDir := resolveOutputDir(flags.output, cfg)
	var files []FileToConvert
	for _, input := range inputs {
		found, err := discoverFiles(input, outputDir, params.extension())
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, strings.Join(inputs, ", "))
	}

	poolSize := min(mdmath.ResolvePoolSize(resolveWorkers(flags.workers, envCfg)), len(files))
	if flags.common.verbose {
		fmt.Fprintf(env.Stderr, "Converting %d file(s) with %d worker(s)\n", len(files), poolSize)
	}
	pool := env.NewPool(poolSize, opts...)
	defer pool.Close()

	results := convertBatch(ctx, pool, files, params)

	failedCount := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return fmt.Errorf("%d conversion(s) failed: %w", failedCount, firstError(results))
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.style.noStyle {
		cfg.CSS.Style = "none"
	} else if flags.style.style != "" {
		cfg.CSS.Style = flags.style.style
	}
	if flags.style.highlight != "" {
		cfg.CSS.Highlight = flags.style.highlight
	}
	if flags.style.assetPath != "" {
		cfg.Assets.BasePath = flags.style.assetPath
	}

	if flags.title != "" {
		cfg.Document.Title = flags.title
	}
	if flags.fragment {
		cfg.Document.Fragment = true
	}
	if flags.pdf {
		cfg.PDF.Enabled = true
	}

	if flags.page.size != "" {
		cfg.PDF.Page.Size = flags.page.size
	}
	if flags.page.orientation != "" {
		cfg.PDF.Page.Orientation = flags.page.orientation
	}
	if flags.page.margin != 0 {
		cfg.PDF.Page.Margin = flags.page.margin
	}

	return mergeMathFlags(&flags.math, cfg)
}

// mergeMathFlags merges typesetting flags into config.
func mergeMathFlags(f *mathFlags, cfg *config.Config) error {
	macros, err := parseMacros(f.macros)
	if err != nil {
		return err
	}
	if len(macros) > 0 {
		merged := maps.Clone(cfg.Math.Macros)
		if merged == nil {
			merged = make(map[string]string, len(macros))
		}
		maps.Copy(merged, macros)
		cfg.Math.Macros = merged
	}
	if f.numbering {
		cfg.Math.Numbering = true
	}
	if len(f.recognizers) > 0 {
		cfg.Math.Recognizers = f.recognizers
	}
	if f.hardWraps {
		cfg.Document.HardWraps = true
	}
	return nil
}

// converterOptions builds converter options from the merged config.
// An explicit --cache-size wins; a config cache size of 0 keeps the default.
func converterOptions(cfg *config.Config, f mathFlags, logger *slog.Logger) []mdmath.Option {
	opts := []mdmath.Option{
		mdmath.WithStyle(cfg.CSS.Style),
		mdmath.WithHighlightStyle(cfg.CSS.Highlight),
		mdmath.WithAssetPath(cfg.Assets.BasePath),
		mdmath.WithMacros(cfg.Math.Macros),
		mdmath.WithNumbering(cfg.Math.Numbering),
		mdmath.WithHardWraps(cfg.Document.HardWraps),
		mdmath.WithLogger(logger),
	}
	switch {
	case f.cacheSizeSet:
		opts = append(opts, mdmath.WithCacheSize(f.cacheSize))
	case cfg.Math.CacheSize > 0:
		opts = append(opts, mdmath.WithCacheSize(cfg.Math.CacheSize))
	}
	if len(cfg.Math.Recognizers) > 0 {
		opts = append(opts, mdmath.WithRecognizers(cfg.Math.Recognizers...))
	}
	return opts
}

// newLogger returns a text logger on w: debug level with verbose, warnings otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newInfoLogger returns a text logger on w at info level, for the server's
// startup messages.
func newInfoLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// resolveTimeout parses the --timeout flag, falling back to the config value.
func resolveTimeout(flagValue string, cfg *config.Config) (time.Duration, error) {
	if flagValue == "" {
		return cfg.PDF.Timeout, nil
	}
	d, err := time.ParseDuration(flagValue)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, flagValue)
	}
	return d, nil
}

// readExtraCSS reads the --css file, if any.
func readExtraCSS(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrReadCSS, err)
	}
	return string(content), nil
}

// buildPageSettings returns PDF page settings from config, or nil for defaults.
func buildPageSettings(cfg *config.Config) *mdmath.PageSettings {
	p := cfg.PDF.Page
	if p.Size == "" && p.Orientation == "" && p.Margin == 0 {
		return nil
	}
	ps := mdmath.DefaultPageSettings()
	if p.Size != "" {
		ps.Size = strings.ToLower(p.Size)
	}
	if p.Orientation != "" {
		ps.Orientation = strings.ToLower(p.Orientation)
	}
	if p.Margin != 0 {
		ps.Margin = p.Margin
	}
	return ps
}

// resolveInputPaths determines the input paths from args or config.
func resolveInputPaths(args []string, cfg *config.Config) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if cfg.Input.DefaultDir != "" {
		return []string{cfg.Input.DefaultDir}, nil
	}
	return nil, ErrNoInput
}

// resolveOutputDir determines the output directory from flag or config.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > mdmath.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, mdmath.MaxPoolSize)
	}
	return nil
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// extractFirstHeading extracts the first # heading from markdown content.
func extractFirstHeading(markdown string) string {
	matches := firstHeadingPattern.FindStringSubmatch(markdown)
	if len(matches) >= 2 {
		return strings.TrimSpace(strings.TrimRight(matches[1], "# \t"))
	}
	return ""
}

// documentTitle picks the <title>: configured title, first heading, then
// the file name without extension.
func documentTitle(configured, markdown, path string) string {
	if configured != "" {
		return configured
	}
	if h := extractFirstHeading(markdown); h != "" {
		return h
	}
	if path == "" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// firstError returns the first conversion error.
func firstError(results []ConversionResult) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}
