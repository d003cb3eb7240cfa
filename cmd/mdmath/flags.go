package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdmath/internal/config"
)

// ErrUsage marks invalid command-line usage.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// styleFlags holds stylesheet flags.
type styleFlags struct {
	style     string // Name, path, or raw CSS for the document stylesheet
	css       string // Extra CSS file appended after the style
	assetPath string // Directory overriding built-in styles
	highlight string // Chroma style for code blocks
	noStyle   bool
}

// mathFlags holds typesetting flags.
type mathFlags struct {
	macros       []string // NAME=BODY
	numbering    bool
	cacheSize    int64
	cacheSizeSet bool
	recognizers  []string
	hardWraps    bool
}

// pageFlags holds PDF page layout flags.
type pageFlags struct {
	size        string
	orientation string
	margin      float64
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	workers  int
	timeout  string
	title    string
	fragment bool
	pdf      bool
	html     bool // with --pdf, also keep the HTML
	style    styleFlags
	page     pageFlags
	math     mathFlags
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common        commonFlags
	addr          string
	maxBodyBytes  int64
	renderTimeout string
	workers       int
	math          mathFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show timing and typesetting diagnostics")
}

// addStyleFlags adds stylesheet flags to a FlagSet.
func addStyleFlags(fs *flag.FlagSet, f *styleFlags) {
	fs.StringVarP(&f.style, "style", "s", "", "style name or CSS file path")
	fs.StringVar(&f.css, "css", "", "extra CSS file appended after the style")
	fs.StringVar(&f.assetPath, "asset-path", "", "directory with styles/{name}.css overrides")
	fs.StringVar(&f.highlight, "highlight", "", "code highlighting style (see 'mdmath styles')")
	fs.BoolVar(&f.noStyle, "no-style", false, "disable the document stylesheet")
}

// addMathFlags adds typesetting flags to a FlagSet.
func addMathFlags(fs *flag.FlagSet, f *mathFlags) {
	fs.StringArrayVarP(&f.macros, "macro", "m", nil, `TeX macro as NAME=BODY, e.g. '\R=\mathbb{R}' (repeatable)`)
	fs.BoolVar(&f.numbering, "numbering", false, "number display equations")
	fs.Int64Var(&f.cacheSize, "cache-size", 0, "typeset cache entries (0 disables)")
	fs.StringSliceVar(&f.recognizers, "recognizers", nil, "math recognizers in priority order: blockMath,displayMath,inlineMath")
	fs.BoolVar(&f.hardWraps, "hard-wraps", false, "render single newlines as line breaks")
}

// addPageFlags adds PDF page layout flags to a FlagSet.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.StringVarP(&f.size, "page-size", "p", "", "page size: letter, a4, legal")
	fs.StringVar(&f.orientation, "orientation", "", "page orientation: portrait, landscape")
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, stderr io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF page load timeout (e.g. 30s, 2m)")
	fs.StringVar(&f.title, "title", "", "document title (\"\" = first heading, then file name)")
	fs.BoolVarP(&f.fragment, "fragment", "f", false, "write an HTML fragment, not a full document")
	fs.BoolVar(&f.pdf, "pdf", false, "write PDF (requires Chrome)")
	fs.BoolVar(&f.html, "html", false, "with --pdf, also write the HTML")

	addCommonFlags(fs, &f.common)
	addStyleFlags(fs, &f.style)
	addMathFlags(fs, &f.math)
	addPageFlags(fs, &f.page)

	fs.Usage = func() { printConvertUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, usageError(err)
	}
	f.math.cacheSizeSet = fs.Changed("cache-size")

	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &serveFlags{}

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default "+config.DefaultAddr+")")
	fs.Int64Var(&f.maxBodyBytes, "max-body", 0, "maximum request body in bytes")
	fs.StringVar(&f.renderTimeout, "render-timeout", "", "per-request render timeout (e.g. 5s)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel renderers (0 = auto)")

	addCommonFlags(fs, &f.common)
	addMathFlags(fs, &f.math)

	fs.Usage = func() { printServeUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, usageError(err)
	}
	f.math.cacheSizeSet = fs.Changed("cache-size")

	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: serve takes no arguments, got %q", ErrUsage, strings.Join(fs.Args(), " "))
	}
	return f, nil
}

// parseMacros converts NAME=BODY pairs to a macro table.
func parseMacros(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	macros := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, body, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: --macro %q, want NAME=BODY", ErrUsage, pair)
		}
		if !strings.HasPrefix(name, `\`) {
			name = `\` + name
		}
		macros[name] = body
	}
	return macros, nil
}

// usageError wraps flag parse errors, leaving --help recognizable.
func usageError(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrUsage, err)
}
