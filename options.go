package mdmath

import (
	"log/slog"
	"maps"
	"time"
)

// defaultTimeout bounds page loading during PDF rendering.
const defaultTimeout = 30 * time.Second

// TypesetFunc typesets one TeX expression to HTML. display selects display
// style over inline (text) style. A returned error makes the expression
// appear as its source text.
type TypesetFunc func(expr string, display bool) (string, error)

// Option configures a Converter.
type Option func(*converterConfig)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	styleInput  string // style name, file path, CSS content, or "none"
	assetPath   string
	highlight   string
	macros      map[string]string
	numbering   bool
	cacheSize   int64
	recognizers []string
	hardWraps   bool
	typesetter  TypesetFunc
	logger      *slog.Logger
}

// WithTimeout sets the page load timeout for PDF rendering.
func WithTimeout(d time.Duration) Option {
	return func(c *converterConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithStyle sets the document stylesheet. The value is a built-in style
// name ("default", "minimal"), a path to a CSS file, raw CSS content, or
// "none" for no stylesheet.
func WithStyle(style string) Option {
	return func(c *converterConfig) {
		c.styleInput = style
	}
}

// WithAssetPath sets a directory whose styles/{name}.css files take
// precedence over the built-in styles.
func WithAssetPath(path string) Option {
	return func(c *converterConfig) {
		c.assetPath = path
	}
}

// WithHighlightStyle sets the chroma style for fenced code blocks.
// An empty name disables code highlighting CSS.
func WithHighlightStyle(name string) Option {
	return func(c *converterConfig) {
		c.highlight = name
	}
}

// WithMacros defines TeX macros available to every expression,
// e.g. {`\R`: `\mathbb{R}`}.
func WithMacros(macros map[string]string) Option {
	return func(c *converterConfig) {
		c.macros = maps.Clone(macros)
	}
}

// WithNumbering numbers display equations.
func WithNumbering(enabled bool) Option {
	return func(c *converterConfig) {
		c.numbering = enabled
	}
}

// WithCacheSize sets how many typeset expressions are cached.
// Zero disables the cache; negative values are rejected by NewConverter.
func WithCacheSize(n int64) Option {
	return func(c *converterConfig) {
		c.cacheSize = n
	}
}

// WithRecognizers enables only the named math recognizers, in priority
// order. See the Recognizer constants.
func WithRecognizers(names ...string) Option {
	return func(c *converterConfig) {
		c.recognizers = append([]string(nil), names...)
	}
}

// WithHardWraps renders single newlines inside paragraphs as line breaks.
func WithHardWraps(enabled bool) Option {
	return func(c *converterConfig) {
		c.hardWraps = enabled
	}
}

// WithTypesetter replaces the built-in MathML typesetter.
func WithTypesetter(fn TypesetFunc) Option {
	return func(c *converterConfig) {
		c.typesetter = fn
	}
}

// WithLogger sets the logger for diagnostics, such as expressions that
// failed to typeset. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *converterConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}
