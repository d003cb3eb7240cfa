package mdmath

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/alnah/go-mdmath/internal/assets"
	"github.com/alnah/go-mdmath/internal/fileutil"
	"github.com/alnah/go-mdmath/internal/mathext"
	"github.com/alnah/go-mdmath/internal/pipeline"
	"github.com/alnah/go-mdmath/internal/typeset"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.MarkdownPreprocessor = (*pipeline.CommonMarkPreprocessor)(nil)
	_ pipeline.HTMLConverter        = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector          = (*pipeline.CSSInjection)(nil)
	_ pdfConverter                  = (*rodConverter)(nil)
)

// styleNone disables the document stylesheet.
const styleNone = "none"

// firstHeading matches an ATX level-one heading.
var firstHeading = regexp.MustCompile(`(?m)^ {0,3}#[ \t]+(.+?)[ \t#]*$`)

// Converter orchestrates the Markdown-to-HTML (and PDF) pipeline.
// Create with NewConverter, use Convert or RenderFragment, and Close when done.
type Converter struct {
	cfg           converterConfig
	assetLoader   assets.StyleLoader
	preprocessor  pipeline.MarkdownPreprocessor
	htmlConverter pipeline.HTMLConverter
	cssInjector   pipeline.CSSInjector
	pdfConverter  pdfConverter

	stylesheet   string // resolved converter style
	highlightCSS string

	// numbered is set when display equations are numbered; each document
	// then gets its own goldmark converter and equation counter.
	numbered *numberedMath
}

// numberedMath holds what a per-document converter shares across documents.
type numberedMath struct {
	inline  typeset.Engine
	setOpts []mathext.Option
}

// NewConverter creates a Converter. Options are applied over the defaults:
// the "default" style, "github" code highlighting, a treeblood MathML
// typesetter with a cache of typeset.DefaultCacheSize entries, and all
// three math recognizers.
func NewConverter(opts ...Option) (*Converter, error) {
	cfg := converterConfig{
		timeout:    defaultTimeout,
		styleInput: assets.DefaultStyle,
		highlight:  pipeline.DefaultHighlightStyle,
		cacheSize:  typeset.DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	c := &Converter{
		cfg:          cfg,
		preprocessor: &pipeline.CommonMarkPreprocessor{},
		cssInjector:  &pipeline.CSSInjection{},
	}

	resolver, err := assets.NewAssetResolver(cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetPath, err)
	}
	c.assetLoader = resolver

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}
	if cfg.highlight != "" {
		css, err := pipeline.HighlightCSS(cfg.highlight)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHighlightStyle, cfg.highlight)
		}
		c.highlightCSS = css
	}

	engine, err := newMathEngine(cfg)
	if err != nil {
		return nil, err
	}
	setOpts, err := mathSetOptions(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.numbering && cfg.typesetter == nil {
		c.numbered = &numberedMath{inline: engine, setOpts: setOpts}
	}
	c.htmlConverter = pipeline.NewGoldmarkConverter(mathext.NewSet(engine, setOpts...), pipeline.WithHardWraps(cfg.hardWraps))
	c.pdfConverter = newRodConverter(cfg.timeout)

	return c, nil
}

// newMathEngine builds the typesetting engine, cached unless cfg disables it.
// Numbering is left to the per-document engines of documentConverter.
func newMathEngine(cfg converterConfig) (typeset.Engine, error) {
	var engine typeset.Engine
	if cfg.typesetter != nil {
		fn := cfg.typesetter
		engine = typeset.EngineFunc(func(expr string, mode typeset.Mode) (string, error) {
			return fn(expr, mode == typeset.Display)
		})
	} else {
		engine = typeset.NewTreeblood(cfg.macros, false)
	}

	switch {
	case cfg.cacheSize < 0:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCacheSize, cfg.cacheSize)
	case cfg.cacheSize > 0:
		cached, err := typeset.NewCached(engine, cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCacheSize, err)
		}
		engine = cached
	}
	return engine, nil
}

// mathSetOptions translates the configured logger and recognizer order.
func mathSetOptions(cfg converterConfig) ([]mathext.Option, error) {
	setOpts := []mathext.Option{mathext.WithLogger(cfg.logger)}
	if cfg.recognizers != nil {
		kinds := make([]mathext.Kind, 0, len(cfg.recognizers))
		for _, name := range cfg.recognizers {
			kind := mathext.Kind(name)
			if !isRecognizer(kind) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownRecognizer, name)
			}
			kinds = append(kinds, kind)
		}
		setOpts = append(setOpts, mathext.WithOrder(kinds...))
	}
	return setOpts, nil
}

// documentConverter returns the HTML converter for one document. With
// numbering, display equations go to a fresh uncached treeblood document
// so every document counts from (1); inline math still uses the cache.
func (c *Converter) documentConverter() pipeline.HTMLConverter {
	if c.numbered == nil {
		return c.htmlConverter
	}
	engine := typeset.ByMode{
		Inline:  c.numbered.inline,
		Display: typeset.NewTreeblood(c.cfg.macros, true),
	}
	set := mathext.NewSet(engine, c.numbered.setOpts...)
	return pipeline.NewGoldmarkConverter(set, pipeline.WithHardWraps(c.cfg.hardWraps))
}

func isRecognizer(kind mathext.Kind) bool {
	for _, k := range mathext.DefaultOrder {
		if k == kind {
			return true
		}
	}
	return false
}

// Convert runs the pipeline and returns the HTML and, if requested, the PDF.
// The context is used for cancellation and timeout.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateInput(input); err != nil {
		return nil, err
	}

	mdContent := c.preprocessor.PreprocessMarkdown(ctx, input.Markdown)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	htmlConverter := c.documentConverter()
	if input.Fragment {
		fragment, err := htmlConverter.ToFragment(ctx, mdContent)
		if err != nil {
			return nil, wrapHTMLError(err)
		}
		return &ConvertResult{HTML: []byte(fragment)}, nil
	}

	title := input.Title
	if title == "" {
		title = extractTitle(mdContent)
	}
	htmlContent, err := htmlConverter.ToHTML(ctx, mdContent, title)
	if err != nil {
		return nil, wrapHTMLError(err)
	}

	if input.SourceDir != "" {
		htmlContent, err = pipeline.RewriteRelativePaths(htmlContent, input.SourceDir)
		if err != nil {
			return nil, fmt.Errorf("rewriting relative paths: %w", err)
		}
	}

	// Converter style first, user CSS last so it can override.
	htmlContent = c.cssInjector.InjectCSS(ctx, htmlContent, c.stylesheet, c.highlightCSS, input.CSS)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	res := &ConvertResult{HTML: []byte(htmlContent)}
	if !input.PDF {
		return res, nil
	}

	pdfBytes, err := c.pdfConverter.ToPDF(ctx, htmlContent, input.Page)
	if err != nil {
		return nil, fmt.Errorf("converting to PDF: %w", err)
	}
	res.PDF = pdfBytes
	return res, nil
}

// RenderFragment converts Markdown to an HTML fragment, such as the body of
// a chat message. It is safe for concurrent use.
func (c *Converter) RenderFragment(ctx context.Context, markdown string) (string, error) {
	result, err := c.Convert(ctx, Input{Markdown: markdown, Fragment: true})
	if err != nil {
		return "", err
	}
	return string(result.HTML), nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, CSS content, or "none")
// to CSS content.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	switch {
	case input == "" || input == styleNone:
		return nil

	case fileutil.IsCSS(input):
		c.stylesheet = input
		return nil

	case fileutil.IsFilePath(input):
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.stylesheet = string(content)
		return nil
	}

	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		if errors.Is(err, assets.ErrStyleNotFound) || errors.Is(err, assets.ErrInvalidAssetName) {
			return fmt.Errorf("%w: %q", ErrStyleNotFound, input)
		}
		return fmt.Errorf("loading style %q: %w", input, err)
	}
	c.stylesheet = css
	return nil
}

// validateInput checks that required fields are present and valid.
func validateInput(input Input) error {
	if strings.TrimSpace(input.Markdown) == "" {
		return ErrEmptyMarkdown
	}
	if input.Fragment && input.PDF {
		return ErrFragmentPDF
	}
	return input.Page.Validate()
}

// wrapHTMLError maps pipeline conversion errors to ErrHTMLConversion,
// leaving context errors recognizable.
func wrapHTMLError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrHTMLConversion, err)
}

// extractTitle returns the text of the first level-one heading, or "".
func extractTitle(markdown string) string {
	if m := firstHeading.FindStringSubmatch(markdown); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
