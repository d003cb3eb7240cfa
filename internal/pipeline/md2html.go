package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/alnah/go-mdmath/internal/mathext"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultTitle is used when a document has no title.
const DefaultTitle = "Document"

// htmlTemplate wraps Goldmark's fragment output in a complete HTML5 document.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
</head>
<body>
%s
</body>
</html>`

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	// ToFragment converts Markdown to an HTML fragment suitable for embedding.
	ToFragment(ctx context.Context, content string) (string, error)
	// ToHTML converts Markdown to a standalone HTML5 document.
	ToHTML(ctx context.Context, content, title string) (string, error)
}

// GoldmarkOption configures a GoldmarkConverter.
type GoldmarkOption func(*goldmarkConfig)

type goldmarkConfig struct {
	hardWraps bool
}

// WithHardWraps renders single newlines inside paragraphs as <br>.
func WithHardWraps(enabled bool) GoldmarkOption {
	return func(c *goldmarkConfig) {
		c.hardWraps = enabled
	}
}

// GoldmarkConverter converts Markdown to HTML using goldmark (pure Go).
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions, syntax
// highlighting and the given math extensions. A nil math set disables math.
func NewGoldmarkConverter(math *mathext.Set, opts ...GoldmarkOption) *GoldmarkConverter {
	var cfg goldmarkConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	extensions := []goldmark.Extender{
		extension.GFM,      // Tables, strikethrough, autolinks, task lists
		extension.Footnote, // [^1] footnotes
		highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true), // styled by HighlightCSS
			),
		),
	}
	if math != nil {
		extensions = append(extensions, math)
	}

	rendererOpts := []renderer.Option{html.WithXHTML()}
	if cfg.hardWraps {
		rendererOpts = append(rendererOpts, html.WithHardWraps())
	}
	// WithUnsafe is never set: raw HTML in the source is dropped.

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkConverter{md: md}
}

// ToFragment converts Markdown content to an HTML fragment.
func (c *GoldmarkConverter) ToFragment(ctx context.Context, content string) (string, error) {
	return c.convert(ctx, content)
}

// ToHTML converts Markdown content to a standalone HTML5 document.
// An empty title is replaced by DefaultTitle.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content, title string) (string, error) {
	fragment, err := c.convert(ctx, content)
	if err != nil {
		return "", err
	}
	if title == "" {
		title = DefaultTitle
	}
	return fmt.Sprintf(htmlTemplate, util.EscapeHTML([]byte(title)), fragment), nil
}

// convert runs goldmark in a goroutine so callers can abandon it on
// cancellation; goldmark itself does not take a context.
func (c *GoldmarkConverter) convert(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, r)}
			}
		}()

		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
