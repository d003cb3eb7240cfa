package mathext

import (
	"fmt"
	"log/slog"

	"github.com/alnah/go-mdmath/internal/typeset"
)

// BlockClass is the class of the container around block math.
// Stylesheets give it horizontal scrolling for wide formulas.
const BlockClass = "math-block"

// Renderer turns a Token into HTML. Implementations never panic and
// never fail: errors become a Fallback outcome.
type Renderer interface {
	Render(tok Token) Outcome
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(tok Token) Outcome

// Render calls f(tok).
func (f RendererFunc) Render(tok Token) Outcome {
	return f(tok)
}

// BlockRenderer typesets in display mode inside a scrollable container.
func BlockRenderer(engine typeset.Engine, logger *slog.Logger) Renderer {
	return RendererFunc(func(tok Token) Outcome {
		return typesetToken(engine, logger, tok, typeset.Display, func(markup string) string {
			return `<div class="` + BlockClass + `">` + markup + `</div>`
		})
	})
}

// DisplayRenderer typesets in display mode without a container.
func DisplayRenderer(engine typeset.Engine, logger *slog.Logger) Renderer {
	return RendererFunc(func(tok Token) Outcome {
		return typesetToken(engine, logger, tok, typeset.Display, nil)
	})
}

// InlineRenderer typesets in inline mode.
func InlineRenderer(engine typeset.Engine, logger *slog.Logger) Renderer {
	return RendererFunc(func(tok Token) Outcome {
		return typesetToken(engine, logger, tok, typeset.Inline, nil)
	})
}

func typesetToken(engine typeset.Engine, logger *slog.Logger, tok Token, mode typeset.Mode, wrap func(string) string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("math render failed", "kind", tok.Kind, "err", fmt.Errorf("%w: %v", typeset.ErrTypeset, r))
			out = Fallback(tok.Raw)
		}
	}()

	markup, err := engine.Typeset(tok.Text, mode)
	if err != nil {
		logger.Debug("math render failed", "kind", tok.Kind, "expr", tok.Text, "err", err)
		return Fallback(tok.Raw)
	}
	if wrap != nil {
		markup = wrap(markup)
	}
	return Rendered(markup)
}
