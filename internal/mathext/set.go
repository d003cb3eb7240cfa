package mathext

import (
	"log/slog"
	"sync"

	"github.com/alnah/go-mdmath/internal/typeset"
)

// Extension pairs a recognizer with the renderer for its tokens.
type Extension struct {
	Recognizer Recognizer
	Renderer   Renderer
}

// Set is an ordered, immutable collection of math extensions.
// Within a level, earlier extensions take priority.
type Set struct {
	block     []Extension
	inline    []Extension
	renderers map[Kind]Renderer
}

// DefaultOrder is the registration order used by NewSet. displayMath
// precedes inlineMath so that $$x$$ is never read as $ + $x$ + $.
var DefaultOrder = []Kind{KindBlockMath, KindDisplayMath, KindInlineMath}

type setConfig struct {
	logger *slog.Logger
	order  []Kind
}

// Option configures NewSet.
type Option func(*setConfig)

// WithLogger sets the logger used to report render fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(c *setConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithOrder registers only the listed kinds, in the listed order.
// Unknown and repeated kinds are ignored.
func WithOrder(kinds ...Kind) Option {
	return func(c *setConfig) {
		c.order = kinds
	}
}

// NewSet builds the math extensions over engine.
func NewSet(engine typeset.Engine, opts ...Option) *Set {
	cfg := setConfig{logger: slog.Default(), order: DefaultOrder}
	for _, opt := range opts {
		opt(&cfg)
	}

	available := map[Kind]Extension{
		KindBlockMath:   {Recognizer: BlockMath(), Renderer: BlockRenderer(engine, cfg.logger)},
		KindDisplayMath: {Recognizer: DisplayMath(), Renderer: DisplayRenderer(engine, cfg.logger)},
		KindInlineMath:  {Recognizer: InlineMath(), Renderer: InlineRenderer(engine, cfg.logger)},
	}

	s := &Set{renderers: make(map[Kind]Renderer, len(available))}
	for _, kind := range cfg.order {
		ext, ok := available[kind]
		if !ok {
			continue
		}
		if _, seen := s.renderers[kind]; seen {
			continue
		}
		s.renderers[kind] = ext.Renderer
		if ext.Recognizer.Level() == LevelBlock {
			s.block = append(s.block, ext)
		} else {
			s.inline = append(s.inline, ext)
		}
	}
	return s
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the process-wide Set over a cached treeblood engine.
// It is built on first use.
func Default() *Set {
	defaultOnce.Do(func() {
		var engine typeset.Engine = typeset.NewTreeblood(nil, false)
		if cached, err := typeset.NewCached(engine, typeset.DefaultCacheSize); err == nil {
			engine = cached
		}
		defaultSet = NewSet(engine)
	})
	return defaultSet
}

// Extensions returns a copy of the extensions registered at level, in priority order.
func (s *Set) Extensions(level Level) []Extension {
	src := s.inline
	if level == LevelBlock {
		src = s.block
	}
	out := make([]Extension, len(src))
	copy(out, src)
	return out
}

// Names returns the kinds registered at level, in priority order.
func (s *Set) Names(level Level) []Kind {
	exts := s.Extensions(level)
	names := make([]Kind, len(exts))
	for i, ext := range exts {
		names[i] = ext.Recognizer.Kind()
	}
	return names
}

// Tokenize offers src to the recognizers at level in priority order
// and returns the first match.
func (s *Set) Tokenize(level Level, src string) (Token, bool) {
	exts := s.inline
	if level == LevelBlock {
		exts = s.block
	}
	for _, ext := range exts {
		if ext.Recognizer.Start(src) != 0 {
			continue
		}
		if tok, ok := ext.Recognizer.Tokenize(src); ok {
			return tok, true
		}
	}
	return Token{}, false
}

// Render renders tok with the renderer registered for its kind.
// Tokens of unregistered kinds fall back to their raw text.
func (s *Set) Render(tok Token) Outcome {
	r, ok := s.renderers[tok.Kind]
	if !ok {
		return Fallback(tok.Raw)
	}
	return r.Render(tok)
}
