// Package typeset turns TeX math expressions into MathML markup.
//
// An Engine is the only contract the rest of the module relies on. The
// production engine wraps treeblood; Cached puts a bounded in-memory cache
// in front of any engine so repeated expressions are typeset once.
package typeset

import "errors"

// ErrTypeset indicates an expression could not be typeset.
var ErrTypeset = errors.New("typesetting failed")

// Mode selects how an expression is laid out.
type Mode int

const (
	// Inline flows the expression within surrounding text.
	Inline Mode = iota
	// Display renders the expression as a standalone, centered formula.
	Display
)

// String returns the mode name.
func (m Mode) String() string {
	if m == Display {
		return "display"
	}
	return "inline"
}

// Engine typesets a single TeX expression.
// Implementations must be safe for concurrent use.
type Engine interface {
	Typeset(expr string, mode Mode) (string, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(expr string, mode Mode) (string, error)

// Typeset calls f(expr, mode).
func (f EngineFunc) Typeset(expr string, mode Mode) (string, error) {
	return f(expr, mode)
}

// ByMode sends inline and display expressions to separate engines.
type ByMode struct {
	Inline  Engine
	Display Engine
}

// Typeset dispatches on mode.
func (b ByMode) Typeset(expr string, mode Mode) (string, error) {
	if mode == Display {
		return b.Display.Typeset(expr, mode)
	}
	return b.Inline.Typeset(expr, mode)
}
