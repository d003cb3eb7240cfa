package typeset

import (
	"fmt"
	"sync"

	"github.com/wyatt915/treeblood"
)

// Treeblood typesets TeX to MathML with treeblood (pure Go, no JS runtime).
// A treeblood document carries macro and numbering state, so calls are serialized.
type Treeblood struct {
	mu  sync.Mutex
	doc *treeblood.Pitziil
}

// Compile-time interface check.
var _ Engine = (*Treeblood)(nil)

// NewTreeblood creates an engine with the given macro table.
// Macros map a command name (e.g. `\R`) to its expansion (e.g. `\mathbb{R}`).
// When numbering is true, display equations are numbered in call order for
// the life of the engine, so use one engine per document.
func NewTreeblood(macros map[string]string, numbering bool) *Treeblood {
	return &Treeblood{doc: treeblood.NewDocument(macros, numbering)}
}

// Typeset renders expr as MathML.
// Panics inside treeblood are converted to ErrTypeset.
func (t *Treeblood) Typeset(expr string, mode Mode) (markup string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			markup = ""
			err = fmt.Errorf("%w: %v", ErrTypeset, r)
		}
	}()

	if mode == Display {
		markup, err = t.doc.DisplayStyle(expr)
	} else {
		markup, err = t.doc.TextStyle(expr)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTypeset, err)
	}
	return markup, nil
}
