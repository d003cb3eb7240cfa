// Package mathext adds TeX math to goldmark.
//
// Three recognizers compete for math delimiters at two grammar levels:
//
//   - blockMath (block level): $$ ... $$ and \[ ... \] filling a block
//   - displayMath (inline level): $$ ... $$ inside a line of text
//   - inlineMath (inline level): $ ... $ and \( ... \)
//
// A Set holds the recognizers in priority order together with their
// renderers. It is immutable once built, so one Set can serve any number
// of goldmark instances and concurrent conversions. Rendering never
// fails: when the typesetting engine rejects an expression, the original
// source text is emitted instead.
package mathext

import "strings"

// Kind identifies the recognizer that produced a Token and the renderer
// that consumes it.
type Kind string

// Recognizer kinds.
const (
	KindBlockMath   Kind = "blockMath"
	KindDisplayMath Kind = "displayMath"
	KindInlineMath  Kind = "inlineMath"
)

// Level is the grammar level a recognizer operates at.
type Level int

const (
	// LevelBlock recognizers run at block boundaries.
	LevelBlock Level = iota
	// LevelInline recognizers run within the text of a block.
	LevelInline
)

// String returns the level name.
func (l Level) String() string {
	if l == LevelBlock {
		return "block"
	}
	return "inline"
}

// Token is a recognized math span.
type Token struct {
	Kind Kind
	// Raw is the consumed source, delimiters included, byte for byte.
	Raw string
	// Text is the expression between the delimiters, whitespace-trimmed.
	Text string
}

// clone detaches the token from the buffer it was sliced from.
func (t Token) clone() Token {
	return Token{Kind: t.Kind, Raw: strings.Clone(t.Raw), Text: strings.Clone(t.Text)}
}
