package mathext

import "github.com/yuin/goldmark/util"

// Outcome is the result of rendering a Token: either typeset markup or
// the token's raw source as a fallback.
type Outcome struct {
	markup   string
	raw      string
	fallback bool
}

// Rendered wraps successfully typeset markup.
func Rendered(markup string) Outcome {
	return Outcome{markup: markup}
}

// Fallback wraps source text that could not be typeset.
func Fallback(raw string) Outcome {
	return Outcome{raw: raw, fallback: true}
}

// IsFallback reports whether typesetting failed.
func (o Outcome) IsFallback() bool {
	return o.fallback
}

// HTML returns the fragment to emit. Fallback text is escaped so that
// whatever the source contained is shown literally.
func (o Outcome) HTML() string {
	if o.fallback {
		return string(util.EscapeHTML([]byte(o.raw)))
	}
	return o.markup
}
