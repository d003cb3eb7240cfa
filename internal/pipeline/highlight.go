package pipeline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultHighlightStyle is the chroma style used for fenced code blocks.
const DefaultHighlightStyle = "github"

// ErrUnknownHighlightStyle indicates the chroma style does not exist.
var ErrUnknownHighlightStyle = errors.New("unknown highlight style")

// HighlightCSS returns the stylesheet matching the classes goldmark-highlighting
// emits for fenced code blocks.
func HighlightCSS(name string) (string, error) {
	if !slices.Contains(styles.Names(), name) {
		return "", fmt.Errorf("%w: %q", ErrUnknownHighlightStyle, name)
	}

	var buf strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(name)); err != nil {
		return "", fmt.Errorf("writing %q highlight CSS: %w", name, err)
	}
	return buf.String(), nil
}

// HighlightStyles lists the available chroma styles, sorted.
func HighlightStyles() []string {
	names := styles.Names()
	slices.Sort(names)
	return names
}
