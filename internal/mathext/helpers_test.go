package mathext

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/yuin/goldmark"

	"github.com/alnah/go-mdmath/internal/typeset"
)

// fakeEngine tags expressions with their mode and rejects unbalanced braces,
// standing in for a real typesetter in deterministic tests.
func fakeEngine() typeset.Engine {
	return typeset.EngineFunc(func(expr string, mode typeset.Mode) (string, error) {
		if strings.Count(expr, "{") != strings.Count(expr, "}") {
			return "", typeset.ErrTypeset
		}
		if mode == typeset.Display {
			return `<math display="block">` + expr + `</math>`, nil
		}
		return `<math>` + expr + `</math>`, nil
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSet(opts ...Option) *Set {
	return NewSet(fakeEngine(), append([]Option{WithLogger(discardLogger())}, opts...)...)
}

// convert renders markdown through goldmark extended with set.
func convert(t *testing.T, set *Set, markdown string) string {
	t.Helper()

	md := goldmark.New(goldmark.WithExtensions(set))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		t.Fatalf("Convert(%q) unexpected error: %v", markdown, err)
	}
	return buf.String()
}
