package mathext

import (
	"regexp"
	"strings"
)

// Recognizer claims a math prefix of the remaining input or declines.
type Recognizer interface {
	Kind() Kind
	Level() Level

	// Start returns the earliest offset in src at which the recognizer
	// could match, or -1 if it cannot match anywhere in src.
	Start(src string) int

	// Tokenize matches a prefix of src. It reports false when src does
	// not begin with a complete math span of this kind.
	Tokenize(src string) (Token, bool)
}

// Delimited math patterns. All are anchored at the start of the input
// and stop at the first closing delimiter.
var (
	dollarDisplayPattern = regexp.MustCompile(`^\$\$([\s\S]*?)\$\$`)
	bracketBlockPattern  = regexp.MustCompile(`^\\\[([\s\S]*?)\\\]`)

	// A single-dollar span is non-empty and cannot contain '$' or a
	// newline, so a lone currency sign never opens a span.
	dollarInlinePattern = regexp.MustCompile(`^\$([^$\n]+?)\$`)
	parenInlinePattern  = regexp.MustCompile(`^\\\(([\s\S]+?)\\\)`)
)

// delimiter pairs an opener with the closer that ends its span.
type delimiter struct {
	open, close string
}

// multiline is implemented by recognizers whose spans may cross lines.
// spanDelimiter reports the delimiter src opens, if its span can cross lines.
type multiline interface {
	spanDelimiter(src string) (delimiter, bool)
}

// patternRecognizer tries its patterns in order and keeps the first match.
type patternRecognizer struct {
	kind     Kind
	level    Level
	openers  []string
	patterns []*regexp.Regexp

	// spans lists the openers whose patterns match across newlines.
	spans []delimiter
}

// BlockMath recognizes $$...$$ and \[...\] at a block boundary.
func BlockMath() Recognizer {
	return &patternRecognizer{
		kind:     KindBlockMath,
		level:    LevelBlock,
		openers:  []string{"$$", `\[`},
		patterns: []*regexp.Regexp{dollarDisplayPattern, bracketBlockPattern},
		spans:    []delimiter{{"$$", "$$"}, {`\[`, `\]`}},
	}
}

// DisplayMath recognizes $$...$$ within a line of text.
func DisplayMath() Recognizer {
	return &patternRecognizer{
		kind:     KindDisplayMath,
		level:    LevelInline,
		openers:  []string{"$$"},
		patterns: []*regexp.Regexp{dollarDisplayPattern},
		spans:    []delimiter{{"$$", "$$"}},
	}
}

// InlineMath recognizes $...$ and \(...\) within a line of text.
func InlineMath() Recognizer {
	return &patternRecognizer{
		kind:     KindInlineMath,
		level:    LevelInline,
		openers:  []string{"$", `\(`},
		patterns: []*regexp.Regexp{dollarInlinePattern, parenInlinePattern},
		spans:    []delimiter{{`\(`, `\)`}},
	}
}

func (r *patternRecognizer) Kind() Kind   { return r.kind }
func (r *patternRecognizer) Level() Level { return r.level }

func (r *patternRecognizer) Start(src string) int {
	first := -1
	for _, opener := range r.openers {
		if i := strings.Index(src, opener); i >= 0 && (first < 0 || i < first) {
			first = i
		}
	}
	return first
}

func (r *patternRecognizer) spanDelimiter(src string) (delimiter, bool) {
	for _, d := range r.spans {
		if strings.HasPrefix(src, d.open) {
			return d, true
		}
	}
	return delimiter{}, false
}

func (r *patternRecognizer) Tokenize(src string) (Token, bool) {
	for _, p := range r.patterns {
		if m := p.FindStringSubmatch(src); m != nil {
			return Token{
				Kind: r.kind,
				Raw:  m[0],
				Text: strings.TrimSpace(m[1]),
			}, true
		}
	}
	return Token{}, false
}
