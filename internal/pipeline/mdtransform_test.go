package pipeline

import (
	"context"
	"testing"
)

func TestCommonMarkPreprocessor_PreprocessMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "CRLF to LF",
			input: "a\r\nb\r\n",
			want:  "a\nb\n",
		},
		{
			name:  "lone CR to LF",
			input: "a\rb",
			want:  "a\nb",
		},
		{
			name:  "byte order mark stripped",
			input: "\uFEFF# Title",
			want:  "# Title",
		},
		{
			name:  "decomposed accent composed",
			input: "cafe\u0301 $x$",
			want:  "caf\u00e9 $x$",
		},
		{
			name:  "blank lines compressed",
			input: "a\n\n\n\n\nb",
			want:  "a\n\nb",
		},
		{
			name:  "math delimiters untouched",
			input: "$$\\frac{1}{2}$$ and \\(x\\)",
			want:  "$$\\frac{1}{2}$$ and \\(x\\)",
		},
		{
			name:  "double equals kept literally",
			input: "$a == b$",
			want:  "$a == b$",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	p := &CommonMarkPreprocessor{}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := p.PreprocessMarkdown(context.Background(), tt.input); got != tt.want {
				t.Errorf("PreprocessMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCommonMarkPreprocessor_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	input := "a\r\n\n\n\nb"
	p := &CommonMarkPreprocessor{}
	if got := p.PreprocessMarkdown(ctx, input); got != input {
		t.Errorf("PreprocessMarkdown(cancelled) = %q, want input unchanged", got)
	}
}
