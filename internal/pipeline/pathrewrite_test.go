package pipeline

import (
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestRewriteRelativePaths(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("file URLs below use Unix paths")
	}

	dir := t.TempDir()
	abs, err := filepath.Abs(dir)
	if err != nil {
		t.Fatal(err)
	}
	fileURL := "file://" + filepath.ToSlash(abs)

	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{
			name:     "relative image",
			input:    `<img src="img/plot.png"/>`,
			contains: `src="` + fileURL + `/img/plot.png"`,
		},
		{
			name:     "relative link",
			input:    `<a href="notes.md">n</a>`,
			contains: `href="` + fileURL + `/notes.md"`,
		},
		{
			name:     "dot slash prefix",
			input:    `<img src="./a.png"/>`,
			contains: `src="` + fileURL + `/a.png"`,
		},
		{
			name:     "http URL untouched",
			input:    `<img src="https://example.com/a.png"/>`,
			contains: `src="https://example.com/a.png"`,
		},
		{
			name:     "data URL untouched",
			input:    `<img src="data:image/png;base64,AAAA"/>`,
			contains: `src="data:image/png;base64,AAAA"`,
		},
		{
			name:     "anchor untouched",
			input:    `<a href="#eq-1">eq</a>`,
			contains: `href="#eq-1"`,
		},
		{
			name:     "absolute path untouched",
			input:    `<img src="/etc/a.png"/>`,
			contains: `src="/etc/a.png"`,
		},
		{
			name:     "traversal untouched",
			input:    `<img src="../../secret.png"/>`,
			contains: `src="../../secret.png"`,
		},
		{
			name:     "math markup preserved",
			input:    `<p><math><mi>x</mi></math></p>`,
			contains: `<math><mi>x</mi></math>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := "<!DOCTYPE html><html><head></head><body>" + tt.input + "</body></html>"
			got, err := RewriteRelativePaths(doc, dir)
			if err != nil {
				t.Fatalf("RewriteRelativePaths() unexpected error: %v", err)
			}
			if !strings.Contains(got, tt.contains) {
				t.Errorf("RewriteRelativePaths() = %q, want to contain %q", got, tt.contains)
			}
		})
	}
}

func TestRewriteRelativePaths_EmptySourceDir(t *testing.T) {
	t.Parallel()

	doc := `<img src="a.png">`
	got, err := RewriteRelativePaths(doc, "")
	if err != nil {
		t.Fatalf("RewriteRelativePaths() unexpected error: %v", err)
	}
	if got != doc {
		t.Errorf("RewriteRelativePaths(empty dir) = %q, want unchanged", got)
	}
}

func TestIsRelativePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want bool
	}{
		{"a.png", true},
		{"img/a.png", true},
		{"../a.png", true},
		{"", false},
		{"#top", false},
		{"//cdn.example.com/a.js", false},
		{"/abs/a.png", false},
		{"https://example.com", false},
		{"mailto:a@example.com", false},
		{"file:///tmp/a.png", false},
	}

	for _, tt := range tests {
		if got := isRelativePath(tt.ref); got != tt.want {
			t.Errorf("isRelativePath(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestIsPathUnderDir(t *testing.T) {
	t.Parallel()

	base := filepath.FromSlash("/base/dir")
	tests := []struct {
		path string
		want bool
	}{
		{filepath.FromSlash("/base/dir/a.png"), true},
		{filepath.FromSlash("/base/dir/sub/a.png"), true},
		{filepath.FromSlash("/base/dir"), true},
		{filepath.FromSlash("/base/dirx/a.png"), false},
		{filepath.FromSlash("/base/a.png"), false},
		{filepath.FromSlash("/other/a.png"), false},
	}

	for _, tt := range tests {
		if got := isPathUnderDir(tt.path, base); got != tt.want {
			t.Errorf("isPathUnderDir(%q, %q) = %v, want %v", tt.path, base, got, tt.want)
		}
	}
}
