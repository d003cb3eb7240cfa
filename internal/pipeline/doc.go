// Package pipeline implements the Markdown-to-HTML conversion pipeline.
//
// This package handles the stages between raw source text and a styled document:
//   - Markdown preprocessing (line endings, byte order mark, Unicode normalization)
//   - Markdown to HTML conversion via Goldmark, extended with math typesetting
//   - CSS injection into HTML documents, including code highlighting styles
//   - Relative path rewriting for documents rendered from a temporary file
//
// PDF generation is handled separately by the root mdmath package using
// headless Chrome (go-rod).
package pipeline
