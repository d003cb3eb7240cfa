package mdmath

import (
	"fmt"
	"strings"
)

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// Math recognizer names, usable with WithRecognizers.
const (
	RecognizerBlockMath   = "blockMath"   // $$...$$ or \[...\] on their own lines
	RecognizerDisplayMath = "displayMath" // $$...$$ inside a paragraph
	RecognizerInlineMath  = "inlineMath"  // $...$ or \(...\)
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
}

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults).
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}
	if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
	}
	switch strings.ToLower(p.Orientation) {
	case OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}
	if p.Margin < MinMargin || p.Margin > MaxMargin {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}
	return nil
}

// Input contains conversion parameters.
type Input struct {
	Markdown  string        // Markdown content (required)
	Title     string        // Document <title>; empty = first "# " heading, then "Document"
	CSS       string        // Extra CSS appended after the converter style (optional)
	SourceDir string        // Directory relative image and link paths resolve against (optional)
	Fragment  bool          // Return an HTML fragment without <html>, <head> or styles
	PDF       bool          // Also render the document to PDF (requires Chrome)
	Page      *PageSettings // PDF page settings (optional, nil = defaults)
}

// ConvertResult contains the output of a conversion.
type ConvertResult struct {
	HTML []byte // Rendered HTML document or fragment
	PDF  []byte // PDF bytes; nil unless Input.PDF was set
}
