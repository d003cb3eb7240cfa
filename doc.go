// Package mdmath renders Markdown with LaTeX-style math to HTML, and
// optionally to PDF using headless Chrome.
//
// # Quick Start
//
//	conv, err := mdmath.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, mdmath.Input{
//	    Markdown: "# Euler\n\n$$e^{i\\pi} + 1 = 0$$",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("euler.html", result.HTML, 0644)
//
// For chat messages and other embedded content, RenderFragment returns an
// HTML fragment without document wrapper or stylesheet.
//
// # Math Syntax
//
// Four delimiters are recognized:
//
//	$$...$$   display math; on its own line it becomes a scrollable block
//	\[...\]   display math block
//	$...$     inline math, on a single line
//	\(...\)   inline math
//
// Math is typeset to MathML. An expression the typesetter rejects is shown
// as its source text, so one malformed formula never breaks a document.
// A "$" without a closing "$" on the same line is plain text.
//
// # Conversion Pipeline
//
//  1. Markdown preprocessing (line endings, Unicode NFC)
//  2. Markdown to HTML via Goldmark (GFM, footnotes, highlighting, math)
//  3. CSS injection (style, code highlighting, user CSS)
//  4. Optional PDF rendering via headless Chrome (go-rod)
//
// # Configuration
//
//	conv, err := mdmath.NewConverter(
//	    mdmath.WithStyle("minimal"),
//	    mdmath.WithMacros(map[string]string{`\R`: `\mathbb{R}`}),
//	    mdmath.WithNumbering(true),
//	    mdmath.WithCacheSize(10000),
//	)
//
// # Parallel Processing
//
// RenderFragment and HTML-only Convert calls are safe for concurrent use.
// PDF rendering drives one browser per Converter; for batch PDF work use
// ConverterPool:
//
//	pool := mdmath.NewConverterPool(mdmath.ResolvePoolSize(0))
//	defer pool.Close()
package mdmath
