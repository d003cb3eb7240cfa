package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// defaultHelpWidth is used when output is not a terminal.
const defaultHelpWidth = 80

// maxHelpWidth keeps prose readable on wide terminals.
const maxHelpWidth = 100

// printParagraph writes text word-wrapped to the width of w, indented by n.
func printParagraph(w io.Writer, text string, n uint) {
	width := min(terminalWidth(w, defaultHelpWidth), maxHelpWidth) - int(n) // #nosec G115 -- small indent
	fmt.Fprintln(w, indent.String(wordwrap.String(text, max(width, 20)), n))
}

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath [command] [flags] [args]")
	fmt.Fprintln(w)
	printParagraph(w, "Render Markdown with TeX math ($...$, \\(...\\), $$...$$, \\[...\\]) to HTML or PDF. "+
		"Without a command, arguments are converted; with no arguments, standard input is converted to standard output.", 0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert markdown files to HTML or PDF (default)")
	fmt.Fprintln(w, "  serve      Start the HTTP render service")
	fmt.Fprintln(w, "  config     Print the effective configuration as YAML")
	fmt.Fprintln(w, "  styles     List document and code highlighting styles")
	fmt.Fprintln(w, "  doctor     Check the system for PDF export")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdmath help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath convert [flags] [input ...]")
	fmt.Fprintln(w)
	printParagraph(w, "Convert markdown files or directories. Each file.md becomes file.html, or file.pdf with --pdf. "+
		"Expressions that fail to typeset are shown as their source text.", 0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	printParagraph(w, "input    Markdown file or directory (optional if config has input.defaultDir, "+
		"or when piping markdown on standard input)", 2)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file or directory")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "  -f, --fragment            HTML fragment without <html> and styles")
	fmt.Fprintln(w, "      --title <s>           Document title (\"\" = first heading, then file name)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Math:")
	fmt.Fprintln(w, "  -m, --macro <NAME=BODY>   TeX macro, e.g. '\\R=\\mathbb{R}' (repeatable)")
	fmt.Fprintln(w, "      --numbering           Number display equations")
	fmt.Fprintln(w, "      --cache-size <n>      Typeset cache entries (0 disables)")
	fmt.Fprintln(w, "      --recognizers <list>  blockMath,displayMath,inlineMath in priority order")
	fmt.Fprintln(w, "      --hard-wraps          Render single newlines as line breaks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Styling:")
	fmt.Fprintln(w, "  -s, --style <name|path>   Document style (see 'mdmath styles')")
	fmt.Fprintln(w, "      --css <path>          Extra CSS file appended after the style")
	fmt.Fprintln(w, "      --asset-path <dir>    Directory with styles/{name}.css overrides")
	fmt.Fprintln(w, "      --highlight <name>    Code highlighting style")
	fmt.Fprintln(w, "      --no-style            Disable the document stylesheet")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PDF:")
	fmt.Fprintln(w, "      --pdf                 Write PDF (requires Chrome, see 'mdmath doctor')")
	fmt.Fprintln(w, "      --html                With --pdf, also write the HTML")
	fmt.Fprintln(w, "  -p, --page-size <s>       Page size: letter, a4, legal")
	fmt.Fprintln(w, "      --orientation <s>     Orientation: portrait, landscape")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show timing and typesetting diagnostics")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath serve [flags]")
	fmt.Fprintln(w)
	printParagraph(w, `Serve POST /api/render, taking {"markdown": "..."} and returning {"html": "..."}, `+
		"and GET /healthz. Stops gracefully on interrupt.", 0)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address")
	fmt.Fprintln(w, "      --max-body <bytes>    Maximum request body")
	fmt.Fprintln(w, "      --render-timeout <d>  Per-request render timeout")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel renderers (0 = auto)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -m, --macro <NAME=BODY>   TeX macro (repeatable)")
	fmt.Fprintln(w, "      --numbering           Number display equations")
	fmt.Fprintln(w, "      --cache-size <n>      Typeset cache entries (0 disables)")
	fmt.Fprintln(w, "      --recognizers <list>  Math recognizers in priority order")
	fmt.Fprintln(w, "      --hard-wraps          Render single newlines as line breaks")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log every request")
}

// printConfigUsage prints usage for the config command.
func printConfigUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdmath config [-c <name|path>]")
	fmt.Fprintln(w)
	printParagraph(w, "Print the configuration after applying the config file and MDMATH_* environment variables. "+
		"Without --config, mdmath.yaml is looked up in the current directory, then in the user config directory.", 0)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) error {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return nil
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "config":
		printConfigUsage(env.Stdout)
	case "styles":
		fmt.Fprintln(env.Stdout, "Usage: mdmath styles")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "List built-in document styles and code highlighting styles.")
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: mdmath doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome and the environment for PDF export.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdmath version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdmath help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		printUsage(env.Stderr)
		return fmt.Errorf("%w: unknown help topic %q", ErrUsage, strings.TrimSpace(args[0]))
	}
	return nil
}
