// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// IsInContainer detects if running inside a Docker container or similar.
// Checks for /.dockerenv file which Docker creates automatically.
var IsInContainer = func() bool {
	return fileutil.FileExists("/.dockerenv")
}

// ForBrowserConnect returns hints for browser connection errors.
// Detects CI/Docker environment and suggests relevant environment variables.
func ForBrowserConnect(getenv func(string) string) string {
	var hints []string

	inCI := getenv("CI") != "" ||
		getenv("GITHUB_ACTIONS") != "" ||
		getenv("GITLAB_CI") != "" ||
		getenv("JENKINS_URL") != ""

	if (inCI || IsInContainer()) && getenv("ROD_NO_SANDBOX") != "1" {
		hints = append(hints, "set ROD_NO_SANDBOX=1 for Docker/CI")
	}
	if getenv("ROD_BROWSER_BIN") == "" {
		hints = append(hints, "set ROD_BROWSER_BIN to use custom Chrome")
	}
	hints = append(hints, "run 'mdmath doctor' to check the setup")

	return formatHints(hints)
}

// ForTimeout returns a hint about increasing the PDF page load timeout.
func ForTimeout() string {
	return format("for large documents, use --timeout or pdf.timeout")
}

// ForConfigNotFound returns a hint naming where a default config is read from.
func ForConfigNotFound(userConfigDir string) string {
	hint := "use --config /path/to/file.yaml"
	if userConfigDir != "" {
		hint += " or create " + userConfigDir + "/mdmath/mdmath.yaml"
	}
	return format(hint)
}

// ForNoInput explains the ways to give the converter input.
func ForNoInput() string {
	return format("pass a file or directory, set input.defaultDir, or pipe markdown on stdin")
}

// ForStyleNotFound lists the available document styles.
func ForStyleNotFound(available []string) string {
	if len(available) == 0 {
		return ""
	}
	return format("available: " + strings.Join(available, ", "))
}

// ForHighlightStyle points at the style listing.
func ForHighlightStyle() string {
	return format("run 'mdmath styles' to list highlighting styles")
}

// ForRecognizer lists the math recognizer names.
func ForRecognizer(names []string) string {
	return format("valid recognizers: " + strings.Join(names, ", "))
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
