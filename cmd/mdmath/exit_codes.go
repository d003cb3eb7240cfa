package main

import (
	"errors"
	"os"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
)

// Exit codes for the mdmath CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, mdmath.ErrBrowserConnect) ||
		errors.Is(err, mdmath.ErrPageCreate) ||
		errors.Is(err, mdmath.ErrPageLoad) ||
		errors.Is(err, mdmath.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrInputTooLarge) ||
		errors.Is(err, mdmath.ErrEmptyMarkdown) ||
		errors.Is(err, mdmath.ErrFragmentPDF) ||
		errors.Is(err, mdmath.ErrInvalidPageSize) ||
		errors.Is(err, mdmath.ErrInvalidOrientation) ||
		errors.Is(err, mdmath.ErrInvalidMargin) ||
		errors.Is(err, mdmath.ErrInvalidCacheSize) ||
		errors.Is(err, mdmath.ErrUnknownRecognizer) ||
		errors.Is(err, mdmath.ErrUnknownHighlightStyle) ||
		errors.Is(err, mdmath.ErrStyleNotFound) ||
		errors.Is(err, mdmath.ErrInvalidAssetPath) {
		return ExitUsage
	}

	return ExitGeneral
}
