package main

import (
	"errors"
	"fmt"
	"os"
	"testing"

	mdmath "github.com/alnah/go-mdmath"
	"github.com/alnah/go-mdmath/internal/config"
)

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"unknown error", errors.New("unexpected"), ExitGeneral},
		{"html conversion", mdmath.ErrHTMLConversion, ExitGeneral},

		{"browser connect", mdmath.ErrBrowserConnect, ExitBrowser},
		{"page load", fmt.Errorf("rendering: %w", mdmath.ErrPageLoad), ExitBrowser},
		{"pdf generation", mdmath.ErrPDFGeneration, ExitBrowser},

		{"not exist", fmt.Errorf("discovering files: %w", os.ErrNotExist), ExitIO},
		{"permission", os.ErrPermission, ExitIO},
		{"read markdown", ErrReadMarkdown, ExitIO},
		{"read css", ErrReadCSS, ExitIO},
		{"write output", ErrWriteOutput, ExitIO},
		{"no input", ErrNoInput, ExitIO},

		{"usage", ErrUsage, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid workers", ErrInvalidWorkerCount, ExitUsage},
		{"invalid timeout", ErrInvalidTimeout, ExitUsage},
		{"config not found", fmt.Errorf("loading config: %w", config.ErrConfigNotFound), ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"config value", config.ErrInvalidValue, ExitUsage},
		{"config too large", config.ErrInputTooLarge, ExitUsage},
		{"empty markdown", mdmath.ErrEmptyMarkdown, ExitUsage},
		{"fragment pdf", mdmath.ErrFragmentPDF, ExitUsage},
		{"page size", mdmath.ErrInvalidPageSize, ExitUsage},
		{"unknown recognizer", mdmath.ErrUnknownRecognizer, ExitUsage},
		{"unknown highlight", mdmath.ErrUnknownHighlightStyle, ExitUsage},
		{"style not found", mdmath.ErrStyleNotFound, ExitUsage},
		{"asset path", mdmath.ErrInvalidAssetPath, ExitUsage},

		{"browser wins over io", fmt.Errorf("%w: %w", mdmath.ErrPageLoad, os.ErrNotExist), ExitBrowser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
