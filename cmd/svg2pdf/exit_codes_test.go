package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	svg2pdf "github.com/alnah/go-svg2pdf"
	"github.com/alnah/go-svg2pdf/internal/config"
)

// ---------------------------------------------------------------------------
// TestExitCodeFor - errors map to their documented exit codes
// ---------------------------------------------------------------------------

func TestExitCodeFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},

		// Rendering failures
		{"render failed", svg2pdf.ErrRenderFailed, ExitRender},
		{"browser connect", svg2pdf.ErrBrowserConnect, ExitRender},
		{"page create", svg2pdf.ErrPageCreate, ExitRender},
		{"page load", svg2pdf.ErrPageLoad, ExitRender},
		{"wrapped render error", fmt.Errorf("rendering to PDF: %w", svg2pdf.ErrRenderFailed), ExitRender},
		{"batch wrapping browser error", fmt.Errorf("2 conversion(s) failed: %w", svg2pdf.ErrBrowserConnect), ExitRender},

		// I/O failures
		{"file not found", os.ErrNotExist, ExitIO},
		{"permission denied", os.ErrPermission, ExitIO},
		{"read SVG", ErrReadSVG, ExitIO},
		{"write PDF", ErrWritePDF, ExitIO},
		{"write merged", ErrWriteMerged, ExitIO},
		{"no input", ErrNoInput, ExitIO},
		{"wrapped stat error", fmt.Errorf("discovering files: %w", os.ErrNotExist), ExitIO},

		// Usage and validation failures
		{"config not found", config.ErrConfigNotFound, ExitUsage},
		{"config parse", config.ErrConfigParse, ExitUsage},
		{"empty config name", config.ErrEmptyConfigName, ExitUsage},
		{"invalid config value", config.ErrInvalidValue, ExitUsage},
		{"empty SVG", svg2pdf.ErrEmptySVG, ExitUsage},
		{"invalid page size", svg2pdf.ErrInvalidPageSize, ExitUsage},
		{"invalid extension", ErrInvalidExtension, ExitUsage},
		{"invalid worker count", ErrInvalidWorkerCount, ExitUsage},

		// Everything else
		{"plain error", errors.New("boom"), ExitGeneral},
		{"malformed SVG", svg2pdf.ErrMalformedSVG, ExitGeneral},
		{"cancelled context", context.Canceled, ExitGeneral},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
