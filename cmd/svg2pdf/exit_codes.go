package main

import (
	"errors"
	"os"

	svg2pdf "github.com/alnah/go-svg2pdf"
	"github.com/alnah/go-svg2pdf/internal/config"
)

// Exit codes for svg2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitRender  = 4 // Rendering backend errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Rendering errors (exit 4)
	if errors.Is(err, svg2pdf.ErrRenderFailed) ||
		errors.Is(err, svg2pdf.ErrBrowserConnect) ||
		errors.Is(err, svg2pdf.ErrPageCreate) ||
		errors.Is(err, svg2pdf.ErrPageLoad) {
		return ExitRender
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadSVG) ||
		errors.Is(err, ErrWritePDF) ||
		errors.Is(err, ErrWriteMerged) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, svg2pdf.ErrEmptySVG) ||
		errors.Is(err, svg2pdf.ErrInvalidPageSize) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) {
		return ExitUsage
	}

	return ExitGeneral
}
