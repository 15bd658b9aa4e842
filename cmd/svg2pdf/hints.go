package main

import (
	"context"
	"errors"

	svg2pdf "github.com/alnah/go-svg2pdf"
	"github.com/alnah/go-svg2pdf/internal/config"
	"github.com/alnah/go-svg2pdf/internal/hints"
)

// hintFor returns an actionable hint for common failures, or "".
func hintFor(err error) string {
	switch {
	case errors.Is(err, svg2pdf.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, svg2pdf.ErrCorruptPage):
		return hints.ForCorruptPage()
	case errors.Is(err, ErrNoInput):
		return hints.ForNoInput()
	case errors.Is(err, ErrWriteMerged), errors.Is(err, ErrWritePDF):
		return hints.ForOutputDirectory()
	default:
		return ""
	}
}
