package svg2pdf

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptySVG     = errors.New("svg content cannot be empty")
	ErrMalformedSVG = errors.New("svg document is not well-formed")
	ErrRenderFailed = errors.New("PDF rendering failed")

	// Chrome backend errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page size validation errors.
	ErrInvalidPageSize = errors.New("invalid page size")

	// Merge errors.
	ErrNoPages     = errors.New("no pages to merge")
	ErrCorruptPage = errors.New("corrupt page structure")
)
