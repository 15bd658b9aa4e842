package svg2pdf

import (
	"fmt"
	"time"
)

// Default page dimensions in points (US Letter format).
// Used when an SVG declares neither explicit dimensions nor a viewBox.
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
)

// Maximum page dimension in points (PDF implementation limit).
const MaxPageDimension = 14400.0

// Backend names accepted by WithBackend.
const (
	BackendRaster = "raster"
	BackendChrome = "chrome"
)

// PageSize holds page dimensions in points (1/72 inch).
type PageSize struct {
	Width  float64
	Height float64
}

// Validate checks that page dimensions are positive and within PDF limits.
// Returns nil if p is nil (nil means derive from the document).
func (p *PageSize) Validate() error {
	if p == nil {
		return nil
	}
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: %gx%g (dimensions must be positive)", ErrInvalidPageSize, p.Width, p.Height)
	}
	if p.Width > MaxPageDimension || p.Height > MaxPageDimension {
		return fmt.Errorf("%w: %gx%g (max %g points)", ErrInvalidPageSize, p.Width, p.Height, MaxPageDimension)
	}
	return nil
}

// Input holds one conversion request.
type Input struct {
	SVG        string    // SVG content (required)
	SourcePath string    // Origin path, used only in diagnostics (optional)
	Page       *PageSize // Explicit page size override (optional, nil = derive)
}

// Warning is a non-fatal diagnostic recorded during preprocessing.
// A warning means an embedded asset was left untouched, not that the
// conversion failed.
type Warning struct {
	SourcePath string // input file the warning belongs to
	Offset     int    // byte offset of the affected element
	Reason     string
}

// String formats the warning for diagnostics output.
func (w Warning) String() string {
	if w.SourcePath == "" {
		return fmt.Sprintf("offset %d: %s", w.Offset, w.Reason)
	}
	return fmt.Sprintf("%s: offset %d: %s", w.SourcePath, w.Offset, w.Reason)
}

// ConvertResult holds the output of one conversion.
type ConvertResult struct {
	PDF      []byte    // single-page PDF bytes
	SVG      string    // preprocessed SVG actually handed to the backend
	Page     PageSize  // resolved page dimensions in points
	Warnings []Warning // preprocessing diagnostics, may be empty
}

// RenderedPage is one page ready for merging.
type RenderedPage struct {
	SourcePath string   // origin file, reported on merge failure
	Page       PageSize // dimensions in points
	PDF        []byte   // single-page PDF bytes
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	backend     string
	defaultPage PageSize
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the per-render timeout.
// Panics if d is not positive (programming error, not runtime condition).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("svg2pdf: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithBackend selects the rendering backend: BackendRaster (default,
// pure Go) or BackendChrome (headless Chrome via go-rod).
func WithBackend(name string) Option {
	return func(c *Converter) {
		c.cfg.backend = name
	}
}

// WithDefaultPageSize overrides the fallback page size used when an SVG
// declares neither dimensions nor a viewBox.
func WithDefaultPageSize(size PageSize) Option {
	return func(c *Converter) {
		c.cfg.defaultPage = size
	}
}
