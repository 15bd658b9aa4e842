package svg2pdf

import (
	"context"
	"fmt"

	"github.com/alnah/go-svg2pdf/internal/pipeline"
)

// Compile-time interface implementation checks.
// These ensure backends satisfy the interface at compile time,
// catching signature mismatches before runtime.
var (
	_ renderBackend = (*rasterBackend)(nil)
	_ renderBackend = (*rodBackend)(nil)
)

// renderBackend abstracts single-page rendering to allow different backends.
// Render must produce exactly one page at the given size.
type renderBackend interface {
	Render(ctx context.Context, svg string, page PageSize) ([]byte, error)
	Close() error
}

// Converter turns one SVG document into one single-page PDF.
// Create with NewConverter(), use Convert() per document, and Close() when done.
// A Converter is not safe for concurrent use; use ConverterPool for parallelism.
type Converter struct {
	cfg     converterConfig
	backend renderBackend
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithBackend).
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:     defaultTimeout,
			backend:     BackendRaster,
			defaultPage: PageSize{Width: DefaultPageWidth, Height: DefaultPageHeight},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.defaultPage.Validate(); err != nil {
		return nil, err
	}

	// Create backend if not injected (e.g., by tests)
	if c.backend == nil {
		switch c.cfg.backend {
		case "", BackendRaster:
			c.backend = newRasterBackend()
		case BackendChrome:
			c.backend = newRodBackend(c.cfg.timeout)
		default:
			return nil, fmt.Errorf("unknown backend %q (must be %s or %s)",
				c.cfg.backend, BackendRaster, BackendChrome)
		}
	}

	return c, nil
}

// Convert runs preprocessing, sizing, and rendering for one document.
// The context is used for cancellation and timeout.
// Preprocessing warnings are returned in the result, not as errors: a
// corrupt embedded asset leaves its element untouched and rendering
// proceeds.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.SVG == "" {
		return nil, ErrEmptySVG
	}
	if err := input.Page.Validate(); err != nil {
		return nil, err
	}

	// Rewrite embedded base64 SVG assets the backends mishandle
	expanded, diags, err := pipeline.ExpandDataImages(input.SVG)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSVG, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	warnings := make([]Warning, 0, len(diags))
	for _, d := range diags {
		warnings = append(warnings, Warning{
			SourcePath: input.SourcePath,
			Offset:     d.Offset,
			Reason:     d.Reason,
		})
	}

	page := c.resolvePageSize(input.Page, expanded)

	pdfBytes, err := c.backend.Render(ctx, expanded, page)
	if err != nil {
		return nil, fmt.Errorf("rendering to PDF: %w", err)
	}

	return &ConvertResult{
		PDF:      pdfBytes,
		SVG:      expanded,
		Page:     page,
		Warnings: warnings,
	}, nil
}

// Close releases backend resources (headless Chrome browser, if used).
func (c *Converter) Close() error {
	if c.backend != nil {
		return c.backend.Close()
	}
	return nil
}

// resolvePageSize applies the sizing policy: explicit size wins, then the
// document's own declared dimensions or viewBox, then the configured default.
func (c *Converter) resolvePageSize(explicit *PageSize, svg string) PageSize {
	if explicit != nil {
		return *explicit
	}
	if size, ok := intrinsicSize(svg); ok {
		return size
	}
	return c.cfg.defaultPage
}
