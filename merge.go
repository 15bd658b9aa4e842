package svg2pdf

import (
	"errors"
	"fmt"

	"github.com/alnah/go-svg2pdf/internal/pdfmerge"
)

// MergePages concatenates single-page PDFs into one multi-page document.
// Pages appear in the merged output in slice order; the caller is
// responsible for ordering (e.g., lexical by source filename).
// Every object of every incoming page is renumbered, so overlapping
// identifier ranges between pages never collide.
// Returns ErrNoPages for an empty slice and ErrCorruptPage (wrapping the
// offending source path) if any page's structure cannot be re-linked.
func MergePages(pages []RenderedPage) ([]byte, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	merger := pdfmerge.New()
	for _, p := range pages {
		if err := merger.AppendPage(p.SourcePath, p.PDF); err != nil {
			return nil, wrapMergeErr(err)
		}
	}

	out, err := merger.Finalize()
	if err != nil {
		return nil, wrapMergeErr(err)
	}
	return out, nil
}

// wrapMergeErr maps internal merge sentinels onto the public ones so
// callers never import the internal package for errors.Is checks.
func wrapMergeErr(err error) error {
	switch {
	case errors.Is(err, pdfmerge.ErrNoPages):
		return fmt.Errorf("%w: %v", ErrNoPages, err)
	case errors.Is(err, pdfmerge.ErrCorruptPage):
		return fmt.Errorf("%w: %v", ErrCorruptPage, err)
	default:
		return err
	}
}
