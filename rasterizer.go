package svg2pdf

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// rasterScale is the oversampling factor for rasterization. Pages are
// sized in points (72 dpi); rendering at 2x yields 144 dpi output, enough
// for crisp text at normal zoom without ballooning file size.
const rasterScale = 2.0

// maxRasterPixels caps the rasterization buffer to keep a single oversized
// page from exhausting memory (roughly a 256MB RGBA buffer).
const maxRasterPixels = 64 << 20

// rasterBackend renders SVG to PDF without external processes: the document
// is rasterized with oksvg/rasterx, PNG-encoded, and placed full-bleed on a
// single PDF page of the requested size.
type rasterBackend struct{}

// newRasterBackend creates the pure Go rendering backend.
func newRasterBackend() *rasterBackend {
	return &rasterBackend{}
}

// Close is a no-op; the raster backend holds no resources.
func (b *rasterBackend) Close() error {
	return nil
}

// Render rasterizes the SVG and wraps the result in a one-page PDF.
func (b *rasterBackend) Render(ctx context.Context, svg string, page PageSize) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing SVG: %v", ErrRenderFailed, err)
	}

	pxW := int(math.Ceil(page.Width * rasterScale))
	pxH := int(math.Ceil(page.Height * rasterScale))
	if pxW < 1 || pxH < 1 {
		return nil, fmt.Errorf("%w: degenerate page size %gx%g", ErrRenderFailed, page.Width, page.Height)
	}
	if pxW*pxH > maxRasterPixels {
		return nil, fmt.Errorf("%w: page %gx%g exceeds raster limit", ErrRenderFailed, page.Width, page.Height)
	}

	icon.SetTarget(0, 0, float64(pxW), float64(pxH))

	img := image.NewRGBA(image.Rect(0, 0, pxW, pxH))
	scanner := rasterx.NewScannerGV(pxW, pxH, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(pxW, pxH, scanner), 1.0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("%w: encoding raster: %v", ErrRenderFailed, err)
	}

	return buildImagePage(&pngBuf, page)
}

// buildImagePage places one PNG full-bleed on a single PDF page.
func buildImagePage(pngData *bytes.Buffer, page PageSize) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("page", opts, pngData)
	pdf.ImageOptions("page", 0, 0, page.Width, page.Height, false, opts, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("%w: assembling page: %v", ErrRenderFailed, err)
	}
	return out.Bytes(), nil
}
