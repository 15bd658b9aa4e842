// Package svg2pdf converts SVG documents to single-page PDFs and merges
// them into one multi-page document.
//
// # Quick Start
//
// Create a converter, convert each SVG, and close when done:
//
//	conv, err := svg2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, svg2pdf.Input{
//	    SVG: `<svg xmlns="http://www.w3.org/2000/svg" width="612" height="792">...</svg>`,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("page.pdf", result.PDF, 0644)
//
// The result contains the single-page PDF bytes (result.PDF), the
// preprocessed SVG actually rendered (result.SVG), the resolved page
// size, and any preprocessing warnings.
//
// # Conversion Pipeline
//
// The conversion process follows these stages:
//
//  1. Preprocessing: base64-encoded SVG payloads embedded in <image>
//     elements are decoded and re-embedded inline, sidestepping renderer
//     defects with that encoding path. Corrupt payloads are left
//     untouched and reported as warnings, never as errors.
//  2. Sizing: explicit Input.Page wins, then the document's own
//     width/height or viewBox, then a US Letter default (612x792 pt).
//  3. Rendering: the backend turns the document into exactly one PDF
//     page of the resolved size.
//
// # Backends
//
// Two rendering backends are available via WithBackend:
//
//   - BackendRaster (default): pure Go. The SVG is rasterized and placed
//     full-bleed on a PDF page. No external dependencies.
//   - BackendChrome: headless Chrome via go-rod prints the SVG to a
//     vector PDF. Higher fidelity for features the rasterizer lacks.
//
// # Merging
//
// MergePages concatenates rendered pages into one document, renumbering
// every object so identifier ranges from independent renders never
// collide:
//
//	merged, err := svg2pdf.MergePages(pages)
//
// # Parallel Processing
//
// For batch conversion, use ConverterPool to run one converter per
// worker:
//
//	pool := svg2pdf.NewConverterPool(4)
//	defer pool.Close()
//
//	conv, err := pool.Acquire()
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// Rendering parallelizes freely; merging is sequential and
// order-sensitive, so merge after all renders complete.
//
// # Browser Requirements
//
// The chrome backend requires Chrome/Chromium. The go-rod library
// automatically downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/). For containers and CI environments, set
// ROD_BROWSER_BIN to a pre-installed binary; the sandbox is disabled
// automatically when CI=true or ROD_BROWSER_BIN is set.
package svg2pdf
