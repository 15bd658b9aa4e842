package svg2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-svg2pdf/internal/fileutil"
	"github.com/alnah/go-svg2pdf/internal/process"
)

// pointsPerInch converts page dimensions to the inch-based paper size
// Chrome's print API expects.
const pointsPerInch = 72.0

// htmlShell wraps the SVG so Chrome lays it out edge to edge on the page.
const htmlShell = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><style>
html, body { margin: 0; padding: 0; }
svg { display: block; }
</style></head><body>%s</body></html>`

// rodBackend renders SVG to PDF via headless Chrome using go-rod.
// Rod automatically downloads Chromium on first run if not found.
// The browser is launched lazily on first render.
type rodBackend struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	timeout  time.Duration
}

// newRodBackend creates a rodBackend with the given per-render timeout.
func newRodBackend(timeout time.Duration) *rodBackend {
	return &rodBackend{timeout: timeout}
}

// ensureBrowser lazily connects to the browser.
func (b *rodBackend) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	if sandboxDisabled() {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.launcher = l
	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// sandboxDisabled reports whether Chrome should launch with --no-sandbox.
// ROD_NO_SANDBOX opts in explicitly; CI runners and pre-installed browsers
// (usually root inside a container) need it implicitly.
func sandboxDisabled() bool {
	return os.Getenv("ROD_NO_SANDBOX") != "" ||
		os.Getenv("CI") == "true" ||
		os.Getenv("ROD_BROWSER_BIN") != ""
}

// Close releases browser resources. The browser process group is killed
// afterwards so no Chrome children linger if the graceful close stalls.
func (b *rodBackend) Close() error {
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil

	if b.launcher != nil {
		if pid := b.launcher.PID(); pid > 0 {
			process.KillProcessGroup(pid)
		}
		b.launcher = nil
	}
	return err
}

// Render loads the SVG in headless Chrome and prints it to a single PDF
// page matching the requested size.
// Returns explicit errors instead of panicking when browser operations fail.
func (b *rodBackend) Render(ctx context.Context, svg string, page PageSize) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := b.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(fmt.Sprintf(htmlShell, svg), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	browserPage, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer browserPage.Close()

	// Wait for page to load with timeout from context or default
	timeout := b.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := browserPage.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := browserPage.PDF(&proto.PagePrintToPDF{
		PaperWidth:      floatPtr(page.Width / pointsPerInch),
		PaperHeight:     floatPtr(page.Height / pointsPerInch),
		MarginTop:       floatPtr(0),
		MarginBottom:    floatPtr(0),
		MarginLeft:      floatPtr(0),
		MarginRight:     floatPtr(0),
		PrintBackground: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrRenderFailed, err)
	}

	return pdfBuf, nil
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
