package pdfmerge_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/alnah/go-svg2pdf/internal/pdfmerge"
	"github.com/alnah/go-svg2pdf/internal/pdfobj"
)

// buildPagePDF serializes a minimal one-page document whose content stream
// carries label, so merged pages can be told apart. All inputs use the same
// low object numbers, which forces the merge to renumber.
func buildPagePDF(t *testing.T, label string, width, height float64) []byte {
	t.Helper()

	doc := pdfobj.NewDocument("1.4")
	doc.Objects[pdfobj.Ref{Number: 1}] = pdfobj.DictionaryObject{
		"/Type":  pdfobj.NameObject("/Catalog"),
		"/Pages": pdfobj.Ref{Number: 2},
	}
	doc.Objects[pdfobj.Ref{Number: 2}] = pdfobj.DictionaryObject{
		"/Type":      pdfobj.NameObject("/Pages"),
		"/Kids":      pdfobj.ArrayObject{pdfobj.Ref{Number: 3}},
		"/Count":     pdfobj.NumberObject(1),
		"/Resources": pdfobj.DictionaryObject{"/ProcSet": pdfobj.ArrayObject{pdfobj.NameObject("/PDF")}},
	}
	doc.Objects[pdfobj.Ref{Number: 3}] = pdfobj.DictionaryObject{
		"/Type":     pdfobj.NameObject("/Page"),
		"/Parent":   pdfobj.Ref{Number: 2},
		"/MediaBox": pdfobj.ArrayObject{pdfobj.NumberObject(0), pdfobj.NumberObject(0), pdfobj.NumberObject(width), pdfobj.NumberObject(height)},
		"/Contents": pdfobj.Ref{Number: 4},
	}
	doc.Objects[pdfobj.Ref{Number: 4}] = pdfobj.StreamObject{
		Dictionary: pdfobj.DictionaryObject{},
		Data:       []byte("% " + label),
	}
	doc.Trailer["/Root"] = pdfobj.Ref{Number: 1}

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("building page %q: %v", label, err)
	}
	return data
}

// mergedPages reads back a merged document and returns its reader plus the
// page dictionaries in tree order.
func mergedPages(t *testing.T, merged []byte) (*pdfobj.Reader, []pdfobj.DictionaryObject) {
	t.Helper()

	r, err := pdfobj.NewReader(merged)
	if err != nil {
		t.Fatalf("reading merged document: %v", err)
	}
	root, ok := r.Trailer()["/Root"].(pdfobj.Ref)
	if !ok {
		t.Fatalf("merged trailer has no /Root reference")
	}
	catalog, ok := r.Resolve(root).(pdfobj.DictionaryObject)
	if !ok {
		t.Fatalf("merged catalog is not a dictionary")
	}
	pages, ok := r.Resolve(catalog["/Pages"]).(pdfobj.DictionaryObject)
	if !ok {
		t.Fatalf("merged /Pages is not a dictionary")
	}
	kids, ok := pages["/Kids"].(pdfobj.ArrayObject)
	if !ok {
		t.Fatalf("merged /Kids is not an array")
	}

	var dicts []pdfobj.DictionaryObject
	for _, kid := range kids {
		dict, ok := r.Resolve(kid).(pdfobj.DictionaryObject)
		if !ok {
			t.Fatalf("merged kid %v is not a dictionary", kid)
		}
		dicts = append(dicts, dict)
	}

	count, ok := pages["/Count"].(pdfobj.NumberObject)
	if !ok || int(count) != len(dicts) {
		t.Fatalf("/Count = %v, want %d", pages["/Count"], len(dicts))
	}
	return r, dicts
}

// pageLabel extracts the content-stream label written by buildPagePDF.
func pageLabel(t *testing.T, r *pdfobj.Reader, page pdfobj.DictionaryObject) string {
	t.Helper()

	stream, ok := r.Resolve(page["/Contents"]).(pdfobj.StreamObject)
	if !ok {
		t.Fatalf("page /Contents is not a stream")
	}
	return strings.TrimPrefix(string(stream.Data), "% ")
}

// ---------------------------------------------------------------------------
// TestMerger_AppendOrder - Pages appear in append order
// ---------------------------------------------------------------------------

func TestMerger_AppendOrder(t *testing.T) {
	t.Parallel()

	m := pdfmerge.New()
	labels := []string{"first", "second", "third"}
	for _, label := range labels {
		pdf := buildPagePDF(t, label, 612, 792)
		if err := m.AppendPage(label+".svg", pdf); err != nil {
			t.Fatalf("AppendPage(%s) error = %v", label, err)
		}
	}
	if got := m.PageCount(); got != 3 {
		t.Errorf("PageCount() = %d, want 3", got)
	}

	merged, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	r, pages := mergedPages(t, merged)
	if len(pages) != 3 {
		t.Fatalf("merged document has %d pages, want 3", len(pages))
	}
	for i, want := range labels {
		if got := pageLabel(t, r, pages[i]); got != want {
			t.Errorf("page %d label = %q, want %q", i, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestMerger_RenumbersOverlappingIDs - Identifier uniqueness
// ---------------------------------------------------------------------------

func TestMerger_RenumbersOverlappingIDs(t *testing.T) {
	t.Parallel()

	// Every input reuses object numbers 1..4. The merged xref must still
	// hold one entry per object with no collisions.
	m := pdfmerge.New()
	const n = 4
	for i := 0; i < n; i++ {
		pdf := buildPagePDF(t, fmt.Sprintf("page-%d", i), 612, 792)
		if err := m.AppendPage(fmt.Sprintf("p%d.svg", i), pdf); err != nil {
			t.Fatalf("AppendPage(%d) error = %v", i, err)
		}
	}

	merged, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	r, pages := mergedPages(t, merged)
	if len(pages) != n {
		t.Fatalf("merged document has %d pages, want %d", len(pages), n)
	}

	seen := make(map[int]bool)
	for _, ref := range r.Refs() {
		if seen[ref.Number] {
			t.Errorf("object number %d appears twice in merged xref", ref.Number)
		}
		seen[ref.Number] = true
	}

	// Each page dictionary must resolve independently. With shared source
	// numbering a renumbering bug would make pages alias each other.
	labels := make(map[string]bool)
	for _, page := range pages {
		labels[pageLabel(t, r, page)] = true
	}
	if len(labels) != n {
		t.Errorf("merged pages carry %d distinct content streams, want %d", len(labels), n)
	}
}

// ---------------------------------------------------------------------------
// TestMerger_PageAttributes - Inherited attributes and re-parenting
// ---------------------------------------------------------------------------

func TestMerger_PageAttributes(t *testing.T) {
	t.Parallel()

	m := pdfmerge.New()
	if err := m.AppendPage("wide.svg", buildPagePDF(t, "wide", 842, 595)); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}
	if err := m.AppendPage("tall.svg", buildPagePDF(t, "tall", 595, 842)); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}

	merged, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	r, pages := mergedPages(t, merged)

	// Per-page media boxes survive the merge.
	wantWidths := []float64{842, 595}
	for i, page := range pages {
		box, ok := r.Resolve(page["/MediaBox"]).(pdfobj.ArrayObject)
		if !ok || len(box) != 4 {
			t.Fatalf("page %d /MediaBox = %v", i, page["/MediaBox"])
		}
		if float64(box[2].(pdfobj.NumberObject)) != wantWidths[i] {
			t.Errorf("page %d width = %v, want %v", i, box[2], wantWidths[i])
		}
	}

	// /Resources was declared on the source page tree node; it must be
	// pushed down onto the page before the source tree is discarded.
	for i, page := range pages {
		if _, ok := page["/Resources"]; !ok {
			t.Errorf("page %d lost inherited /Resources", i)
		}
		parent, ok := page["/Parent"].(pdfobj.Ref)
		if !ok {
			t.Fatalf("page %d /Parent = %v, want a reference", i, page["/Parent"])
		}
		node, ok := r.Resolve(parent).(pdfobj.DictionaryObject)
		if !ok || node["/Type"] != pdfobj.NameObject("/Pages") {
			t.Errorf("page %d /Parent does not point at the rebuilt /Pages node", i)
		}
	}
}

// ---------------------------------------------------------------------------
// TestMerger_Outlines - Per-page bookmarks in the merged catalog
// ---------------------------------------------------------------------------

func TestMerger_Outlines(t *testing.T) {
	t.Parallel()

	m := pdfmerge.New()
	sources := []string{"01-intro.svg", "02-body.svg", "03-end.svg"}
	for _, src := range sources {
		if err := m.AppendPage(src, buildPagePDF(t, src, 612, 792)); err != nil {
			t.Fatalf("AppendPage(%q) error = %v", src, err)
		}
	}

	merged, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	r, _ := mergedPages(t, merged)

	root := r.Trailer()["/Root"].(pdfobj.Ref)
	catalog := r.Resolve(root).(pdfobj.DictionaryObject)
	outlines, ok := r.Resolve(catalog["/Outlines"]).(pdfobj.DictionaryObject)
	if !ok {
		t.Fatal("merged catalog has no /Outlines dictionary")
	}
	if outlines["/Type"] != pdfobj.NameObject("/Outlines") {
		t.Errorf("/Outlines /Type = %v, want /Outlines", outlines["/Type"])
	}
	if count, ok := outlines["/Count"].(pdfobj.NumberObject); !ok || int(count) != len(sources) {
		t.Errorf("/Outlines /Count = %v, want %d", outlines["/Count"], len(sources))
	}

	// Walk the /Next sibling chain: one item per page, titled after the
	// source stem, pointing at the page in merge order.
	itemRef, ok := outlines["/First"]
	if !ok {
		t.Fatal("/Outlines has no /First item")
	}
	wantTitles := []string{"01-intro", "02-body", "03-end"}
	for i, want := range wantTitles {
		item, ok := r.Resolve(itemRef).(pdfobj.DictionaryObject)
		if !ok {
			t.Fatalf("outline item %d is not a dictionary", i)
		}
		if title, ok := item["/Title"].(pdfobj.StringObject); !ok || string(title) != want {
			t.Errorf("item %d /Title = %v, want %q", i, item["/Title"], want)
		}
		dest, ok := item["/Dest"].(pdfobj.ArrayObject)
		if !ok || len(dest) == 0 {
			t.Fatalf("item %d /Dest = %v, want an array", i, item["/Dest"])
		}
		page, ok := r.Resolve(dest[0]).(pdfobj.DictionaryObject)
		if !ok {
			t.Fatalf("item %d /Dest does not resolve to a page", i)
		}
		if got := pageLabel(t, r, page); got != sources[i] {
			t.Errorf("item %d targets page %q, want %q", i, got, sources[i])
		}
		next, hasNext := item["/Next"]
		if i == len(wantTitles)-1 {
			if hasNext {
				t.Errorf("last item has /Next = %v, want none", next)
			}
			if outlines["/Last"] != itemRef {
				t.Errorf("/Outlines /Last = %v, want %v", outlines["/Last"], itemRef)
			}
		} else {
			if !hasNext {
				t.Fatalf("item %d has no /Next sibling", i)
			}
			itemRef = next
		}
	}
}

func TestMerger_DropsSourceOutlines(t *testing.T) {
	t.Parallel()

	// A source document carrying its own bookmarks: the merged output
	// rebuilds the outline, so the incoming /Outlines node must not leak.
	doc := pdfobj.NewDocument("1.4")
	doc.Objects[pdfobj.Ref{Number: 1}] = pdfobj.DictionaryObject{
		"/Type":     pdfobj.NameObject("/Catalog"),
		"/Pages":    pdfobj.Ref{Number: 2},
		"/Outlines": pdfobj.Ref{Number: 5},
	}
	doc.Objects[pdfobj.Ref{Number: 2}] = pdfobj.DictionaryObject{
		"/Type":  pdfobj.NameObject("/Pages"),
		"/Kids":  pdfobj.ArrayObject{pdfobj.Ref{Number: 3}},
		"/Count": pdfobj.NumberObject(1),
	}
	doc.Objects[pdfobj.Ref{Number: 3}] = pdfobj.DictionaryObject{
		"/Type":     pdfobj.NameObject("/Page"),
		"/Parent":   pdfobj.Ref{Number: 2},
		"/MediaBox": pdfobj.ArrayObject{pdfobj.NumberObject(0), pdfobj.NumberObject(0), pdfobj.NumberObject(612), pdfobj.NumberObject(792)},
		"/Contents": pdfobj.Ref{Number: 4},
	}
	doc.Objects[pdfobj.Ref{Number: 4}] = pdfobj.StreamObject{
		Dictionary: pdfobj.DictionaryObject{},
		Data:       []byte("% bookmarked"),
	}
	doc.Objects[pdfobj.Ref{Number: 5}] = pdfobj.DictionaryObject{
		"/Type":  pdfobj.NameObject("/Outlines"),
		"/Count": pdfobj.NumberObject(0),
	}
	doc.Trailer["/Root"] = pdfobj.Ref{Number: 1}
	pdf, err := doc.Bytes()
	if err != nil {
		t.Fatalf("building source document: %v", err)
	}

	m := pdfmerge.New()
	if err := m.AppendPage("bookmarked.svg", pdf); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}
	merged, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	r, _ := mergedPages(t, merged)
	outlineCount := 0
	for _, ref := range r.Refs() {
		dict, ok := r.Resolve(ref).(pdfobj.DictionaryObject)
		if ok && dict["/Type"] == pdfobj.NameObject("/Outlines") {
			outlineCount++
		}
	}
	if outlineCount != 1 {
		t.Errorf("merged document has %d /Outlines nodes, want exactly the rebuilt one", outlineCount)
	}
}

// ---------------------------------------------------------------------------
// TestMerger_Errors - Corrupt input, empty merge, reuse after Finalize
// ---------------------------------------------------------------------------

func TestMerger_CorruptPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pdf  []byte
	}{
		{
			name: "not a PDF at all",
			pdf:  []byte("definitely not a pdf"),
		},
		{
			name: "header only",
			pdf:  []byte("%PDF-1.4\n"),
		},
		{
			name: "truncated document",
			pdf:  buildPagePDF(t, "x", 612, 792)[:40],
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := pdfmerge.New()
			err := m.AppendPage("bad.svg", tt.pdf)
			if !errors.Is(err, pdfmerge.ErrCorruptPage) {
				t.Fatalf("AppendPage() error = %v, want ErrCorruptPage", err)
			}
			if !strings.Contains(err.Error(), "bad.svg") {
				t.Errorf("error %q does not name the source file", err)
			}
			if got := m.PageCount(); got != 0 {
				t.Errorf("PageCount() after failed append = %d, want 0", got)
			}
		})
	}
}

func TestMerger_CorruptPageDoesNotPoisonMerge(t *testing.T) {
	t.Parallel()

	m := pdfmerge.New()
	if err := m.AppendPage("good.svg", buildPagePDF(t, "good", 612, 792)); err != nil {
		t.Fatalf("AppendPage(good) error = %v", err)
	}
	if err := m.AppendPage("bad.svg", []byte("junk")); !errors.Is(err, pdfmerge.ErrCorruptPage) {
		t.Fatalf("AppendPage(bad) error = %v, want ErrCorruptPage", err)
	}

	merged, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	r, pages := mergedPages(t, merged)
	if len(pages) != 1 {
		t.Fatalf("merged document has %d pages, want 1", len(pages))
	}
	if got := pageLabel(t, r, pages[0]); got != "good" {
		t.Errorf("surviving page label = %q, want %q", got, "good")
	}
}

func TestMerger_EmptyMerge(t *testing.T) {
	t.Parallel()

	_, err := pdfmerge.New().Finalize()
	if !errors.Is(err, pdfmerge.ErrNoPages) {
		t.Errorf("Finalize() error = %v, want ErrNoPages", err)
	}
}

func TestMerger_UseAfterFinalize(t *testing.T) {
	t.Parallel()

	m := pdfmerge.New()
	if err := m.AppendPage("a.svg", buildPagePDF(t, "a", 612, 792)); err != nil {
		t.Fatalf("AppendPage() error = %v", err)
	}
	if _, err := m.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if err := m.AppendPage("b.svg", buildPagePDF(t, "b", 612, 792)); !errors.Is(err, pdfmerge.ErrFinalized) {
		t.Errorf("AppendPage() after Finalize error = %v, want ErrFinalized", err)
	}
	if _, err := m.Finalize(); !errors.Is(err, pdfmerge.ErrFinalized) {
		t.Errorf("second Finalize() error = %v, want ErrFinalized", err)
	}
}

// ---------------------------------------------------------------------------
// TestIDAllocator
// ---------------------------------------------------------------------------

func TestIDAllocator(t *testing.T) {
	t.Parallel()

	a := pdfmerge.NewIDAllocator()
	for want := 1; want <= 5; want++ {
		if got := a.Take(); got != want {
			t.Errorf("Take() = %d, want %d", got, want)
		}
	}
}
