// Package pdfmerge folds independently rendered single-page PDFs into one
// multi-page document. Each appended page's object graph is renumbered
// through an explicit allocator so identifiers stay globally unique, all
// cross-references are rewritten, and the page dictionaries are spliced
// under a single rebuilt /Pages node in append order.
package pdfmerge

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alnah/go-svg2pdf/internal/pdfobj"
)

// Sentinel errors for merge operations.
var (
	ErrNoPages     = errors.New("no pages to merge")
	ErrCorruptPage = errors.New("page document structure is unreadable")
	ErrFinalized   = errors.New("merger already finalized")
)

// Output PDF version, matching what the upstream toolchain produced.
const pdfVersion = "1.5"

// Keys a page may inherit from its /Pages ancestors. They are copied down
// onto the page dictionary before re-parenting so the rebuilt tree cannot
// lose them.
var inheritableKeys = []string{"/Resources", "/MediaBox", "/CropBox", "/Rotate"}

// IDAllocator hands out globally unique object numbers. It is owned by a
// single Merger; passing it explicitly keeps merges composable and
// testable in isolation.
type IDAllocator struct {
	next int
}

// NewIDAllocator starts numbering at 1.
func NewIDAllocator() *IDAllocator { return &IDAllocator{next: 1} }

// Take returns the next unused object number.
func (a *IDAllocator) Take() int {
	n := a.next
	a.next++
	return n
}

// Merger accumulates pages. It is not safe for concurrent use; callers
// feed it sequentially in the order pages must appear.
type Merger struct {
	alloc      *IDAllocator
	objects    map[pdfobj.Ref]pdfobj.Object
	pageRefs   []pdfobj.Ref
	pageTitles []string
	finalized  bool
}

// New creates an empty Merger with its own allocator.
func New() *Merger {
	return &Merger{
		alloc:   NewIDAllocator(),
		objects: make(map[pdfobj.Ref]pdfobj.Object),
	}
}

// PageCount returns the number of pages appended so far.
func (m *Merger) PageCount() int { return len(m.pageRefs) }

// AppendPage ingests one rendered document. source names the input it
// came from and is only used in diagnostics. Every object of the incoming
// document receives a fresh number; its catalog and page-tree nodes are
// discarded because the merged document grows its own.
func (m *Merger) AppendPage(source string, pdf []byte) error {
	if m.finalized {
		return ErrFinalized
	}

	reader, err := pdfobj.NewReader(pdf)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptPage, source, err)
	}

	pages, treeRefs, err := collectPages(reader)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorruptPage, source, err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("%w: %s: document has no pages", ErrCorruptPage, source)
	}

	// Fresh number for every incoming object, generation reset to 0.
	renumber := make(map[int]pdfobj.Ref)
	refs := reader.Refs()
	for _, old := range refs {
		renumber[old.Number] = pdfobj.Ref{Number: m.alloc.Take()}
	}

	// The incoming catalog and page-tree nodes are dropped; the merged
	// document rebuilds both at Finalize.
	drop := make(map[int]bool)
	for _, ref := range treeRefs {
		drop[ref.Number] = true
	}
	if root, ok := reader.Trailer()["/Root"].(pdfobj.Ref); ok {
		drop[root.Number] = true
	}

	for _, old := range refs {
		if drop[old.Number] {
			continue
		}
		obj, err := reader.Object(old)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrCorruptPage, source, err)
		}
		// Incoming bookmarks are discarded; the merged document builds
		// its own outline over the final page order.
		if d, ok := obj.(pdfobj.DictionaryObject); ok && d["/Type"] == pdfobj.NameObject("/Outlines") {
			continue
		}
		m.objects[renumber[old.Number]] = rewriteRefs(obj, renumber)
	}

	for _, p := range pages {
		newRef, ok := renumber[p.ref.Number]
		if !ok {
			return fmt.Errorf("%w: %s: page object %s missing from xref", ErrCorruptPage, source, p.ref)
		}
		m.objects[newRef] = rewriteRefs(p.dict, renumber)
		m.pageRefs = append(m.pageRefs, newRef)
		m.pageTitles = append(m.pageTitles, outlineTitle(source, len(m.pageRefs)))
	}
	return nil
}

// outlineTitle derives a bookmark title from the page's source path,
// falling back to a positional name when there is none.
func outlineTitle(source string, pagenum int) string {
	base := filepath.Base(source)
	if stem := strings.TrimSuffix(base, filepath.Ext(base)); stem != "" && stem != "." {
		return stem
	}
	return fmt.Sprintf("Page_%d", pagenum)
}

// Finalize builds the page tree and catalog and serializes the merged
// document. The byte structure is produced once; no partial output is
// observable before this call.
func (m *Merger) Finalize() ([]byte, error) {
	if m.finalized {
		return nil, ErrFinalized
	}
	if len(m.pageRefs) == 0 {
		return nil, ErrNoPages
	}
	m.finalized = true

	pagesRef := pdfobj.Ref{Number: m.alloc.Take()}
	catalogRef := pdfobj.Ref{Number: m.alloc.Take()}

	kids := make(pdfobj.ArrayObject, 0, len(m.pageRefs))
	for _, ref := range m.pageRefs {
		page, ok := m.objects[ref].(pdfobj.DictionaryObject)
		if !ok {
			return nil, fmt.Errorf("%w: page %s lost during merge", ErrCorruptPage, ref)
		}
		page = page.Clone()
		page["/Parent"] = pagesRef
		m.objects[ref] = page
		kids = append(kids, ref)
	}

	m.objects[pagesRef] = pdfobj.DictionaryObject{
		"/Type":  pdfobj.NameObject("/Pages"),
		"/Kids":  kids,
		"/Count": pdfobj.NumberObject(len(m.pageRefs)),
	}
	m.objects[catalogRef] = pdfobj.DictionaryObject{
		"/Type":     pdfobj.NameObject("/Catalog"),
		"/Pages":    pagesRef,
		"/Outlines": m.buildOutlines(),
	}

	doc := &pdfobj.Document{
		Version: pdfVersion,
		Objects: m.objects,
		Trailer: pdfobj.DictionaryObject{"/Root": catalogRef},
	}
	return doc.Bytes()
}

// buildOutlines emits one bookmark per merged page, titled after its
// source file, chained as siblings under a single /Outlines root.
func (m *Merger) buildOutlines() pdfobj.Ref {
	rootRef := pdfobj.Ref{Number: m.alloc.Take()}
	itemRefs := make([]pdfobj.Ref, len(m.pageRefs))
	for i := range itemRefs {
		itemRefs[i] = pdfobj.Ref{Number: m.alloc.Take()}
	}

	for i, pageRef := range m.pageRefs {
		item := pdfobj.DictionaryObject{
			"/Title":  pdfobj.StringObject(m.pageTitles[i]),
			"/Parent": rootRef,
			"/Dest":   pdfobj.ArrayObject{pageRef, pdfobj.NameObject("/Fit")},
		}
		if i > 0 {
			item["/Prev"] = itemRefs[i-1]
		}
		if i < len(itemRefs)-1 {
			item["/Next"] = itemRefs[i+1]
		}
		m.objects[itemRefs[i]] = item
	}

	m.objects[rootRef] = pdfobj.DictionaryObject{
		"/Type":  pdfobj.NameObject("/Outlines"),
		"/First": itemRefs[0],
		"/Last":  itemRefs[len(itemRefs)-1],
		"/Count": pdfobj.NumberObject(len(itemRefs)),
	}
	return rootRef
}

// sourcePage pairs a page dictionary with its original reference. The
// dictionary already includes attributes inherited from its ancestors.
type sourcePage struct {
	ref  pdfobj.Ref
	dict pdfobj.DictionaryObject
}

// collectPages walks the document's page tree in order, returning the
// pages (with inherited attributes pushed down) and the refs of the
// intermediate tree nodes so the caller can discard them.
func collectPages(r *pdfobj.Reader) ([]sourcePage, []pdfobj.Ref, error) {
	rootRef, ok := r.Trailer()["/Root"].(pdfobj.Ref)
	if !ok {
		return nil, nil, fmt.Errorf("trailer has no /Root reference")
	}
	catalog, ok := r.Resolve(rootRef).(pdfobj.DictionaryObject)
	if !ok {
		return nil, nil, fmt.Errorf("catalog is not a dictionary")
	}
	pagesRef, ok := catalog["/Pages"].(pdfobj.Ref)
	if !ok {
		return nil, nil, fmt.Errorf("catalog has no /Pages reference")
	}

	var pages []sourcePage
	var treeRefs []pdfobj.Ref
	err := walkPageTree(r, pagesRef, pdfobj.DictionaryObject{}, &pages, &treeRefs, 0)
	return pages, treeRefs, err
}

func walkPageTree(r *pdfobj.Reader, ref pdfobj.Ref, inherited pdfobj.DictionaryObject, pages *[]sourcePage, treeRefs *[]pdfobj.Ref, depth int) error {
	if depth > 32 {
		return fmt.Errorf("page tree deeper than 32 levels")
	}
	node, ok := r.Resolve(ref).(pdfobj.DictionaryObject)
	if !ok {
		return fmt.Errorf("page tree node %s is not a dictionary", ref)
	}

	switch node["/Type"] {
	case pdfobj.NameObject("/Pages"):
		*treeRefs = append(*treeRefs, ref)
		carried := inherited.Clone()
		for _, key := range inheritableKeys {
			if v, ok := node[key]; ok {
				carried[key] = v
			}
		}
		kids, ok := r.Resolve(node["/Kids"]).(pdfobj.ArrayObject)
		if !ok {
			return fmt.Errorf("pages node %s has no /Kids array", ref)
		}
		for _, kid := range kids {
			kidRef, ok := kid.(pdfobj.Ref)
			if !ok {
				return fmt.Errorf("pages node %s has a non-reference kid", ref)
			}
			if err := walkPageTree(r, kidRef, carried, pages, treeRefs, depth+1); err != nil {
				return err
			}
		}
		return nil

	case pdfobj.NameObject("/Page"):
		dict := node.Clone()
		for _, key := range inheritableKeys {
			if _, present := dict[key]; !present {
				if v, ok := inherited[key]; ok {
					dict[key] = v
				}
			}
		}
		delete(dict, "/Parent")
		*pages = append(*pages, sourcePage{ref: ref, dict: dict})
		return nil

	default:
		return fmt.Errorf("page tree node %s has type %v", ref, node["/Type"])
	}
}

// rewriteRefs returns obj with every indirect reference replaced through
// the renumber map. References to objects absent from the source xref are
// nulled out rather than left dangling.
func rewriteRefs(obj pdfobj.Object, renumber map[int]pdfobj.Ref) pdfobj.Object {
	switch o := obj.(type) {
	case pdfobj.Ref:
		if newRef, ok := renumber[o.Number]; ok {
			return newRef
		}
		return pdfobj.NullObject{}
	case pdfobj.ArrayObject:
		out := make(pdfobj.ArrayObject, len(o))
		for i, v := range o {
			out[i] = rewriteRefs(v, renumber)
		}
		return out
	case pdfobj.DictionaryObject:
		out := make(pdfobj.DictionaryObject, len(o))
		for k, v := range o {
			out[k] = rewriteRefs(v, renumber)
		}
		return out
	case pdfobj.StreamObject:
		dict := rewriteRefs(o.Dictionary, renumber).(pdfobj.DictionaryObject)
		return pdfobj.StreamObject{Dictionary: dict, Data: o.Data}
	default:
		return obj
	}
}
