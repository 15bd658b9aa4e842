package pdfobj

import (
	"bytes"
	"fmt"
	"sort"
)

// Document is an in-memory PDF ready for serialization: a set of indirect
// objects plus the trailer entries (/Root at minimum). /Size is computed
// at write time.
type Document struct {
	Version string // e.g. "1.5"
	Objects map[Ref]Object
	Trailer DictionaryObject
}

// NewDocument creates an empty document with the given version.
func NewDocument(version string) *Document {
	return &Document{
		Version: version,
		Objects: make(map[Ref]Object),
		Trailer: DictionaryObject{},
	}
}

// MaxNumber returns the highest object number in use, or 0.
func (d *Document) MaxNumber() int {
	max := 0
	for ref := range d.Objects {
		if ref.Number > max {
			max = ref.Number
		}
	}
	return max
}

// Bytes serializes the document: header, body in object-number order, a
// single classic xref section covering 0..max, trailer, startxref. Gaps
// in the numbering become free xref entries, so renumbered object sets
// with holes are still valid.
func (d *Document) Bytes() ([]byte, error) {
	if _, ok := d.Trailer["/Root"]; !ok {
		return nil, fmt.Errorf("%w: trailer has no /Root", ErrMalformedTrailer)
	}

	refs := make([]Ref, 0, len(d.Objects))
	for ref := range d.Objects {
		if ref.Number <= 0 {
			return nil, fmt.Errorf("%w: object number %d out of range", ErrMalformedObject, ref.Number)
		}
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Number < refs[j].Number })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", d.Version)
	// Binary marker comment so transports treat the file as binary.
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	maxNum := d.MaxNumber()
	offsets := make(map[int]int, len(refs))
	gens := make(map[int]int, len(refs))
	for _, ref := range refs {
		offsets[ref.Number] = buf.Len()
		gens[ref.Number] = ref.Generation
		fmt.Fprintf(&buf, "%d %d obj\n", ref.Number, ref.Generation)
		writeObject(&buf, d.Objects[ref])
		buf.WriteString("\nendobj\n")
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n <= maxNum; n++ {
		if off, ok := offsets[n]; ok {
			fmt.Fprintf(&buf, "%010d %05d n \n", off, gens[n])
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := d.Trailer.Clone()
	trailer["/Size"] = NumberObject(maxNum + 1)
	delete(trailer, "/Prev")
	buf.WriteString("trailer\n")
	buf.WriteString(trailer.String())
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefStart)

	return buf.Bytes(), nil
}

// writeObject emits obj in file syntax. Streams need special handling
// because String() deliberately does not carry payloads.
func writeObject(buf *bytes.Buffer, obj Object) {
	if stream, ok := obj.(StreamObject); ok {
		dict := stream.Dictionary.Clone()
		dict["/Length"] = NumberObject(len(stream.Data))
		buf.WriteString(dict.String())
		buf.WriteString("\nstream\n")
		buf.Write(stream.Data)
		buf.WriteString("\nendstream")
		return
	}
	buf.WriteString(obj.String())
}
