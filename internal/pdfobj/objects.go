// Package pdfobj implements the subset of the PDF object model needed to
// read back single-page documents produced by the render backends and to
// write a merged multi-page document: the eight basic object types, a
// tokenizer, a classic cross-reference table reader, and a writer.
//
// Object streams and cross-reference streams are not supported; documents
// using them are reported as unreadable rather than half-parsed.
package pdfobj

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Object is the generic interface for all PDF objects. String returns the
// object in PDF file syntax, so the writer can emit objects directly.
type Object interface {
	String() string
}

// Ref identifies an indirect object by number and generation.
type Ref struct {
	Number     int
	Generation int
}

func (r Ref) String() string {
	return fmt.Sprintf("%d %d R", r.Number, r.Generation)
}

// NullObject represents the PDF 'null' value.
type NullObject struct{}

func (n NullObject) String() string { return "null" }

// BooleanObject represents PDF 'true' or 'false'.
type BooleanObject bool

func (b BooleanObject) String() string {
	if b {
		return "true"
	}
	return "false"
}

// NumberObject represents integer or float values.
type NumberObject float64

func (n NumberObject) String() string {
	if n == NumberObject(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// NameObject represents PDF names including the leading slash (e.g. "/Type").
type NameObject string

func (n NameObject) String() string { return string(n) }

// StringObject represents literal strings, stored unescaped.
type StringObject string

func (s StringObject) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '(', ')', '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// HexStringObject represents hex strings (e.g. <AABB>).
type HexStringObject []byte

func (h HexStringObject) String() string { return fmt.Sprintf("<%X>", []byte(h)) }

// ArrayObject represents PDF arrays.
type ArrayObject []Object

func (a ArrayObject) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, obj := range a {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(obj.String())
	}
	sb.WriteString("]")
	return sb.String()
}

// DictionaryObject represents PDF dictionaries. Keys carry the leading
// slash (e.g. "/Type"). Serialization is key-sorted so output is
// deterministic and testable.
type DictionaryObject map[string]Object

func (d DictionaryObject) String() string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString("<<")
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf(" %s %s", k, d[k].String()))
	}
	sb.WriteString(" >>")
	return sb.String()
}

// Clone returns a shallow copy of the dictionary. Values are shared;
// callers that rewrite values must replace them, not mutate in place.
func (d DictionaryObject) Clone() DictionaryObject {
	out := make(DictionaryObject, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// StreamObject represents a dictionary followed by raw stream data.
// The data is carried verbatim; filters are never decoded because merging
// only rewrites dictionary references around the payload.
type StreamObject struct {
	Dictionary DictionaryObject
	Data       []byte
}

func (s StreamObject) String() string {
	return fmt.Sprintf("Stream(len=%d)", len(s.Data))
}

// KeywordObject represents raw keywords (obj, endobj, stream, R, ...).
// It only appears at the token level, never inside a parsed object graph.
type KeywordObject string

func (k KeywordObject) String() string { return string(k) }
