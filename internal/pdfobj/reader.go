package pdfobj

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel errors for document reading.
var (
	ErrNotPDF           = errors.New("missing %PDF header")
	ErrNoXref           = errors.New("cross-reference table not found")
	ErrUnsupportedXref  = errors.New("cross-reference streams are not supported")
	ErrObjectNotFound   = errors.New("object not found")
	ErrMalformedObject  = errors.New("malformed indirect object")
	ErrMalformedTrailer = errors.New("malformed trailer")
)

// Reader parses a whole PDF document held in memory. Objects are parsed
// lazily from the classic cross-reference table and cached.
type Reader struct {
	data    []byte
	xref    map[Ref]int // byte offsets
	trailer DictionaryObject
	cache   map[Ref]Object
}

// NewReader parses the header, cross-reference chain and trailer of data.
func NewReader(data []byte) (*Reader, error) {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return nil, ErrNotPDF
	}

	r := &Reader{
		data:  data,
		xref:  make(map[Ref]int),
		cache: make(map[Ref]Object),
	}

	start, err := findStartXref(data)
	if err != nil {
		return nil, err
	}
	if err := r.loadXrefChain(start); err != nil {
		return nil, err
	}
	if r.trailer == nil {
		return nil, ErrMalformedTrailer
	}
	return r, nil
}

// findStartXref locates the startxref offset near the end of the file.
func findStartXref(data []byte) (int, error) {
	tailLen := 1024
	if tailLen > len(data) {
		tailLen = len(data)
	}
	tail := data[len(data)-tailLen:]
	idx := bytes.LastIndex(tail, []byte("startxref"))
	if idx < 0 {
		return 0, ErrNoXref
	}
	rest := tail[idx+len("startxref"):]
	fields := strings.Fields(string(rest))
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: no offset after startxref", ErrNoXref)
	}
	off, err := strconv.Atoi(fields[0])
	if err != nil || off < 0 || off >= len(data) {
		return 0, fmt.Errorf("%w: bad startxref offset %q", ErrNoXref, fields[0])
	}
	return off, nil
}

// loadXrefChain reads the xref section at offset and follows /Prev links.
// Earlier sections in the chain never override entries already seen,
// matching incremental-update semantics.
func (r *Reader) loadXrefChain(offset int) error {
	seen := map[int]bool{}
	for {
		if seen[offset] {
			return fmt.Errorf("%w: cyclic /Prev chain", ErrMalformedTrailer)
		}
		seen[offset] = true

		lex := NewLexer(r.data, offset)
		tok, err := lex.readToken()
		if err != nil {
			return fmt.Errorf("reading xref section: %w", err)
		}
		kw, ok := tok.(KeywordObject)
		if !ok || kw != "xref" {
			// An indirect object here means a cross-reference stream.
			if _, isNum := tok.(NumberObject); isNum {
				return ErrUnsupportedXref
			}
			return fmt.Errorf("%w: expected 'xref' at offset %d", ErrNoXref, offset)
		}

		trailer, err := r.readXrefTable(lex)
		if err != nil {
			return err
		}
		if r.trailer == nil {
			r.trailer = trailer
		}

		prev, ok := trailer["/Prev"].(NumberObject)
		if !ok {
			return nil
		}
		offset = int(prev)
	}
}

// readXrefTable consumes subsections until the trailer keyword, then
// returns the trailer dictionary.
func (r *Reader) readXrefTable(lex *Lexer) (DictionaryObject, error) {
	for {
		tok, err := lex.readToken()
		if err != nil {
			return nil, fmt.Errorf("reading xref table: %w", err)
		}
		if kw, ok := tok.(KeywordObject); ok && kw == "trailer" {
			obj, err := lex.ReadObject()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedTrailer, err)
			}
			dict, ok := obj.(DictionaryObject)
			if !ok {
				return nil, ErrMalformedTrailer
			}
			return dict, nil
		}

		first, ok := tok.(NumberObject)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %s in xref table", ErrSyntax, tok)
		}
		countObj, err := lex.readToken()
		if err != nil {
			return nil, err
		}
		count, ok := countObj.(NumberObject)
		if !ok {
			return nil, fmt.Errorf("%w: bad xref subsection header", ErrSyntax)
		}

		for i := 0; i < int(count); i++ {
			offTok, err := lex.readToken()
			if err != nil {
				return nil, err
			}
			genTok, err := lex.readToken()
			if err != nil {
				return nil, err
			}
			kindTok, err := lex.readToken()
			if err != nil {
				return nil, err
			}
			off, okOff := offTok.(NumberObject)
			gen, okGen := genTok.(NumberObject)
			kind, okKind := kindTok.(KeywordObject)
			if !okOff || !okGen || !okKind {
				return nil, fmt.Errorf("%w: bad xref entry", ErrSyntax)
			}
			if kind != "n" {
				continue // free entry
			}
			ref := Ref{Number: int(first) + i, Generation: int(gen)}
			if _, exists := r.xref[ref]; !exists {
				r.xref[ref] = int(off)
			}
		}
	}
}

// Trailer returns the document trailer dictionary.
func (r *Reader) Trailer() DictionaryObject { return r.trailer }

// Refs returns every in-use reference recorded in the xref chain.
func (r *Reader) Refs() []Ref {
	refs := make([]Ref, 0, len(r.xref))
	for ref := range r.xref {
		refs = append(refs, ref)
	}
	return refs
}

// Object parses (or returns the cached) indirect object for ref.
func (r *Reader) Object(ref Ref) (Object, error) {
	if obj, ok := r.cache[ref]; ok {
		return obj, nil
	}
	offset, ok := r.xref[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, ref)
	}
	if offset < 0 || offset >= len(r.data) {
		return nil, fmt.Errorf("%w: %s has offset %d beyond file", ErrMalformedObject, ref, offset)
	}

	lex := NewLexer(r.data, offset)
	num, err := expectNumber(lex)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedObject, ref, err)
	}
	gen, err := expectNumber(lex)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedObject, ref, err)
	}
	if int(num) != ref.Number || int(gen) != ref.Generation {
		return nil, fmt.Errorf("%w: xref points %s at object %d %d", ErrMalformedObject, ref, int(num), int(gen))
	}
	if err := expectKeyword(lex, "obj"); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedObject, ref, err)
	}

	obj, err := lex.ReadObject()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedObject, ref, err)
	}

	// A dictionary followed by the stream keyword is a stream object.
	if dict, ok := obj.(DictionaryObject); ok {
		tok, err := lex.readToken()
		if err == nil {
			if kw, isKw := tok.(KeywordObject); isKw && kw == "stream" {
				stream, err := r.readStreamData(lex, dict)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrMalformedObject, ref, err)
				}
				obj = stream
			} else {
				lex.unread(tok)
			}
		}
	}

	r.cache[ref] = obj
	return obj, nil
}

// readStreamData consumes the raw payload after a stream keyword. The
// /Length entry may itself be an indirect reference.
func (r *Reader) readStreamData(lex *Lexer, dict DictionaryObject) (Object, error) {
	length, err := r.streamLength(dict)
	if err != nil {
		return nil, err
	}

	pos := lex.Pos()
	// EOL after the stream keyword: CRLF or LF
	if pos < len(r.data) && r.data[pos] == '\r' {
		pos++
	}
	if pos < len(r.data) && r.data[pos] == '\n' {
		pos++
	}
	if pos+length > len(r.data) {
		return nil, fmt.Errorf("stream length %d exceeds file size", length)
	}
	data := r.data[pos : pos+length]

	lex.SetPos(pos + length)
	if err := expectKeyword(lex, "endstream"); err != nil {
		return nil, fmt.Errorf("missing endstream: %w", err)
	}
	return StreamObject{Dictionary: dict, Data: data}, nil
}

func (r *Reader) streamLength(dict DictionaryObject) (int, error) {
	switch v := dict["/Length"].(type) {
	case NumberObject:
		return int(v), nil
	case Ref:
		resolved, err := r.Object(v)
		if err != nil {
			return 0, fmt.Errorf("resolving stream /Length: %w", err)
		}
		n, ok := resolved.(NumberObject)
		if !ok {
			return 0, fmt.Errorf("stream /Length resolves to %T", resolved)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("stream missing /Length")
	}
}

// Resolve dereferences obj if it is an indirect reference, following
// chains. Unresolvable references yield null, matching viewer behavior.
func (r *Reader) Resolve(obj Object) Object {
	for i := 0; i < 32; i++ {
		ref, ok := obj.(Ref)
		if !ok {
			return obj
		}
		next, err := r.Object(ref)
		if err != nil {
			return NullObject{}
		}
		obj = next
	}
	return NullObject{}
}

func expectNumber(lex *Lexer) (NumberObject, error) {
	tok, err := lex.readToken()
	if err != nil {
		return 0, err
	}
	n, ok := tok.(NumberObject)
	if !ok {
		return 0, fmt.Errorf("expected number, got %s", tok)
	}
	return n, nil
}

func expectKeyword(lex *Lexer, want KeywordObject) error {
	tok, err := lex.readToken()
	if err != nil {
		return err
	}
	kw, ok := tok.(KeywordObject)
	if !ok || kw != want {
		return fmt.Errorf("expected %q, got %s", want, tok)
	}
	return nil
}
