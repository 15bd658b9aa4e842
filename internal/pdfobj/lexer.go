package pdfobj

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors for tokenizing.
var (
	ErrUnexpectedEOF = errors.New("unexpected end of data")
	ErrSyntax        = errors.New("invalid PDF syntax")
)

// Lexer tokenizes PDF syntax from a byte slice. It tracks its position so
// the reader can switch to raw byte access when a stream payload follows a
// dictionary.
type Lexer struct {
	data []byte
	pos  int
	buf  []Object // pushed-back tokens, LIFO
}

// NewLexer creates a Lexer over data starting at offset.
func NewLexer(data []byte, offset int) *Lexer {
	return &Lexer{data: data, pos: offset}
}

// Pos returns the current byte offset into the underlying data.
func (l *Lexer) Pos() int { return l.pos }

// SetPos repositions the lexer and drops any pushed-back tokens.
func (l *Lexer) SetPos(pos int) {
	l.pos = pos
	l.buf = l.buf[:0]
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\f' || c == 0
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skipWhitespace advances past whitespace and %-comments.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

// unread pushes a token back so the next readToken returns it.
func (l *Lexer) unread(tok Object) {
	l.buf = append(l.buf, tok)
}

// readToken returns the next primitive token. Structural delimiters are
// returned as KeywordObject values ("[", "]", "<<", ">>").
func (l *Lexer) readToken() (Object, error) {
	if n := len(l.buf); n > 0 {
		tok := l.buf[n-1]
		l.buf = l.buf[:n-1]
		return tok, nil
	}

	l.skipWhitespace()
	if l.pos >= len(l.data) {
		return nil, ErrUnexpectedEOF
	}

	c := l.data[l.pos]
	switch {
	case c == '[':
		l.pos++
		return KeywordObject("["), nil
	case c == ']':
		l.pos++
		return KeywordObject("]"), nil
	case c == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return KeywordObject("<<"), nil
		}
		return l.readHexString()
	case c == '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return KeywordObject(">>"), nil
		}
		return nil, fmt.Errorf("%w: lone '>' at offset %d", ErrSyntax, l.pos)
	case c == '(':
		return l.readLiteralString()
	case c == '/':
		return l.readName()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.readNumber()
	default:
		return l.readKeyword()
	}
}

func (l *Lexer) readName() (Object, error) {
	start := l.pos
	l.pos++ // consume '/'
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		l.pos++
	}
	name := string(l.data[start:l.pos])
	// #XX escapes inside names
	if i := indexByte(name, '#'); i >= 0 {
		decoded := make([]byte, 0, len(name))
		for j := 0; j < len(name); j++ {
			if name[j] == '#' && j+2 < len(name) {
				if v, err := strconv.ParseUint(name[j+1:j+3], 16, 8); err == nil {
					decoded = append(decoded, byte(v))
					j += 2
					continue
				}
			}
			decoded = append(decoded, name[j])
		}
		name = string(decoded)
	}
	return NameObject(name), nil
}

func indexByte(s string, c byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

func (l *Lexer) readNumber() (Object, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			l.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(string(l.data[start:l.pos]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad number at offset %d: %v", ErrSyntax, start, err)
	}
	return NumberObject(v), nil
}

func (l *Lexer) readKeyword() (Object, error) {
	start := l.pos
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isWhitespace(c) || isDelimiter(c) {
			break
		}
		l.pos++
	}
	if l.pos == start {
		return nil, fmt.Errorf("%w: unexpected byte %q at offset %d", ErrSyntax, l.data[start], start)
	}
	kw := string(l.data[start:l.pos])
	switch kw {
	case "true":
		return BooleanObject(true), nil
	case "false":
		return BooleanObject(false), nil
	case "null":
		return NullObject{}, nil
	}
	return KeywordObject(kw), nil
}

func (l *Lexer) readLiteralString() (Object, error) {
	l.pos++ // consume '('
	var out []byte
	depth := 1
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		switch c {
		case '\\':
			l.pos++
			if l.pos >= len(l.data) {
				return nil, ErrUnexpectedEOF
			}
			e := l.data[l.pos]
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(', ')', '\\':
				out = append(out, e)
			case '\n':
				// line continuation, emit nothing
			default:
				if e >= '0' && e <= '7' {
					// up to three octal digits
					v := int(e - '0')
					for n := 0; n < 2 && l.pos+1 < len(l.data); n++ {
						d := l.data[l.pos+1]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
			l.pos++
		case '(':
			depth++
			out = append(out, c)
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth == 0 {
				return StringObject(out), nil
			}
			out = append(out, c)
		default:
			out = append(out, c)
			l.pos++
		}
	}
	return nil, fmt.Errorf("%w: unterminated string", ErrUnexpectedEOF)
}

func (l *Lexer) readHexString() (Object, error) {
	l.pos++ // consume '<'
	var digits []byte
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if c == '>' {
			l.pos++
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			for i := 0; i < len(out); i++ {
				v, err := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
				if err != nil {
					return nil, fmt.Errorf("%w: bad hex string digit: %v", ErrSyntax, err)
				}
				out[i] = byte(v)
			}
			return HexStringObject(out), nil
		}
		if !isWhitespace(c) {
			digits = append(digits, c)
		}
		l.pos++
	}
	return nil, fmt.Errorf("%w: unterminated hex string", ErrUnexpectedEOF)
}

// ReadObject returns the next complete object: containers are assembled
// and "N G R" sequences are folded into Ref values.
func (l *Lexer) ReadObject() (Object, error) {
	tok, err := l.readToken()
	if err != nil {
		return nil, err
	}
	return l.buildObject(tok)
}

func (l *Lexer) buildObject(tok Object) (Object, error) {
	switch t := tok.(type) {
	case KeywordObject:
		switch t {
		case "[":
			return l.readArray()
		case "<<":
			return l.readDictionary()
		}
		return t, nil
	case NumberObject:
		return l.maybeReference(t)
	default:
		return tok, nil
	}
}

// maybeReference folds "num gen R" into a Ref using two-token lookahead.
func (l *Lexer) maybeReference(num NumberObject) (Object, error) {
	if num != NumberObject(int64(num)) || num < 0 {
		return num, nil
	}
	second, err := l.readToken()
	if err != nil {
		return num, nil // EOF after a number is fine, caller sees the number
	}
	gen, ok := second.(NumberObject)
	if !ok || gen != NumberObject(int64(gen)) || gen < 0 {
		l.unread(second)
		return num, nil
	}
	third, err := l.readToken()
	if err != nil {
		l.unread(second)
		return num, nil
	}
	if kw, ok := third.(KeywordObject); ok && kw == "R" {
		return Ref{Number: int(num), Generation: int(gen)}, nil
	}
	l.unread(third)
	l.unread(second)
	return num, nil
}

func (l *Lexer) readArray() (Object, error) {
	arr := ArrayObject{}
	for {
		tok, err := l.readToken()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated array", err)
		}
		if kw, ok := tok.(KeywordObject); ok && kw == "]" {
			return arr, nil
		}
		obj, err := l.buildObject(tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

func (l *Lexer) readDictionary() (Object, error) {
	dict := DictionaryObject{}
	for {
		tok, err := l.readToken()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated dictionary", err)
		}
		if kw, ok := tok.(KeywordObject); ok && kw == ">>" {
			return dict, nil
		}
		key, ok := tok.(NameObject)
		if !ok {
			return nil, fmt.Errorf("%w: dictionary key must be a name, got %s", ErrSyntax, tok)
		}
		value, err := l.ReadObject()
		if err != nil {
			return nil, err
		}
		dict[string(key)] = value
	}
}
