// Package pipeline contains the SVG preprocessing stage that runs before
// rendering: base64-inlined SVG images are expanded into inline groups so
// the render backend never sees the data-URI encoding path it mishandles.
package pipeline

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Marker attribute stamped on expanded groups. The scan recognizes it and
// skips elements that already carry it, making expansion idempotent.
const ExpandedMarker = "data-svg2pdf-expanded"

// dataURIPrefix is the encoding-scheme tag that triggers expansion. Only
// the svg+xml scheme is rewritten; raster data URIs render correctly
// downstream and are left alone.
const dataURIPrefix = "data:image/svg+xml;base64,"

// maxExpandDepth bounds recursion through embedded assets that themselves
// embed assets. Beyond it the payload is left encoded rather than risking
// unbounded growth on self-referential input.
const maxExpandDepth = 10

// Precompiled patterns for the element scan.
var (
	// Whole <image> element, self-closing or with an immediate close tag.
	imageElemPattern = regexp.MustCompile(`(?s)<image\b[^>]*?(?:/>|>\s*</image\s*>)`)

	// Individual attributes inside a start tag.
	attrPattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_:.-]*)\s*=\s*("([^"]*)"|'([^']*)')`)
)

// Warning records a recovered per-element problem: the element was left
// byte-identical and processing continued.
type Warning struct {
	Offset int    // byte offset of the element in the input text
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("embedded asset at offset %d left unmodified: %s", w.Offset, w.Reason)
}

// attribute preserves document order, which a map would lose.
type attribute struct {
	name  string
	value string
}

// ExpandDataImages rewrites every <image> element whose href is a
// base64-encoded SVG data URI into an inline <g> group carrying the
// element's other attributes. Elements whose payloads fail to decode are
// left untouched and reported as warnings. Input with no matching
// elements is returned unchanged. Running the function twice is a no-op.
func ExpandDataImages(svg string) (string, []Warning, error) {
	if err := checkWellFormed(svg); err != nil {
		return "", nil, fmt.Errorf("malformed document: %w", err)
	}

	out, warnings := expandFragment(svg, 0)
	return out, warnings, nil
}

// expandFragment runs the scan-and-splice pass over markup, recursing
// into expanded payloads so an asset embedded inside another asset is
// inlined too and the backend never sees a data URI at any depth.
func expandFragment(svg string, depth int) (string, []Warning) {
	matches := imageElemPattern.FindAllStringIndex(svg, -1)
	if len(matches) == 0 {
		return svg, nil
	}

	var warnings []Warning
	var out strings.Builder
	out.Grow(len(svg))
	last := 0

	for _, span := range matches {
		element := svg[span[0]:span[1]]

		replacement, warns := expandElement(element, depth)
		for _, w := range warns {
			// Nested warnings carry offsets inside the decoded payload;
			// rebase everything onto the element's position here.
			warnings = append(warnings, Warning{Offset: span[0], Reason: w.Reason})
		}
		if replacement == "" {
			continue // not an embedded SVG asset, or left as-is after a warning
		}

		out.WriteString(svg[last:span[0]])
		out.WriteString(replacement)
		last = span[1]
	}

	if last == 0 {
		// Every match was skipped; hand back the original string so
		// clean input stays identical, not merely equal.
		return svg, warnings
	}
	out.WriteString(svg[last:])
	return out.String(), warnings
}

// expandElement turns one matched <image> element into its replacement.
// An empty replacement means "leave the original in place"; the warnings
// report decode failures, either of this element's own payload or of
// elements nested inside it.
func expandElement(element string, depth int) (replacement string, warns []Warning) {
	attrs := parseAttributes(element)

	var payload string
	found := false
	for _, a := range attrs {
		if a.name == ExpandedMarker {
			return "", nil // already normalized by an earlier pass
		}
		if a.name == "href" || a.name == "xlink:href" {
			if strings.HasPrefix(a.value, dataURIPrefix) {
				payload = a.value[len(dataURIPrefix):]
				found = true
			}
		}
	}
	if !found {
		return "", nil
	}

	inner, reason := decodeInnerSVG(payload)
	if reason != "" {
		return "", []Warning{{Reason: reason}}
	}
	if depth < maxExpandDepth {
		inner, warns = expandFragment(inner, depth+1)
	}

	var sb strings.Builder
	sb.WriteString("<g ")
	sb.WriteString(ExpandedMarker)
	sb.WriteString(`="true"`)
	for _, a := range attrs {
		if a.name == "href" || a.name == "xlink:href" {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.value))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	sb.WriteString(inner)
	sb.WriteString("</g>")
	return sb.String(), warns
}

// decodeInnerSVG decodes a base64 payload and strips the outer <svg>
// wrapper of the decoded document, returning its inner markup. A
// non-empty reason means the payload must be left embedded as-is.
func decodeInnerSVG(payload string) (inner, reason string) {
	trimmed := strings.Map(dropSpace, payload)
	if trimmed == "" {
		return "", "empty payload"
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return "", fmt.Sprintf("invalid base64: %v", err)
	}
	if !utf8.Valid(decoded) {
		return "", "decoded payload is not valid UTF-8"
	}

	text := string(decoded)
	if err := checkWellFormed(text); err != nil {
		return "", fmt.Sprintf("decoded payload is not well-formed: %v", err)
	}

	open := strings.Index(text, "<svg")
	if open < 0 {
		return "", "decoded payload has no <svg> root"
	}
	openEnd := strings.IndexByte(text[open:], '>')
	if openEnd < 0 {
		return "", "decoded payload has an unterminated <svg> tag"
	}
	if text[open+openEnd-1] == '/' {
		return "", "" // empty self-closing root, nothing to inline
	}
	closing := strings.LastIndex(text, "</svg")
	if closing < 0 || closing < open+openEnd {
		return "", "decoded payload has no closing </svg>"
	}

	return text[open+openEnd+1 : closing], ""
}

// parseAttributes extracts the attributes of the element's start tag in
// document order.
func parseAttributes(element string) []attribute {
	end := strings.IndexByte(element, '>')
	if end < 0 {
		end = len(element)
	}
	startTag := element[:end]

	var attrs []attribute
	for _, m := range attrPattern.FindAllStringSubmatch(startTag, -1) {
		value := m[3]
		if m[2][0] == '\'' {
			value = m[4]
		}
		attrs = append(attrs, attribute{name: m[1], value: unescapeAttr(value)})
	}
	return attrs
}

// checkWellFormed runs a token scan over the markup, rejecting structural
// breakage (unbalanced tags, truncation). Typesetting exports sometimes
// use HTML-style entities, so those are allowed.
func checkWellFormed(text string) error {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.Entity = xml.HTMLEntity
	for {
		_, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r':
		return -1
	}
	return r
}

func escapeAttr(s string) string {
	var sb strings.Builder
	if err := xml.EscapeText(&sb, []byte(s)); err != nil {
		return s
	}
	return sb.String()
}

func unescapeAttr(s string) string {
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return replacer.Replace(s)
}
