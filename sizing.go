package svg2pdf

import (
	"regexp"
	"strconv"
	"strings"
)

// Regexes for reading the root element's sizing attributes.
// Attribute extraction is textual on purpose: sizing must work even for
// documents the XML parser would reject, since the backend gets the final say.
var (
	svgOpenTagPattern = regexp.MustCompile(`(?s)<svg\b[^>]*>`)
	widthAttrPattern  = regexp.MustCompile(`\bwidth\s*=\s*["']([^"']+)["']`)
	heightAttrPattern = regexp.MustCompile(`\bheight\s*=\s*["']([^"']+)["']`)
	viewBoxPattern    = regexp.MustCompile(`\bviewBox\s*=\s*["']\s*([-\d.eE+]+)[\s,]+([-\d.eE+]+)[\s,]+([-\d.eE+]+)[\s,]+([-\d.eE+]+)\s*["']`)
)

// intrinsicSize derives page dimensions from the document itself:
// width/height attributes on the root element first, viewBox second.
// Unitless values and px are treated as points, matching how PDF-oriented
// SVG exporters size their output.
func intrinsicSize(svg string) (PageSize, bool) {
	openTag := svgOpenTagPattern.FindString(svg)
	if openTag == "" {
		return PageSize{}, false
	}

	if w, okW := attrLength(openTag, widthAttrPattern); okW {
		if h, okH := attrLength(openTag, heightAttrPattern); okH {
			return PageSize{Width: w, Height: h}, true
		}
	}

	if m := viewBoxPattern.FindStringSubmatch(openTag); m != nil {
		w, errW := strconv.ParseFloat(m[3], 64)
		h, errH := strconv.ParseFloat(m[4], 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return PageSize{Width: w, Height: h}, true
		}
	}

	return PageSize{}, false
}

// attrLength extracts one length attribute from an opening tag and converts
// it to points. Returns false for missing, percentage, or non-positive values.
func attrLength(openTag string, pattern *regexp.Regexp) (float64, bool) {
	m := pattern.FindStringSubmatch(openTag)
	if m == nil {
		return 0, false
	}
	v, ok := parseLength(strings.TrimSpace(m[1]))
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// unitToPoints maps SVG length units to point multipliers.
// User units (no suffix) and px map 1:1 to points.
var unitToPoints = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 1,
	"pc": 12,
	"in": 72,
	"mm": 72.0 / 25.4,
	"cm": 72.0 / 2.54,
}

// parseLength converts an SVG length string ("612", "8.5in", "210mm") to points.
func parseLength(s string) (float64, bool) {
	if s == "" || strings.HasSuffix(s, "%") {
		return 0, false
	}

	unit := ""
	num := s
	for suffix := range unitToPoints {
		if suffix != "" && strings.HasSuffix(s, suffix) {
			unit = suffix
			num = strings.TrimSuffix(s, suffix)
			break
		}
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, false
	}
	return v * unitToPoints[unit], true
}
