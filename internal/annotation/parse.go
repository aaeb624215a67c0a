package annotation

import (
	"strings"

	"github.com/dshills/compactlog/internal/textrange"
)

// Annotation is one log probe parsed from a line of text.
// It is derived state; the document text is the source of truth.
type Annotation struct {
	// ID is the unique id embedded in the fragment.
	ID string

	// Line is the 0-based line holding the fragment.
	Line int

	// FullRange covers the fragment including both outer delimiters.
	FullRange textrange.Range

	// VarRange covers the padded expression text between the var delimiters.
	VarRange textrange.Range

	// PayloadRange covers the expression text itself, without padding.
	PayloadRange textrange.Range

	// StringifyRange covers the JSON copy of the expression text.
	StringifyRange textrange.Range

	// LineMetaRange covers the quoted line label.
	LineMetaRange textrange.Range

	// IDRange covers the id between the id separators.
	IDRange textrange.Range

	VarText       string
	PayloadText   string
	StringifyText string
	LineMetaText  string
}

// StringifyDrift reports whether the JSON copy no longer matches the
// expression text.
func (a Annotation) StringifyDrift() bool {
	return a.StringifyText != Stringify(a.VarText)
}

// LineDrift reports whether the line label no longer matches the line the
// fragment sits on.
func (a Annotation) LineDrift() bool {
	return a.LineMetaText != LineMeta(a.Line)
}

// ParseLine returns every well-formed annotation on a line, left to right.
// Malformed fragments are skipped.
func ParseLine(line int, text string) []Annotation {
	if !strings.Contains(text, OuterDelim) {
		return nil
	}

	var result []Annotation
	parts := strings.Split(text, OuterDelim)

	// Odd segments are fragment bodies; the last segment is never a body
	// since it has no closing delimiter.
	for i := 1; i < len(parts)-1; i += 2 {
		a, ok := parseBody(parts, i, line)
		if ok {
			result = append(result, a)
		}
	}
	return result
}

func parseBody(parts []string, index, line int) (Annotation, bool) {
	body := parts[index]

	varParts := strings.Split(body, VarDelim)
	strParts := strings.Split(body, StringifyDelim)
	lineParts := strings.Split(body, LineDelim)
	idParts := strings.Split(body, IDSeparator)

	if len(varParts) < 3 || len(strParts) < 3 || len(lineParts) < 3 || len(idParts) < 3 {
		return Annotation{}, false
	}
	id := idParts[1]
	if id == "" {
		return Annotation{}, false
	}

	full := textrange.SegmentRange(parts, index, line, len(OuterDelim), 0, true)
	bodyStart := full.Start.Column + len(OuterDelim)

	a := Annotation{
		ID:             id,
		Line:           line,
		FullRange:      full,
		VarRange:       textrange.SegmentRange(varParts, 1, line, len(VarDelim), bodyStart, false),
		StringifyRange: textrange.SegmentRange(strParts, 1, line, len(StringifyDelim), bodyStart, false),
		LineMetaRange:  textrange.SegmentRange(lineParts, 1, line, len(LineDelim), bodyStart, false),
		IDRange:        textrange.SegmentRange(idParts, 1, line, len(IDSeparator), bodyStart, false),
		VarText:        varParts[1],
		StringifyText:  strParts[1],
		LineMetaText:   lineParts[1],
	}
	a.PayloadText, a.PayloadRange = payloadOf(a.VarText, a.VarRange)
	return a, true
}

// payloadOf strips the padding from the var segment and narrows its range
// to match.
func payloadOf(varText string, varRange textrange.Range) (string, textrange.Range) {
	r := varRange
	s := varText
	if strings.HasPrefix(s, " ") {
		s = s[1:]
		r.Start.Column++
	}
	if strings.HasSuffix(s, " ") {
		s = s[:len(s)-1]
		r.End.Column--
	}
	return s, r
}

// LineSource is a read-only view of document lines.
type LineSource interface {
	LineCount() int
	LineText(line int) string
}

// ParseDocument parses every line of src.
func ParseDocument(src LineSource) []Annotation {
	var result []Annotation
	for line := 0; line < src.LineCount(); line++ {
		result = append(result, ParseLine(line, src.LineText(line))...)
	}
	return result
}

// ParseRange parses the lines from first to last inclusive, clamped to the
// document.
func ParseRange(src LineSource, first, last int) []Annotation {
	if first < 0 {
		first = 0
	}
	if n := src.LineCount(); last >= n {
		last = n - 1
	}
	var result []Annotation
	for line := first; line <= last; line++ {
		result = append(result, ParseLine(line, src.LineText(line))...)
	}
	return result
}

// Find returns the annotation with the given id.
func Find(anns []Annotation, id string) (Annotation, bool) {
	for _, a := range anns {
		if a.ID == id {
			return a, true
		}
	}
	return Annotation{}, false
}

// FindIntersecting returns the first annotation whose fragment intersects r.
func FindIntersecting(anns []Annotation, r textrange.Range) (Annotation, bool) {
	for _, a := range anns {
		if a.FullRange.Intersects(r) {
			return a, true
		}
	}
	return Annotation{}, false
}
