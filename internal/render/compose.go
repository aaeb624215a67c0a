// Package render draws an editor in a terminal with its log annotations
// collapsed, the way an editor shows them: the boilerplate around each
// logged expression is hidden behind a marker and the expression is
// highlighted.
package render

import (
	"sort"

	"github.com/dshills/compactlog/internal/host/memhost"
	"github.com/dshills/compactlog/internal/textrange"
)

// SpanKind classifies a run of visible text.
type SpanKind uint8

const (
	// SpanText is plain document text.
	SpanText SpanKind = iota

	// SpanHighlight is highlighted text.
	SpanHighlight

	// SpanMarker stands in for hidden text.
	SpanMarker
)

// Span is a run of text drawn with one style.
type Span struct {
	Text string
	Kind SpanKind
}

// Compose lays out one document line as it is displayed. Text covered by a
// hidden decoration is dropped, and the marker is shown where the first
// range of each hidden decoration starts. Only single-line decoration
// ranges are considered.
func Compose(ed *memhost.Editor, line int, marker string) []Span {
	text := ed.Buffer().LineText(line)
	n := len(text)
	hidden := make([]bool, n)
	lit := make([]bool, n)
	markers := make(map[int]bool)

	for _, d := range ed.Decorations() {
		for i, r := range d.Ranges {
			start, end, ok := columns(r, line, n)
			if !ok {
				continue
			}
			switch d.Kind {
			case memhost.DecorationHidden:
				for c := start; c < end; c++ {
					hidden[c] = true
				}
				if i == 0 && start < end {
					markers[start] = true
				}
			case memhost.DecorationHighlighted:
				for c := start; c < end; c++ {
					lit[c] = true
				}
			}
		}
	}

	var spans []Span
	emit := func(kind SpanKind, s string) {
		if last := len(spans) - 1; last >= 0 && spans[last].Kind == kind && kind != SpanMarker {
			spans[last].Text += s
			return
		}
		spans = append(spans, Span{Text: s, Kind: kind})
	}

	for c := 0; c < n; c++ {
		if hidden[c] {
			if markers[c] && marker != "" {
				emit(SpanMarker, marker)
			}
			continue
		}
		kind := SpanText
		if lit[c] {
			kind = SpanHighlight
		}
		emit(kind, text[c:c+1])
	}
	return spans
}

// columns clips r to line, returning its byte columns.
func columns(r textrange.Range, line, n int) (int, int, bool) {
	if r.Start.Line != line || r.End.Line != line {
		return 0, 0, false
	}
	start, end := r.Start.Column, r.End.Column
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	return start, end, start < end
}

// Plain joins the text of spans.
func Plain(spans []Span) string {
	var n int
	for _, s := range spans {
		n += len(s.Text)
	}
	b := make([]byte, 0, n)
	for _, s := range spans {
		b = append(b, s.Text...)
	}
	return string(b)
}

// Lines returns the indices of lines carrying decorations, sorted.
func Lines(ed *memhost.Editor) []int {
	seen := make(map[int]bool)
	for _, d := range ed.Decorations() {
		for _, r := range d.Ranges {
			for l := r.Start.Line; l <= r.End.Line; l++ {
				seen[l] = true
			}
		}
	}
	out := make([]int, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Ints(out)
	return out
}
