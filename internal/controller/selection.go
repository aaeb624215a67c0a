package controller

import (
	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/host"
	"github.com/dshills/compactlog/internal/textrange"
)

// SelectionChanged implements host.Listener. Selections that reach into an
// annotation's boilerplate are pulled back onto its expression text. The
// selections are written back only if at least one of them moved.
func (c *Controller) SelectionChanged(sels []textrange.Selection) {
	if c.editor == nil || len(sels) == 0 {
		return
	}

	doc := c.editor.Document()
	out := make([]textrange.Selection, 0, len(sels))
	clamped := false
	for _, s := range sels {
		ns, moved := clampSelection(doc, s)
		out = append(out, ns...)
		clamped = clamped || moved
	}

	if clamped {
		c.log.Debug("clamped selections into annotation payloads")
		c.editor.SetSelections(out)
	}
}

// clampSelection keeps s from covering annotation boilerplate. A selection
// spanning several annotations is split into one selection per annotation,
// each bounded by the fragments on either side of it.
func clampSelection(doc host.Document, s textrange.Selection) ([]textrange.Selection, bool) {
	r := s.Range()
	var hits []annotation.Annotation
	for _, a := range annotation.ParseRange(doc, r.Start.Line, r.End.Line) {
		if a.FullRange.Intersects(r) {
			hits = append(hits, a)
		}
	}
	if len(hits) == 0 {
		return []textrange.Selection{s}, false
	}

	out := make([]textrange.Selection, 0, len(hits))
	moved := len(hits) > 1
	for i, a := range hits {
		part := r
		if i > 0 {
			part.Start = textrange.MaxPos(part.Start, hits[i-1].FullRange.End)
		}
		if i < len(hits)-1 {
			part.End = textrange.MinPos(part.End, hits[i+1].FullRange.Start)
		}
		start, end := clampTo(a, part)
		if start != r.Start || end != r.End {
			moved = true
		}
		out = append(out, s.WithBounds(start, end))
	}
	if !moved {
		return []textrange.Selection{s}, false
	}
	return out, true
}

// clampTo pulls r off the boilerplate of a.
func clampTo(a annotation.Annotation, r textrange.Range) (textrange.Position, textrange.Position) {
	p := a.PayloadRange
	start, end := r.Start, r.End

	switch {
	case end.BeforeOrEqual(p.Start) && start.Before(a.FullRange.Start):
		// From code before the fragment into its prefix.
		end = a.FullRange.Start
	case end.BeforeOrEqual(p.Start) && start.Before(p.Start):
		// Entirely in the prefix boilerplate.
		start, end = p.Start, p.Start
	case start.AfterOrEqual(p.End) && end.After(a.FullRange.End):
		// From the suffix into code after the fragment.
		start = a.FullRange.End
	case start.AfterOrEqual(p.End) && end.After(p.End):
		// Entirely in the suffix boilerplate.
		start, end = p.End, p.End
	default:
		start = textrange.MaxPos(start, p.Start)
		end = textrange.MinPos(end, p.End)
	}
	return start, end
}
