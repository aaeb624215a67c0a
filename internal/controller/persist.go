package controller

import (
	"sort"

	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/store"
	"github.com/dshills/compactlog/internal/textrange"
)

// Entries describes every annotation in the active document as it would
// sit once stripped: the bare expression text and its columns after all
// fragments to its left on the same line are removed.
func (c *Controller) Entries() []store.Entry {
	if c.editor == nil {
		return nil
	}
	return strippedEntries(annotation.ParseDocument(c.editor.Document()))
}

func strippedEntries(anns []annotation.Annotation) []store.Entry {
	entries := make([]store.Entry, 0, len(anns))
	shift := 0
	line := -1
	for _, a := range anns {
		if a.Line != line {
			line, shift = a.Line, 0
		}
		start := a.FullRange.Start.Column - shift
		entries = append(entries, store.Entry{
			PayloadText: a.PayloadText,
			Line:        a.Line,
			StartColumn: start,
			EndColumn:   start + len(a.PayloadText),
		})
		shift += a.FullRange.Len() - len(a.PayloadText)
	}
	return entries
}

// ClearAll replaces every annotation in the active document with its bare
// expression text. It returns the entries that Restore needs to put them
// back.
func (c *Controller) ClearAll() []store.Entry {
	if c.editor == nil {
		return nil
	}
	anns := annotation.ParseDocument(c.editor.Document())
	if len(anns) == 0 {
		return nil
	}

	var b batch
	for _, a := range anns {
		c.registry.Clear(a.ID)
		b.add(a.ID, textrange.Replace(a.FullRange, a.PayloadText))
	}
	c.submit(b)
	c.log.Info("cleared %d logs", len(anns))
	return strippedEntries(anns)
}

// Restore re-creates annotations from saved entries. Entries whose text no
// longer matches the document are skipped. It returns the number of
// annotations restored.
func (c *Controller) Restore(entries []store.Entry) int {
	if c.editor == nil || len(entries) == 0 {
		return 0
	}
	doc := c.editor.Document()

	ordered := make([]store.Entry, len(entries))
	copy(ordered, entries)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Line != ordered[j].Line {
			return ordered[i].Line < ordered[j].Line
		}
		return ordered[i].StartColumn < ordered[j].StartColumn
	})

	var b batch
	last := textrange.Pos(-1, 0)
	for _, e := range ordered {
		r := textrange.LineRange(e.Line, e.StartColumn, e.EndColumn)
		if e.Line < 0 || e.Line >= doc.LineCount() || e.EndColumn > len(doc.LineText(e.Line)) {
			c.log.Warn("skipping saved log %q: line %d is out of range", e.PayloadText, e.Line+1)
			continue
		}
		if r.Start.Before(last) {
			c.log.Warn("skipping saved log %q: overlaps a previous entry", e.PayloadText)
			continue
		}
		if doc.Text(r) != e.PayloadText || annotation.Validate(e.PayloadText) != nil {
			c.log.Warn("skipping saved log %q: text changed on line %d", e.PayloadText, e.Line+1)
			continue
		}
		if insideFragment(doc.LineText(e.Line), e) {
			continue
		}

		id := c.newID()
		b.add(id, textrange.Replace(r, annotation.Render(e.PayloadText, e.Line, id)))
		last = r.End
	}

	if len(b.edits) > 0 {
		c.submit(b)
	}
	c.log.Info("restored %d of %d logs", len(b.ids), len(entries))
	return len(b.ids)
}

// insideFragment reports whether the entry's columns fall within an
// existing fragment on its line, i.e. the log is already present.
func insideFragment(lineText string, e store.Entry) bool {
	r := textrange.LineRange(e.Line, e.StartColumn, e.EndColumn)
	for _, a := range annotation.ParseLine(e.Line, lineText) {
		if a.FullRange.Overlaps(r) {
			return true
		}
	}
	return false
}
