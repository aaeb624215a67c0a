package memhost

import (
	"os"
	"sort"

	"github.com/dshills/compactlog/internal/host"
	"github.com/dshills/compactlog/internal/textrange"
)

// DecorationKind distinguishes hidden from highlighted decorations.
type DecorationKind uint8

const (
	// DecorationHidden collapses text.
	DecorationHidden DecorationKind = iota

	// DecorationHighlighted emphasises text.
	DecorationHighlighted
)

// String returns the string representation of the kind.
func (k DecorationKind) String() string {
	switch k {
	case DecorationHidden:
		return "hidden"
	case DecorationHighlighted:
		return "highlighted"
	default:
		return "unknown"
	}
}

// Decoration is a rendered decoration.
type Decoration struct {
	Handle host.DecorationHandle
	Kind   DecorationKind
	Ranges []textrange.Range
}

// Editor is an in-memory host.Editor.
//
// Edits take effect immediately; the resulting document-changed event and
// the edit acknowledgement are queued on the owning Workspace and delivered
// by Drain. Decorations keep the ranges they were rendered with.
type Editor struct {
	ws  *Workspace
	buf *Buffer

	selections  []textrange.Selection
	decorations map[host.DecorationHandle]*Decoration
	nextHandle  host.DecorationHandle

	released int
	rejected int

	// saved is the text last read from or written to disk.
	saved string
	perm  os.FileMode

	// newline terminates lines when the text is written to disk.
	newline string
}

func newEditor(ws *Workspace, buf *Buffer) *Editor {
	return &Editor{
		ws:          ws,
		buf:         buf,
		selections:  []textrange.Selection{textrange.Cursor(textrange.Pos(0, 0))},
		decorations: make(map[host.DecorationHandle]*Decoration),
	}
}

// Document returns the editor's document.
func (e *Editor) Document() host.Document {
	return e.buf
}

// Buffer returns the editor's buffer.
func (e *Editor) Buffer() *Buffer {
	return e.buf
}

// Text returns the whole document text.
func (e *Editor) Text() string {
	return e.buf.String()
}

// ApplyEdit applies a batch of edits computed against the current text.
func (e *Editor) ApplyEdit(edits []textrange.Edit, done func(applied bool)) {
	changed, err := e.apply(edits)
	if err != nil {
		e.rejected++
		e.ws.enqueue(func() {
			if done != nil {
				done(false)
			}
		})
		return
	}

	e.ws.documentChanged(e, changed)
	e.ws.enqueue(func() {
		if done != nil {
			done(true)
		}
	})
}

// Edit applies a user edit batch; it is ApplyEdit without an
// acknowledgement.
func (e *Editor) Edit(edits ...textrange.Edit) error {
	changed, err := e.apply(edits)
	if err != nil {
		return err
	}
	e.ws.documentChanged(e, changed)
	return nil
}

func (e *Editor) apply(edits []textrange.Edit) ([]textrange.Range, error) {
	batch := make([]textrange.Edit, len(edits))
	copy(batch, edits)
	textrange.SortDescending(batch)

	if textrange.Overlapping(batch) {
		return nil, ErrEditsOverlap
	}
	for _, ed := range batch {
		if !e.buf.Valid(ed.Range.Start) || !e.buf.Valid(ed.Range.End) {
			return nil, ErrRangeInvalid
		}
	}

	changed := make([]textrange.Range, 0, len(batch))
	for _, ed := range batch {
		r, err := e.buf.Replace(ed.Range, ed.NewText)
		if err != nil {
			return nil, err
		}
		changed = append(changed, r)
	}
	e.clampSelections()
	return changed, nil
}

func (e *Editor) clampSelections() {
	for i, s := range e.selections {
		e.selections[i] = textrange.NewSelection(e.buf.clamp(s.Anchor), e.buf.clamp(s.Active))
	}
}

// Selections returns a copy of the current selections.
func (e *Editor) Selections() []textrange.Selection {
	out := make([]textrange.Selection, len(e.selections))
	copy(out, e.selections)
	return out
}

// SetSelections replaces the selections and queues a selection-changed event.
func (e *Editor) SetSelections(sels []textrange.Selection) {
	if len(sels) == 0 {
		return
	}
	e.selections = make([]textrange.Selection, len(sels))
	copy(e.selections, sels)
	e.clampSelections()
	e.ws.selectionChanged(e, e.Selections())
}

// Select is SetSelections with variadic arguments.
func (e *Editor) Select(sels ...textrange.Selection) {
	e.SetSelections(sels)
}

// RenderHidden records a hidden decoration.
func (e *Editor) RenderHidden(ranges []textrange.Range) host.DecorationHandle {
	return e.render(DecorationHidden, ranges)
}

// RenderHighlighted records a highlighted decoration.
func (e *Editor) RenderHighlighted(ranges []textrange.Range) host.DecorationHandle {
	return e.render(DecorationHighlighted, ranges)
}

func (e *Editor) render(kind DecorationKind, ranges []textrange.Range) host.DecorationHandle {
	e.nextHandle++
	d := &Decoration{
		Handle: e.nextHandle,
		Kind:   kind,
		Ranges: append([]textrange.Range(nil), ranges...),
	}
	e.decorations[d.Handle] = d
	return d.Handle
}

// ReleaseDecoration removes a decoration. Unknown handles are ignored.
func (e *Editor) ReleaseDecoration(h host.DecorationHandle) {
	if _, ok := e.decorations[h]; !ok {
		return
	}
	delete(e.decorations, h)
	e.released++
}

// Decoration returns a live decoration by handle.
func (e *Editor) Decoration(h host.DecorationHandle) (Decoration, bool) {
	d, ok := e.decorations[h]
	if !ok {
		return Decoration{}, false
	}
	return *d, true
}

// Decorations returns every live decoration ordered by handle.
func (e *Editor) Decorations() []Decoration {
	out := make([]Decoration, 0, len(e.decorations))
	for _, d := range e.decorations {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	return out
}

// DecorationsOnLine returns the decorations of a kind that touch a line.
func (e *Editor) DecorationsOnLine(kind DecorationKind, line int) []textrange.Range {
	var out []textrange.Range
	for _, d := range e.Decorations() {
		if d.Kind != kind {
			continue
		}
		for _, r := range d.Ranges {
			if r.Start.Line <= line && line <= r.End.Line {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// ReleasedCount returns how many decorations have been released.
func (e *Editor) ReleasedCount() int {
	return e.released
}

// RejectedCount returns how many edit batches were rejected.
func (e *Editor) RejectedCount() int {
	return e.rejected
}
