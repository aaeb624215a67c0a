// Package host defines the narrow surface through which the annotation
// engine talks to a text editor.
//
// The editor owns document buffers, applies edits, holds cursor and
// selection state, and renders decorations. The engine only reads lines,
// submits edit batches, reads and writes selections, and asks for
// decorations to be drawn and released.
package host

import "github.com/dshills/compactlog/internal/textrange"

// Document is a read-only view of a text buffer.
type Document interface {
	// Path is the file path of the document, empty for scratch buffers.
	Path() string

	// LineCount returns the number of lines. An empty document has one
	// empty line.
	LineCount() int

	// LineText returns the text of a 0-based line without its terminator.
	LineText(line int) string

	// Text returns the text covered by a range.
	Text(r textrange.Range) string

	// WordRangeAt returns the range of the word at or just before p.
	WordRangeAt(p textrange.Position) (textrange.Range, bool)
}

// DecorationHandle identifies a rendered decoration. The zero handle is
// never returned by a renderer.
type DecorationHandle uint64

// Editor is an editable view of a document.
type Editor interface {
	// Document returns the document shown in the editor.
	Document() Document

	// ApplyEdit submits a batch of edits. Every range in the batch refers to
	// the document as it is at submission time. The batch is applied
	// atomically; done is called once the batch has been applied (true) or
	// rejected (false). done may be nil.
	ApplyEdit(edits []textrange.Edit, done func(applied bool))

	// Selections returns the current selections, primary first.
	Selections() []textrange.Selection

	// SetSelections replaces the current selections.
	SetSelections(sels []textrange.Selection)

	// RenderHidden draws ranges collapsed so they take no visual space.
	RenderHidden(ranges []textrange.Range) DecorationHandle

	// RenderHighlighted draws ranges emphasised.
	RenderHighlighted(ranges []textrange.Range) DecorationHandle

	// ReleaseDecoration removes a decoration. Releasing an unknown or
	// already released handle is a no-op.
	ReleaseDecoration(h DecorationHandle)
}

// Listener receives editor events. Events are delivered one at a time.
type Listener interface {
	// DocumentChanged is called after the active document changed.
	DocumentChanged(changed []textrange.Range)

	// SelectionChanged is called after the selections of the active editor
	// changed.
	SelectionChanged(sels []textrange.Selection)

	// ActiveEditorChanged is called after another editor became active.
	ActiveEditorChanged()
}

// Workspace tracks the active editor and delivers events.
type Workspace interface {
	// ActiveEditor returns the active editor, or nil if there is none.
	ActiveEditor() Editor

	// Subscribe registers a listener. The returned function unsubscribes.
	Subscribe(l Listener) (unsubscribe func())
}

// Notifier shows transient messages to the user.
type Notifier interface {
	ShowError(msg string)
}
