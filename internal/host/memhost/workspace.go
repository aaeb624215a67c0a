package memhost

import (
	"github.com/dshills/compactlog/internal/host"
	"github.com/dshills/compactlog/internal/textrange"
)

// maxDrain bounds a single Drain call.
const maxDrain = 10_000

// Workspace is an in-memory host.Workspace and host.Notifier.
//
// Events are queued and delivered one at a time by Drain, which models the
// single-threaded event loop of a real editor. Events raised by non-active
// editors are dropped.
type Workspace struct {
	editors   []*Editor
	active    *Editor
	listeners map[int]host.Listener
	nextID    int
	queue     []func()
	errors    []string
}

// NewWorkspace creates an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{listeners: make(map[int]host.Listener)}
}

// Open creates an editor for text. The first editor opened becomes active
// without an event.
func (w *Workspace) Open(path, text string) *Editor {
	ed := newEditor(w, NewBuffer(path, text))
	w.editors = append(w.editors, ed)
	if w.active == nil {
		w.active = ed
	}
	return ed
}

// Activate makes ed the active editor and queues an active-editor-changed
// event.
func (w *Workspace) Activate(ed *Editor) {
	if w.active == ed {
		return
	}
	w.active = ed
	w.enqueue(func() {
		for _, l := range w.snapshotListeners() {
			l.ActiveEditorChanged()
		}
	})
}

// ActiveEditor returns the active editor.
func (w *Workspace) ActiveEditor() host.Editor {
	if w.active == nil {
		return nil
	}
	return w.active
}

// Active returns the active editor as its concrete type.
func (w *Workspace) Active() *Editor {
	return w.active
}

// Subscribe registers a listener.
func (w *Workspace) Subscribe(l host.Listener) func() {
	id := w.nextID
	w.nextID++
	w.listeners[id] = l
	return func() { delete(w.listeners, id) }
}

func (w *Workspace) snapshotListeners() []host.Listener {
	out := make([]host.Listener, 0, len(w.listeners))
	for i := 0; i < w.nextID; i++ {
		if l, ok := w.listeners[i]; ok {
			out = append(out, l)
		}
	}
	return out
}

func (w *Workspace) enqueue(fn func()) {
	w.queue = append(w.queue, fn)
}

func (w *Workspace) documentChanged(ed *Editor, changed []textrange.Range) {
	w.enqueue(func() {
		if ed != w.active {
			return
		}
		for _, l := range w.snapshotListeners() {
			l.DocumentChanged(changed)
		}
	})
}

func (w *Workspace) selectionChanged(ed *Editor, sels []textrange.Selection) {
	w.enqueue(func() {
		if ed != w.active {
			return
		}
		for _, l := range w.snapshotListeners() {
			l.SelectionChanged(sels)
		}
	})
}

// Pending returns the number of queued events.
func (w *Workspace) Pending() int {
	return len(w.queue)
}

// Step delivers one queued event. It returns false if the queue was empty.
func (w *Workspace) Step() bool {
	if len(w.queue) == 0 {
		return false
	}
	fn := w.queue[0]
	w.queue = w.queue[1:]
	fn()
	return true
}

// Drain delivers queued events, including any raised while delivering,
// until the queue is empty.
func (w *Workspace) Drain() (int, error) {
	n := 0
	for w.Step() {
		n++
		if n >= maxDrain {
			return n, ErrEventLoop
		}
	}
	return n, nil
}

// ShowError records a user-facing error message.
func (w *Workspace) ShowError(msg string) {
	w.errors = append(w.errors, msg)
}

// Errors returns the recorded error messages.
func (w *Workspace) Errors() []string {
	return append([]string(nil), w.errors...)
}
