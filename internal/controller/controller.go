// Package controller keeps embedded log annotations consistent with the
// document they live in.
//
// The controller listens to document, selection, and active-editor events.
// After every document change it re-parses the document, patches drifted
// metadata (line label and JSON copy of the expression), removes fragments
// whose expression has been deleted down to nothing, and keeps the
// decoration registry in step with what the text actually contains. It never
// relies on being told that an annotation was deleted; absence from a fresh
// parse is enough.
//
// Edits are two-phase. A pass submits one edit batch and marks the affected
// ids pending; work that depends on post-edit ranges runs only in the
// batch's acknowledgement, after re-checking that each id still exists.
package controller

import (
	"github.com/google/uuid"

	"github.com/dshills/compactlog/internal/decoration"
	"github.com/dshills/compactlog/internal/host"
	"github.com/dshills/compactlog/internal/logging"
)

// DefaultMinPayloadLength is the shortest padded expression segment an
// annotation keeps. Anything shorter means the user has deleted the
// expression and the fragment is removed.
const DefaultMinPayloadLength = 2

// Controller synchronizes annotations for the active editor of a workspace.
// Controller is not safe for concurrent use; the host delivers events one at
// a time.
type Controller struct {
	ws       host.Workspace
	notifier host.Notifier
	log      *logging.Logger

	editor   host.Editor
	registry *decoration.Registry

	// pending holds ids with an unacknowledged edit in flight.
	pending map[string]bool

	// epoch changes with the active editor so acknowledgements for a
	// previous editor are ignored.
	epoch uint64

	newID      func() string
	minPayload int

	unsubscribe func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Controller) {
		c.log = l
	}
}

// WithNotifier sets where user-facing errors are shown.
func WithNotifier(n host.Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithIDGenerator replaces the UUID generator used for new annotations.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// WithMinPayloadLength sets the degenerate threshold for the padded
// expression segment.
func WithMinPayloadLength(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.minPayload = n
		}
	}
}

// New creates a controller, subscribes it to ws, and projects the
// annotations of the active editor.
func New(ws host.Workspace, opts ...Option) *Controller {
	c := &Controller{
		ws:         ws,
		log:        logging.Nop(),
		pending:    make(map[string]bool),
		newID:      uuid.NewString,
		minPayload: DefaultMinPayloadLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("controller")

	c.attach(ws.ActiveEditor())
	c.unsubscribe = ws.Subscribe(c)
	return c
}

// Close unsubscribes from the workspace and releases all decorations.
func (c *Controller) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.detach()
}

// Registry returns the decoration registry of the active editor, or nil.
func (c *Controller) Registry() *decoration.Registry {
	return c.registry
}

// Pending returns the number of ids with an edit in flight.
func (c *Controller) Pending() int {
	return len(c.pending)
}

// attach binds the controller to ed and draws its annotations.
func (c *Controller) attach(ed host.Editor) {
	c.epoch++
	c.editor = ed
	c.pending = make(map[string]bool)
	if ed == nil {
		c.registry = nil
		return
	}
	c.registry = decoration.NewRegistry(ed, c.log)
	n := c.registry.ProjectFile(ed.Document())
	c.log.Debug("attached to %q with %d annotations", ed.Document().Path(), n)
}

// detach drops all bookkeeping for the current editor.
func (c *Controller) detach() {
	if c.registry != nil {
		c.registry.ClearAll()
	}
	c.editor = nil
	c.registry = nil
	c.pending = make(map[string]bool)
	c.epoch++
}

// ActiveEditorChanged implements host.Listener.
func (c *Controller) ActiveEditorChanged() {
	c.detach()
	c.attach(c.ws.ActiveEditor())
}

func (c *Controller) notify(err error) {
	if c.notifier != nil {
		c.notifier.ShowError(err.Error())
	}
}
