package decoration

import (
	"sort"

	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/host"
	"github.com/dshills/compactlog/internal/logging"
	"github.com/dshills/compactlog/internal/textrange"
)

// Surface is the part of an editor that draws decorations.
type Surface interface {
	RenderHidden(ranges []textrange.Range) host.DecorationHandle
	RenderHighlighted(ranges []textrange.Range) host.DecorationHandle
	ReleaseDecoration(h host.DecorationHandle)
}

// Entry is the registry record for one annotation.
type Entry struct {
	Hidden     host.DecorationHandle
	Highlight  host.DecorationHandle
	Projection Projection
}

// Registry maps annotation ids to their decorations on one surface.
// It is the only code that renders or releases annotation decorations.
// Registry is not safe for concurrent use.
type Registry struct {
	surface Surface
	entries map[string]*Entry
	log     *logging.Logger
}

// NewRegistry creates an empty registry drawing on surface.
func NewRegistry(surface Surface, log *logging.Logger) *Registry {
	if log == nil {
		log = logging.Nop()
	}
	return &Registry{
		surface: surface,
		entries: make(map[string]*Entry),
		log:     log.WithComponent("decoration"),
	}
}

// Apply draws the annotation, releasing any decorations previously drawn
// for its id.
func (r *Registry) Apply(a annotation.Annotation) Projection {
	r.Clear(a.ID)

	p := Project(a)
	e := &Entry{Projection: p}
	if len(p.Hide) > 0 {
		e.Hidden = r.surface.RenderHidden(p.Hide)
	}
	e.Highlight = r.surface.RenderHighlighted([]textrange.Range{p.Highlight})
	r.entries[a.ID] = e

	r.log.Debug("projected %s on line %d", a.ID, a.Line+1)
	return p
}

// Clear releases the decorations of id. It returns false if id was not
// registered.
func (r *Registry) Clear(id string) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	if e.Hidden != 0 {
		r.surface.ReleaseDecoration(e.Hidden)
	}
	if e.Highlight != 0 {
		r.surface.ReleaseDecoration(e.Highlight)
	}
	delete(r.entries, id)
	return true
}

// ClearAll releases every decoration in the registry.
func (r *Registry) ClearAll() {
	for _, id := range r.IDs() {
		r.Clear(id)
	}
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// IDs returns the registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of registered annotations.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Moved reports whether a registered annotation's geometry differs from
// what was drawn. Unregistered annotations report false.
func (r *Registry) Moved(a annotation.Annotation) bool {
	e, ok := r.entries[a.ID]
	if !ok {
		return false
	}
	return !e.Projection.Equal(Project(a))
}

// ProjectFile draws every annotation found in src and returns how many
// were drawn. It does not release anything first.
func (r *Registry) ProjectFile(src annotation.LineSource) int {
	anns := annotation.ParseDocument(src)
	for _, a := range anns {
		r.Apply(a)
	}
	return len(anns)
}
