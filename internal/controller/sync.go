package controller

import (
	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/textrange"
)

// DocumentChanged implements host.Listener. The whole document is
// re-parsed; parsing is cheap and idempotent, so the changed ranges are only
// logged.
func (c *Controller) DocumentChanged(changed []textrange.Range) {
	if c.editor == nil {
		return
	}
	c.log.Debug("document changed in %d ranges", len(changed))
	c.syncPass()
}

// Sync runs one synchronization pass over the active document.
func (c *Controller) Sync() {
	if c.editor == nil {
		return
	}
	c.syncPass()
}

// batch collects the edits of one pass. Every range refers to the same
// snapshot of the document.
type batch struct {
	edits []textrange.Edit
	ids   []string
}

func (b *batch) add(id string, edits ...textrange.Edit) {
	b.edits = append(b.edits, edits...)
	b.ids = append(b.ids, id)
}

func (c *Controller) syncPass() {
	anns := annotation.ParseDocument(c.editor.Document())
	seen := make(map[string]bool, len(anns))
	var b batch

	for _, a := range anns {
		if seen[a.ID] {
			// A pasted copy of an existing fragment; give it its own id.
			id := c.newID()
			b.add(id, textrange.Replace(a.IDRange, id))
			c.log.Debug("re-keyed duplicate %s as %s", a.ID, id)
			continue
		}
		seen[a.ID] = true

		if c.pending[a.ID] {
			continue
		}

		if len(a.VarText) < c.minPayload {
			c.registry.Clear(a.ID)
			b.add(a.ID, textrange.Replace(a.FullRange, annotation.Bare(a.VarText)))
			c.log.Debug("removing degenerate annotation %s", a.ID)
			continue
		}

		if !c.registry.Has(a.ID) {
			c.registry.Apply(a)
		}

		edits, err := c.metadataPatches(a)
		if err != nil {
			c.log.Error("%v", &OperationError{Op: "patch", ID: a.ID, Err: err})
			continue
		}
		if len(edits) > 0 {
			b.add(a.ID, edits...)
			continue
		}

		if c.registry.Moved(a) {
			c.registry.Apply(a)
		}
	}

	// Anything registered but no longer in the text was deleted, whether by
	// the user, an undo, or a removal edit.
	for _, id := range c.registry.IDs() {
		if !seen[id] {
			c.registry.Clear(id)
			c.log.Debug("dropped deleted annotation %s", id)
		}
	}

	if len(b.edits) > 0 {
		c.submit(b)
	}
}

// metadataPatches returns the edits that bring the line label and the JSON
// copy of a registered annotation back in line with its text. The two
// patches are disjoint and both sit after the expression, so they can share
// a batch without moving the expression.
func (c *Controller) metadataPatches(a annotation.Annotation) ([]textrange.Edit, error) {
	if !c.registry.Has(a.ID) {
		return nil, ErrNotDecorated
	}

	var edits []textrange.Edit
	if a.StringifyDrift() {
		edits = append(edits, textrange.Replace(a.StringifyRange, annotation.Stringify(a.VarText)))
	}
	if a.LineDrift() {
		edits = append(edits, textrange.Replace(a.LineMetaRange, annotation.LineMeta(a.Line)))
	}
	return edits, nil
}

// submit applies a batch and finishes the affected annotations once the host
// acknowledges it.
func (c *Controller) submit(b batch) {
	ed := c.editor
	epoch := c.epoch
	for _, id := range b.ids {
		c.pending[id] = true
	}

	ed.ApplyEdit(b.edits, func(applied bool) {
		if epoch != c.epoch {
			return
		}
		for _, id := range b.ids {
			delete(c.pending, id)
		}
		if !applied {
			// The next document change retries from fresh text.
			c.log.Warn("edit batch of %d edits was rejected", len(b.edits))
			return
		}
		c.settle(b.ids)
	})
}

// settle finishes annotations after their edit landed. Ids that no longer
// exist are skipped: a newer pass has already dropped them.
func (c *Controller) settle(ids []string) {
	anns := annotation.ParseDocument(c.editor.Document())
	resync := false

	for _, id := range ids {
		a, ok := annotation.Find(anns, id)
		if !ok {
			c.log.Debug("acknowledgement for %s arrived after it was removed", id)
			continue
		}
		if c.pending[id] {
			continue
		}
		if a.StringifyDrift() || a.LineDrift() || len(a.VarText) < c.minPayload {
			resync = true
			continue
		}
		if !c.registry.Has(id) || c.registry.Moved(a) {
			c.registry.Apply(a)
		}
	}

	if resync {
		c.syncPass()
	}
}
