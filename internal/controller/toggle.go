package controller

import (
	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/textrange"
)

// Toggle adds a log annotation around the primary selection, or removes the
// annotation the selection touches. An empty selection expands to the word
// under the cursor.
//
// User input errors (ErrSelectWord, ErrSelectLine, and the annotation
// validation errors) are shown through the notifier and change nothing.
func (c *Controller) Toggle() error {
	err := c.toggle()
	if err == nil {
		return nil
	}
	if isUserError(err) {
		c.notify(err)
	} else {
		c.log.Error("%v", err)
	}
	return err
}

func (c *Controller) toggle() error {
	if c.editor == nil {
		return &OperationError{Op: "toggle", Err: ErrNoEditor}
	}
	sels := c.editor.Selections()
	if len(sels) == 0 {
		return ErrSelectWord
	}

	doc := c.editor.Document()
	r := sels[0].Range()
	if !r.SingleLine() {
		return ErrSelectLine
	}

	anns := annotation.ParseLine(r.Start.Line, doc.LineText(r.Start.Line))
	if a, ok := annotation.FindIntersecting(anns, r); ok {
		return c.remove(a)
	}

	if r.IsEmpty() {
		word, ok := doc.WordRangeAt(r.Start)
		if !ok {
			if a, ok := startingAt(anns, r.Start); ok {
				return c.remove(a)
			}
			return ErrSelectWord
		}
		r = word
		if a, ok := annotation.FindIntersecting(anns, r); ok {
			return c.remove(a)
		}
	}

	return c.create(r)
}

// startingAt finds the annotation whose fragment begins at p. A cursor
// there refers to the fragment only when no word ends at p.
func startingAt(anns []annotation.Annotation, p textrange.Position) (annotation.Annotation, bool) {
	for _, a := range anns {
		if a.FullRange.Start == p {
			return a, true
		}
	}
	return annotation.Annotation{}, false
}

// remove replaces an annotation with its bare expression text.
func (c *Controller) remove(a annotation.Annotation) error {
	if !c.registry.Has(a.ID) {
		return &OperationError{Op: "remove", ID: a.ID, Err: ErrNotDecorated}
	}
	c.registry.Clear(a.ID)

	c.submit(batch{
		edits: []textrange.Edit{textrange.Replace(a.FullRange, a.PayloadText)},
		ids:   []string{a.ID},
	})
	c.log.WithField("id", a.ID).Info("removed log on line %d", a.Line+1)
	return nil
}

// create wraps the text in r in a new annotation. Its ranges depend on the
// rendered length, so decorations are drawn only once the edit has landed
// and the line has been parsed again.
func (c *Controller) create(r textrange.Range) error {
	payload := c.editor.Document().Text(r)
	if err := annotation.Validate(payload); err != nil {
		return err
	}

	id := c.newID()
	fragment := annotation.Render(payload, r.Start.Line, id)

	c.submit(batch{
		edits: []textrange.Edit{textrange.Replace(r, fragment)},
		ids:   []string{id},
	})
	c.log.WithField("id", id).Info("added log for %q on line %d", payload, r.Start.Line+1)
	return nil
}
