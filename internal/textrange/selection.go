package textrange

import "fmt"

// Selection represents a range of selected text.
// Anchor is where the selection started; Active is where the cursor is.
// When Anchor == Active the selection is a plain cursor.
// Selection is an immutable value type.
type Selection struct {
	Anchor Position
	Active Position
}

// NewSelection creates a selection from anchor to active.
func NewSelection(anchor, active Position) Selection {
	return Selection{Anchor: anchor, Active: active}
}

// Cursor creates a selection with no extent.
func Cursor(p Position) Selection {
	return Selection{Anchor: p, Active: p}
}

// String returns a human-readable representation of the selection.
func (s Selection) String() string {
	return fmt.Sprintf("%s->%s", s.Anchor, s.Active)
}

// IsEmpty returns true if the selection has no extent.
func (s Selection) IsEmpty() bool {
	return s.Anchor == s.Active
}

// IsReversed returns true if the cursor sits before the anchor.
func (s Selection) IsReversed() bool {
	return s.Active.Before(s.Anchor)
}

// Start returns the lower bound of the selection.
func (s Selection) Start() Position {
	return MinPos(s.Anchor, s.Active)
}

// End returns the upper bound of the selection.
func (s Selection) End() Position {
	return MaxPos(s.Anchor, s.Active)
}

// Range returns the selection as a range (always Start <= End).
func (s Selection) Range() Range {
	return Range{Start: s.Start(), End: s.End()}
}

// WithBounds returns a selection covering [start, end) that keeps the
// direction of s.
func (s Selection) WithBounds(start, end Position) Selection {
	if end.Before(start) {
		start, end = end, start
	}
	if s.IsReversed() {
		return Selection{Anchor: end, Active: start}
	}
	return Selection{Anchor: start, Active: end}
}
