package textrange

import "fmt"

// Range is a span of text between two positions.
// Start is inclusive, End is exclusive: [Start, End).
type Range struct {
	Start Position
	End   Position
}

// NewRange creates a Range, swapping the positions if they are reversed.
func NewRange(start, end Position) Range {
	if end.Before(start) {
		start, end = end, start
	}
	return Range{Start: start, End: end}
}

// LineRange creates a Range on a single line.
func LineRange(line, startCol, endCol int) Range {
	return NewRange(Pos(line, startCol), Pos(line, endCol))
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// SingleLine returns true if the range starts and ends on the same line.
func (r Range) SingleLine() bool {
	return r.Start.Line == r.End.Line
}

// Len returns the column length of a single-line range.
// Multi-line ranges return -1.
func (r Range) Len() int {
	if !r.SingleLine() {
		return -1
	}
	return r.End.Column - r.Start.Column
}

// Contains returns true if the position is within the range.
func (r Range) Contains(p Position) bool {
	return p.AfterOrEqual(r.Start) && p.Before(r.End)
}

// ContainsRange returns true if other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start.AfterOrEqual(r.Start) && other.End.BeforeOrEqual(r.End)
}

// Overlaps returns true if the two ranges share at least one position.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Intersects reports whether other touches the interior of r.
// Empty ranges intersect only when they lie strictly inside r, so a cursor
// sitting on either boundary of r does not count.
func (r Range) Intersects(other Range) bool {
	if other.IsEmpty() {
		return other.Start.After(r.Start) && other.Start.Before(r.End)
	}
	if r.IsEmpty() {
		return r.Start.After(other.Start) && r.Start.Before(other.End)
	}
	return r.Overlaps(other)
}

// Shift returns the range moved by the given column delta on its own line(s).
func (r Range) Shift(columns int) Range {
	return Range{Start: r.Start.Translate(0, columns), End: r.End.Translate(0, columns)}
}
