package textrange

import "fmt"

// Position is a line and column in a document.
// Column is measured in bytes from the start of the line.
type Position struct {
	Line   int
	Column int
}

// Pos creates a Position.
func Pos(line, column int) Position {
	return Position{Line: line, Column: column}
}

// String returns a human-readable representation of the position.
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Position) Compare(other Position) int {
	if p.Line < other.Line {
		return -1
	}
	if p.Line > other.Line {
		return 1
	}
	if p.Column < other.Column {
		return -1
	}
	if p.Column > other.Column {
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Position) After(other Position) bool {
	return p.Compare(other) > 0
}

// BeforeOrEqual returns true if p comes before or at other.
func (p Position) BeforeOrEqual(other Position) bool {
	return p.Compare(other) <= 0
}

// AfterOrEqual returns true if p comes after or at other.
func (p Position) AfterOrEqual(other Position) bool {
	return p.Compare(other) >= 0
}

// Translate returns the position shifted by the given line and column deltas.
func (p Position) Translate(lines, columns int) Position {
	return Position{Line: p.Line + lines, Column: p.Column + columns}
}

// MinPos returns the earlier of two positions.
func MinPos(a, b Position) Position {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxPos returns the later of two positions.
func MaxPos(a, b Position) Position {
	if a.After(b) {
		return a
	}
	return b
}
