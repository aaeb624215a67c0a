package textrange

import (
	"fmt"
	"sort"
)

// Edit replaces the text in Range with NewText.
type Edit struct {
	Range   Range
	NewText string
}

// Replace creates an Edit that replaces a range.
func Replace(r Range, text string) Edit {
	return Edit{Range: r, NewText: text}
}

// Insert creates an Edit that inserts text at a position.
func Insert(p Position, text string) Edit {
	return Edit{Range: Range{Start: p, End: p}, NewText: text}
}

// Delete creates an Edit that removes a range.
func Delete(r Range) Edit {
	return Edit{Range: r}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%s, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range)
	}
	return fmt.Sprintf("Replace%s with %q", e.Range, e.NewText)
}

// SortDescending orders edits so the last range in the document comes first.
// Applying edits in this order keeps the positions of the remaining edits
// valid, since each one only shifts text after it.
func SortDescending(edits []Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[j].Range.Start.Before(edits[i].Range.Start)
	})
}

// Overlapping reports whether any two edits in a descending-sorted batch
// overlap.
func Overlapping(edits []Edit) bool {
	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End.After(edits[i-1].Range.Start) {
			return true
		}
	}
	return false
}
