// Package textrange provides line/column geometry and the range arithmetic
// used to locate sub-ranges of delimited text fragments.
//
// # Coordinates
//
// Lines are 0-indexed. Columns are 0-indexed byte offsets within a line.
// A Range is half-open: [Start, End).
//
// # Segment Arithmetic
//
// Fragments are located by splitting a line on a literal delimiter. Given the
// resulting segments, SegmentSpan recovers the column span of any one segment
// by summing the lengths of the segments and delimiters before it:
//
//	parts := strings.Split("a::bb::c", "::")
//	start, end := textrange.SegmentSpan(parts, 1, 2, 0, false) // 3, 5
//
// Complement splits an outer range around an inner one:
//
//	outer := textrange.LineRange(0, 0, 10)
//	inner := textrange.LineRange(0, 3, 6)
//	textrange.Complement(outer, inner) // [(0:0)-(0:3)) and [(0:6)-(0:10))
package textrange
