package textrange

// SegmentSpan returns the column span of segments[index] within the string
// the segments were split from.
//
// The start column is startAt plus the length of every earlier segment and
// one delimiter per gap. When includeDelims is true the span is widened by
// one delimiter length on each side. index must be a valid segment index.
func SegmentSpan(segments []string, index, delimLen, startAt int, includeDelims bool) (int, int) {
	start := startAt
	for i := 0; i < index; i++ {
		start += len(segments[i]) + delimLen
	}
	end := start + len(segments[index])

	if includeDelims {
		start -= delimLen
		end += delimLen
	}
	return start, end
}

// SegmentRange is SegmentSpan placed on a line.
func SegmentRange(segments []string, index, line, delimLen, startAt int, includeDelims bool) Range {
	start, end := SegmentSpan(segments, index, delimLen, startAt, includeDelims)
	return LineRange(line, start, end)
}

// Complement returns the parts of outer not covered by inner, in order.
// Only non-empty parts are returned, so the result holds 0, 1, or 2 ranges.
// inner must lie within outer.
func Complement(outer, inner Range) []Range {
	var parts []Range
	if outer.Start.Before(inner.Start) {
		parts = append(parts, Range{Start: outer.Start, End: inner.Start})
	}
	if outer.End.After(inner.End) {
		parts = append(parts, Range{Start: inner.End, End: outer.End})
	}
	return parts
}
