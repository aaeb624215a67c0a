package memhost

import (
	"strings"

	"github.com/dshills/compactlog/internal/textrange"
)

// Buffer is a line-indexed text buffer.
// Lines are stored without terminators; the buffer always has at least one
// line.
type Buffer struct {
	path  string
	lines []string
}

// NewBuffer creates a buffer from text. Both "\n" and "\r\n" end a line.
func NewBuffer(path, text string) *Buffer {
	return &Buffer{path: path, lines: splitLines(text)}
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// Path returns the buffer's file path.
func (b *Buffer) Path() string {
	return b.path
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// LineText returns the text of a line, or "" if the line does not exist.
func (b *Buffer) LineText(line int) string {
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// String returns the whole buffer joined with "\n".
func (b *Buffer) String() string {
	return strings.Join(b.lines, "\n")
}

// Text returns the text covered by r. Positions are clamped to the buffer.
func (b *Buffer) Text(r textrange.Range) string {
	start, end := b.clamp(r.Start), b.clamp(r.End)
	if start.Line == end.Line {
		return b.lines[start.Line][start.Column:end.Column]
	}
	var sb strings.Builder
	sb.WriteString(b.lines[start.Line][start.Column:])
	for l := start.Line + 1; l < end.Line; l++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[l])
	}
	sb.WriteByte('\n')
	sb.WriteString(b.lines[end.Line][:end.Column])
	return sb.String()
}

// Valid reports whether p addresses an existing line and column.
func (b *Buffer) Valid(p textrange.Position) bool {
	return p.Line >= 0 && p.Line < len(b.lines) &&
		p.Column >= 0 && p.Column <= len(b.lines[p.Line])
}

func (b *Buffer) clamp(p textrange.Position) textrange.Position {
	if p.Line < 0 {
		return textrange.Pos(0, 0)
	}
	if p.Line >= len(b.lines) {
		last := len(b.lines) - 1
		return textrange.Pos(last, len(b.lines[last]))
	}
	if p.Column < 0 {
		p.Column = 0
	}
	if n := len(b.lines[p.Line]); p.Column > n {
		p.Column = n
	}
	return p
}

// End returns the position after the last character.
func (b *Buffer) End() textrange.Position {
	last := len(b.lines) - 1
	return textrange.Pos(last, len(b.lines[last]))
}

// Replace replaces the text in r and returns the range covered by the new
// text.
func (b *Buffer) Replace(r textrange.Range, text string) (textrange.Range, error) {
	if !b.Valid(r.Start) || !b.Valid(r.End) || r.End.Before(r.Start) {
		return textrange.Range{}, ErrRangeInvalid
	}

	before := b.lines[r.Start.Line][:r.Start.Column]
	after := b.lines[r.End.Line][r.End.Column:]
	inserted := splitLines(text)

	replacement := make([]string, len(inserted))
	copy(replacement, inserted)
	replacement[0] = before + replacement[0]
	last := len(replacement) - 1
	endCol := len(replacement[last])
	replacement[last] += after

	lines := make([]string, 0, len(b.lines)-(r.End.Line-r.Start.Line)+last)
	lines = append(lines, b.lines[:r.Start.Line]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[r.End.Line+1:]...)
	b.lines = lines

	return textrange.Range{
		Start: r.Start,
		End:   textrange.Pos(r.Start.Line+last, endCol),
	}, nil
}
