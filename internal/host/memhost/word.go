package memhost

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/compactlog/internal/textrange"
)

// WordRangeAt returns the word containing p, or the word ending exactly at
// p when p sits just after one. Word boundaries follow Unicode text
// segmentation; only segments made of letters, digits, and underscores
// count as words.
func (b *Buffer) WordRangeAt(p textrange.Position) (textrange.Range, bool) {
	if !b.Valid(p) {
		return textrange.Range{}, false
	}

	text := b.lines[p.Line]
	var (
		touching textrange.Range
		found    bool
	)

	state := -1
	offset := 0
	for len(text) > 0 {
		var word string
		word, text, state = uniseg.FirstWordInString(text, state)
		start, end := offset, offset+len(word)
		offset = end

		if !isWord(word) {
			continue
		}
		if start <= p.Column && p.Column < end {
			return textrange.LineRange(p.Line, start, end), true
		}
		if end == p.Column {
			touching = textrange.LineRange(p.Line, start, end)
			found = true
		}
		if start > p.Column {
			break
		}
	}
	return touching, found
}

func isWord(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
