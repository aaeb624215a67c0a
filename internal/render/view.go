package render

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/compactlog/internal/host/memhost"
)

// View draws an editor onto a tcell screen.
type View struct {
	screen tcell.Screen
	marker string
	top    int

	textStyle   tcell.Style
	litStyle    tcell.Style
	markerStyle tcell.Style
	gutterStyle tcell.Style
}

// Option configures a View.
type Option func(*View)

// WithHighlight sets the colors of highlighted text.
func WithHighlight(fg, bg tcell.Color) Option {
	return func(v *View) {
		v.litStyle = tcell.StyleDefault.Foreground(fg).Background(bg)
	}
}

// WithMarker sets the text shown in place of hidden text.
func WithMarker(marker string) Option {
	return func(v *View) {
		v.marker = marker
	}
}

// NewView creates a view on an initialized screen.
func NewView(screen tcell.Screen, opts ...Option) *View {
	v := &View{
		screen:      screen,
		marker:      "▸",
		textStyle:   tcell.StyleDefault,
		litStyle:    tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow),
		markerStyle: tcell.StyleDefault.Foreground(tcell.ColorDarkCyan),
		gutterStyle: tcell.StyleDefault.Foreground(tcell.ColorGray),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Top returns the first visible line.
func (v *View) Top() int {
	return v.top
}

// Scroll moves the first visible line by delta, keeping it inside the
// document.
func (v *View) Scroll(ed *memhost.Editor, delta int) {
	v.top += delta
	if last := ed.Buffer().LineCount() - 1; v.top > last {
		v.top = last
	}
	if v.top < 0 {
		v.top = 0
	}
}

// NextLog scrolls to the next line carrying a log after the first visible
// line, or the previous one when back is set. It reports whether it moved.
func (v *View) NextLog(ed *memhost.Editor, back bool) bool {
	lines := Lines(ed)
	if back {
		for i := len(lines) - 1; i >= 0; i-- {
			if lines[i] < v.top {
				v.top = lines[i]
				return true
			}
		}
		return false
	}
	for _, l := range lines {
		if l > v.top {
			v.top = l
			return true
		}
	}
	return false
}

// Draw paints the visible lines and shows the screen.
func (v *View) Draw(ed *memhost.Editor) {
	v.screen.Clear()
	width, height := v.screen.Size()
	count := ed.Buffer().LineCount()
	gutter := len(strconv.Itoa(count)) + 1

	for y := 0; y < height && v.top+y < count; y++ {
		line := v.top + y
		num := strconv.Itoa(line + 1)
		v.put(gutter-1-len(num), y, width, num, v.gutterStyle)

		x := gutter
		for _, s := range Compose(ed, line, v.marker) {
			x = v.put(x, y, width, s.Text, v.style(s.Kind))
		}
	}
	v.screen.HideCursor()
	v.screen.Show()
}

func (v *View) style(kind SpanKind) tcell.Style {
	switch kind {
	case SpanHighlight:
		return v.litStyle
	case SpanMarker:
		return v.markerStyle
	default:
		return v.textStyle
	}
}

// put draws s from column x, one grapheme cluster per cell group, and
// returns the column after it. Text past width is clipped.
func (v *View) put(x, y, width int, s string, style tcell.Style) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if x+w > width {
			return width
		}
		v.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

// Run draws ed and handles keys until the user quits with q, Escape, or
// Ctrl-C. Arrow keys and page keys scroll; n and N jump between logs.
func (v *View) Run(ed *memhost.Editor) {
	v.Draw(ed)
	for {
		ev := v.screen.PollEvent()
		if ev == nil {
			return
		}
		_, height := v.screen.Size()

		switch ev := ev.(type) {
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			switch ev.Key() {
			case tcell.KeyEscape, tcell.KeyCtrlC:
				return
			case tcell.KeyUp:
				v.Scroll(ed, -1)
			case tcell.KeyDown:
				v.Scroll(ed, 1)
			case tcell.KeyPgUp:
				v.Scroll(ed, -height)
			case tcell.KeyPgDn:
				v.Scroll(ed, height)
			case tcell.KeyRune:
				switch ev.Rune() {
				case 'q':
					return
				case 'k':
					v.Scroll(ed, -1)
				case 'j':
					v.Scroll(ed, 1)
				case 'n':
					v.NextLog(ed, false)
				case 'N':
					v.NextLog(ed, true)
				}
			}
		}
		v.Draw(ed)
	}
}
