package controller

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"kr.dev/diff"

	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/decoration"
	"github.com/dshills/compactlog/internal/host/memhost"
	"github.com/dshills/compactlog/internal/store"
	"github.com/dshills/compactlog/internal/textrange"
)

type fixture struct {
	t   *testing.T
	ws  *memhost.Workspace
	ed  *memhost.Editor
	ctl *Controller
}

func newFixture(t *testing.T, text string) *fixture {
	t.Helper()
	ws := memhost.NewWorkspace()
	ed := ws.Open("test.js", text)
	n := 0
	ctl := New(ws,
		WithNotifier(ws),
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}),
	)
	f := &fixture{t: t, ws: ws, ed: ed, ctl: ctl}
	f.drain()
	return f
}

func (f *fixture) drain() {
	f.t.Helper()
	if _, err := f.ws.Drain(); err != nil {
		f.t.Fatalf("Drain() error = %v", err)
	}
}

func (f *fixture) edit(edits ...textrange.Edit) {
	f.t.Helper()
	if err := f.ed.Edit(edits...); err != nil {
		f.t.Fatalf("Edit() error = %v", err)
	}
}

func (f *fixture) only(line int) annotation.Annotation {
	f.t.Helper()
	anns := annotation.ParseLine(line, f.ed.Buffer().LineText(line))
	if len(anns) != 1 {
		f.t.Fatalf("line %d has %d annotations, want 1: %q", line, len(anns), f.ed.Buffer().LineText(line))
	}
	return anns[0]
}

// toggleRange selects r, toggles, and drains the event queue.
func (f *fixture) toggleRange(r textrange.Range) {
	f.t.Helper()
	f.ed.Select(textrange.NewSelection(r.Start, r.End))
	f.drain()
	if err := f.ctl.Toggle(); err != nil {
		f.t.Fatalf("Toggle() error = %v", err)
	}
	f.drain()
}

func (f *fixture) checkConsistent() {
	f.t.Helper()
	anns := annotation.ParseDocument(f.ed.Document())
	reg := f.ctl.Registry()

	var ids []string
	for _, a := range anns {
		ids = append(ids, a.ID)
		e, ok := reg.Get(a.ID)
		if !ok {
			f.t.Errorf("annotation %s has no registry entry", a.ID)
			continue
		}
		if !e.Projection.Equal(decoration.Project(a)) {
			f.t.Errorf("annotation %s projection is stale", a.ID)
		}
	}
	if reg.Len() != len(anns) {
		f.t.Errorf("registry has %d entries, document has %d annotations (%v)", reg.Len(), len(anns), ids)
	}
	if got, want := len(f.ed.Decorations()), 2*len(anns); got != want {
		f.t.Errorf("editor has %d live decorations, want %d", got, want)
	}
	if f.ctl.Pending() != 0 {
		f.t.Errorf("Pending() = %d after drain", f.ctl.Pending())
	}
}

const sixLines = "// 0\n// 1\n// 2\n// 3\n// 4\n  return foo.bar;"

func TestToggleCreateAndRemove(t *testing.T) {
	f := newFixture(t, sixLines)
	sel := textrange.LineRange(5, 9, 16)

	f.toggleRange(sel)

	a := f.only(5)
	if a.PayloadText != "foo.bar" {
		t.Errorf("PayloadText = %q, want %q", a.PayloadText, "foo.bar")
	}
	if a.LineMetaText != `"6:"` {
		t.Errorf("LineMetaText = %s, want %q", a.LineMetaText, `"6:"`)
	}
	if a.StringifyText != `"foo.bar"` {
		t.Errorf("StringifyText = %s", a.StringifyText)
	}
	if a.ID != "id-1" {
		t.Errorf("ID = %q, want id-1", a.ID)
	}
	f.checkConsistent()

	f.toggleRange(sel)

	if got := f.ed.Text(); got != sixLines {
		t.Errorf("text after removal:\n%s\nwant:\n%s", got, sixLines)
	}
	if got := f.ed.Buffer().LineText(5); strings.Index(got, "foo.bar") != 9 {
		t.Errorf("payload moved: %q", got)
	}
	f.checkConsistent()
	if f.ctl.Registry().Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", f.ctl.Registry().Len())
	}
}

func TestToggleWordUnderCursor(t *testing.T) {
	f := newFixture(t, "call(value);")
	f.ed.Select(textrange.Cursor(textrange.Pos(0, 7)))
	f.drain()

	if err := f.ctl.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	f.drain()

	a := f.only(0)
	if a.PayloadText != "value" {
		t.Errorf("PayloadText = %q, want %q", a.PayloadText, "value")
	}
	if !strings.HasPrefix(f.ed.Text(), "call("+annotation.OuterDelim) {
		t.Errorf("fragment should replace the word: %q", f.ed.Text())
	}
	f.checkConsistent()

	// A cursor inside the payload toggles it off again.
	f.ed.Select(textrange.Cursor(a.PayloadRange.Start.Translate(0, 1)))
	f.drain()
	if err := f.ctl.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	f.drain()
	if got := f.ed.Text(); got != "call(value);" {
		t.Errorf("text = %q, want original", got)
	}
}

func TestToggleCursorBeforeFragment(t *testing.T) {
	t.Run("word ends at fragment", func(t *testing.T) {
		f := newFixture(t, "foo"+annotation.Render("bar", 0, "x")+";")
		f.ed.Select(textrange.Cursor(textrange.Pos(0, 3)))
		f.drain()
		if err := f.ctl.Toggle(); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		f.drain()

		anns := annotation.ParseLine(0, f.ed.Buffer().LineText(0))
		var payloads []string
		for _, a := range anns {
			payloads = append(payloads, a.PayloadText)
		}
		diff.Test(t, t.Errorf, payloads, []string{"foo", "bar"})
		f.checkConsistent()
	})

	t.Run("no word before fragment", func(t *testing.T) {
		f := newFixture(t, "a = "+annotation.Render("bar", 0, "x")+";")
		f.ed.Select(textrange.Cursor(textrange.Pos(0, 4)))
		f.drain()
		if err := f.ctl.Toggle(); err != nil {
			t.Fatalf("Toggle() error = %v", err)
		}
		f.drain()

		if got := f.ed.Text(); got != "a = bar;" {
			t.Errorf("text = %q, want %q", got, "a = bar;")
		}
	})
}

func TestToggleUserErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		sel  textrange.Selection
		want error
	}{
		{
			name: "no word",
			text: "a   b",
			sel:  textrange.Cursor(textrange.Pos(0, 3)),
			want: ErrSelectWord,
		},
		{
			name: "multi line",
			text: "one\ntwo",
			sel:  textrange.NewSelection(textrange.Pos(0, 1), textrange.Pos(1, 1)),
			want: ErrSelectLine,
		},
		{
			name: "reserved delimiter",
			text: "x " + annotation.VarDelim,
			sel:  textrange.NewSelection(textrange.Pos(0, 0), textrange.Pos(0, 2+len(annotation.VarDelim))),
			want: annotation.ErrContainsDelimiter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.text)
			f.ed.Select(tt.sel)
			f.drain()

			err := f.ctl.Toggle()
			if !errors.Is(err, tt.want) {
				t.Fatalf("Toggle() error = %v, want %v", err, tt.want)
			}
			f.drain()

			if got := f.ed.Text(); got != tt.text {
				t.Errorf("text changed to %q", got)
			}
			msgs := f.ws.Errors()
			if len(msgs) != 1 || msgs[0] != err.Error() {
				t.Errorf("notifications = %v, want [%q]", msgs, err.Error())
			}
		})
	}
}

func TestLineMetaConvergence(t *testing.T) {
	f := newFixture(t, sixLines)
	f.toggleRange(textrange.LineRange(5, 9, 16))
	before := f.only(5)

	f.edit(textrange.Insert(textrange.Pos(0, 0), "a\nb\nc\nd\ne\n"))
	f.drain()

	a := f.only(10)
	if a.LineMetaText != `"11:"` {
		t.Errorf("LineMetaText = %s, want %q", a.LineMetaText, `"11:"`)
	}
	if a.PayloadText != before.PayloadText {
		t.Errorf("PayloadText = %q, want %q", a.PayloadText, before.PayloadText)
	}
	if a.PayloadRange.Len() != before.PayloadRange.Len() || a.PayloadRange.Start.Column != before.PayloadRange.Start.Column {
		t.Errorf("PayloadRange = %s, was %s", a.PayloadRange, before.PayloadRange)
	}
	f.checkConsistent()
}

func TestStringifyConvergence(t *testing.T) {
	f := newFixture(t, sixLines)
	f.toggleRange(textrange.LineRange(5, 9, 16))
	a := f.only(5)

	f.edit(textrange.Insert(a.PayloadRange.End, "x"))
	edited := f.ed.Buffer().LineText(5)
	drifted := f.only(5)
	f.drain()

	got := f.only(5)
	if got.StringifyText != annotation.Stringify("foo.barx") {
		t.Errorf("StringifyText = %s, want %s", got.StringifyText, annotation.Stringify("foo.barx"))
	}

	line := f.ed.Buffer().LineText(5)
	s := drifted.StringifyRange
	if line[:s.Start.Column] != edited[:s.Start.Column] {
		t.Error("text before the stringify range changed")
	}
	if line[got.StringifyRange.End.Column:] != edited[s.End.Column:] {
		t.Error("text after the stringify range changed")
	}
	f.checkConsistent()
}

func TestDeletionConvergence(t *testing.T) {
	f := newFixture(t, sixLines)
	f.toggleRange(textrange.LineRange(5, 9, 16))
	a := f.only(5)

	f.edit(textrange.Replace(a.FullRange, "foo.bar"))
	f.drain()

	if f.ctl.Registry().Has(a.ID) {
		t.Error("registry still holds the deleted annotation")
	}
	if n := len(f.ed.Decorations()); n != 0 {
		t.Errorf("%d decorations left after deletion", n)
	}
	if n := f.ed.ReleasedCount(); n != 2 {
		t.Errorf("ReleasedCount() = %d, want 2", n)
	}
	if got := f.ed.Text(); got != sixLines {
		t.Errorf("text = %q", got)
	}
	f.checkConsistent()
}

func TestDegenerateShrink(t *testing.T) {
	f := newFixture(t, "log(ab);")
	f.toggleRange(textrange.LineRange(0, 4, 6))
	a := f.only(0)

	// The user deletes through the expression, leaving a single character
	// between the var delimiters.
	f.edit(textrange.Replace(a.VarRange, "a"))
	f.drain()

	if got := f.ed.Text(); got != "log(a);" {
		t.Errorf("text = %q, want %q", got, "log(a);")
	}
	if f.ctl.Registry().Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", f.ctl.Registry().Len())
	}
	f.checkConsistent()
}

func TestSelectionClamping(t *testing.T) {
	f := newFixture(t, sixLines)
	f.toggleRange(textrange.LineRange(5, 9, 16))
	p := f.only(5).PayloadRange
	full := f.only(5).FullRange

	tests := []struct {
		name string
		sel  textrange.Selection
		want textrange.Selection
	}{
		{
			name: "starts before payload",
			sel:  textrange.NewSelection(p.Start.Translate(0, -2), p.Start.Translate(0, 3)),
			want: textrange.NewSelection(p.Start, p.Start.Translate(0, 3)),
		},
		{
			name: "ends after payload",
			sel:  textrange.NewSelection(p.Start.Translate(0, 1), p.End.Translate(0, 4)),
			want: textrange.NewSelection(p.Start.Translate(0, 1), p.End),
		},
		{
			name: "covers payload",
			sel:  textrange.NewSelection(full.Start.Translate(0, 1), full.End.Translate(0, -1)),
			want: textrange.NewSelection(p.Start, p.End),
		},
		{
			name: "backward keeps direction",
			sel:  textrange.NewSelection(p.Start.Translate(0, 3), p.Start.Translate(0, -2)),
			want: textrange.NewSelection(p.Start.Translate(0, 3), p.Start),
		},
		{
			name: "cursor in prefix",
			sel:  textrange.Cursor(full.Start.Translate(0, 3)),
			want: textrange.Cursor(p.Start),
		},
		{
			name: "cursor in suffix",
			sel:  textrange.Cursor(full.End.Translate(0, -3)),
			want: textrange.Cursor(p.End),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := textrange.Cursor(textrange.Pos(1, 2))
			f.ed.Select(tt.sel, other)
			f.drain()

			got := f.ed.Selections()
			diff.Test(t, t.Errorf, got, []textrange.Selection{tt.want, other})
		})
	}
}

func TestSelectionAcrossTwoAnnotations(t *testing.T) {
	f := newFixture(t, "f(aa, bb);")
	f.toggleRange(textrange.LineRange(0, 2, 4))
	col := strings.Index(f.ed.Buffer().LineText(0), ", bb)") + 2
	f.toggleRange(textrange.LineRange(0, col, col+2))

	anns := annotation.ParseLine(0, f.ed.Buffer().LineText(0))
	if len(anns) != 2 {
		t.Fatalf("got %d annotations, want 2", len(anns))
	}
	p1, p2 := anns[0].PayloadRange, anns[1].PayloadRange

	f.ed.Select(textrange.NewSelection(p1.Start.Translate(0, 1), p2.Start.Translate(0, 1)))
	f.drain()

	diff.Test(t, t.Errorf, f.ed.Selections(), []textrange.Selection{
		textrange.NewSelection(p1.Start.Translate(0, 1), p1.End),
		textrange.NewSelection(p2.Start, p2.Start.Translate(0, 1)),
	})
}

func TestSelectionLeftAlone(t *testing.T) {
	f := newFixture(t, sixLines)
	f.toggleRange(textrange.LineRange(5, 9, 16))
	p := f.only(5).PayloadRange
	full := f.only(5).FullRange

	sels := [][]textrange.Selection{
		{textrange.Cursor(textrange.Pos(0, 1))},
		{textrange.NewSelection(p.Start, p.End)},
		{textrange.Cursor(full.Start)},
		{textrange.Cursor(full.End)},
	}
	for _, s := range sels {
		f.ed.Select(s...)
		if n, _ := f.ws.Drain(); n != 1 {
			t.Errorf("Select(%v) delivered %d events, want only the selection change", s, n)
		}
		diff.Test(t, t.Errorf, f.ed.Selections(), s)
	}
}

func TestEditElsewhereKeepsDecorations(t *testing.T) {
	f := newFixture(t, sixLines)
	f.toggleRange(textrange.LineRange(5, 9, 16))
	before, _ := f.ctl.Registry().Get("id-1")

	f.edit(textrange.Insert(textrange.Pos(2, 0), "more "))
	f.drain()

	after, _ := f.ctl.Registry().Get("id-1")
	if before.Hidden != after.Hidden || before.Highlight != after.Highlight {
		t.Error("unrelated edit re-rendered the annotation")
	}
}

func TestStaleAcknowledgement(t *testing.T) {
	f := newFixture(t, "go(value);")
	f.ed.Select(textrange.NewSelection(textrange.Pos(0, 3), textrange.Pos(0, 8)))
	f.drain()

	if err := f.ctl.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	// The user undoes the insertion before the acknowledgement is delivered.
	a := f.only(0)
	f.edit(textrange.Replace(a.FullRange, "value"))
	f.drain()

	if f.ctl.Registry().Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", f.ctl.Registry().Len())
	}
	if n := len(f.ed.Decorations()); n != 0 {
		t.Errorf("%d decorations drawn for a removed annotation", n)
	}
	f.checkConsistent()
}

func TestDuplicateIsRekeyed(t *testing.T) {
	f := newFixture(t, "use(item);")
	f.toggleRange(textrange.LineRange(0, 4, 8))
	line := f.ed.Buffer().LineText(0)

	f.edit(textrange.Insert(textrange.Pos(0, len(line)), "\n"+line))
	f.drain()

	first, second := f.only(0), f.only(1)
	if first.ID != "id-1" {
		t.Errorf("original id = %q, want id-1", first.ID)
	}
	if second.ID == first.ID {
		t.Fatal("pasted copy kept the original id")
	}
	if second.LineMetaText != `"2:"` {
		t.Errorf("copy LineMetaText = %s, want %q", second.LineMetaText, `"2:"`)
	}
	f.checkConsistent()
}

func TestSyncFixesStaleFile(t *testing.T) {
	text := "\n\n" + annotation.Render("stale", 0, "old") + ";"
	f := newFixture(t, text)

	if f.only(2).LineMetaText != `"1:"` {
		t.Fatal("fixture should start with a stale label")
	}
	if !f.ctl.Registry().Has("old") {
		t.Fatal("attach should project existing annotations")
	}

	f.ctl.Sync()
	f.drain()

	if got := f.only(2).LineMetaText; got != `"3:"` {
		t.Errorf("LineMetaText = %s, want %q", got, `"3:"`)
	}
	f.checkConsistent()
}

func TestActiveEditorChanged(t *testing.T) {
	f := newFixture(t, "first(a);")
	f.toggleRange(textrange.LineRange(0, 6, 7))
	if n := len(f.ed.Decorations()); n != 2 {
		t.Fatalf("first editor has %d decorations, want 2", n)
	}

	second := f.ws.Open("other.js", annotation.Render("b", 0, "other")+"\n"+annotation.Render("c", 1, "third"))
	f.ws.Activate(second)
	f.drain()

	if n := len(f.ed.Decorations()); n != 0 {
		t.Errorf("previous editor kept %d decorations", n)
	}
	if got := f.ctl.Registry().IDs(); len(got) != 2 || got[0] != "other" || got[1] != "third" {
		t.Errorf("registry IDs = %v", got)
	}
	if n := len(second.Decorations()); n != 4 {
		t.Errorf("second editor has %d decorations, want 4", n)
	}
}

func TestClearAllAndRestore(t *testing.T) {
	text := "f(" + annotation.Render("x", 0, "k1") + ", " + annotation.Render("yy", 0, "k2") + ");\nplain"
	f := newFixture(t, text)

	snapshot := f.ctl.Entries()
	entries := f.ctl.ClearAll()
	f.drain()

	want := []store.Entry{
		{PayloadText: "x", Line: 0, StartColumn: 2, EndColumn: 3},
		{PayloadText: "yy", Line: 0, StartColumn: 5, EndColumn: 7},
	}
	diff.Test(t, t.Errorf, entries, want)
	diff.Test(t, t.Errorf, snapshot, want)

	if got := f.ed.Text(); got != "f(x, yy);\nplain" {
		t.Fatalf("text after ClearAll = %q", got)
	}
	f.checkConsistent()

	if n := f.ctl.Restore(entries); n != 2 {
		t.Fatalf("Restore() = %d, want 2", n)
	}
	f.drain()

	anns := annotation.ParseLine(0, f.ed.Buffer().LineText(0))
	if len(anns) != 2 || anns[0].PayloadText != "x" || anns[1].PayloadText != "yy" {
		t.Fatalf("restored annotations = %v", anns)
	}
	f.checkConsistent()

	// Restoring again finds the logs already present.
	if n := f.ctl.Restore(entries); n != 0 {
		t.Errorf("second Restore() = %d, want 0", n)
	}
}

func TestRestoreSkipsChangedText(t *testing.T) {
	f := newFixture(t, "a(other);")
	n := f.ctl.Restore([]store.Entry{
		{PayloadText: "value", Line: 0, StartColumn: 2, EndColumn: 7},
		{PayloadText: "x", Line: 9, StartColumn: 0, EndColumn: 1},
	})
	if n != 0 {
		t.Errorf("Restore() = %d, want 0", n)
	}
	f.drain()
	if got := f.ed.Text(); got != "a(other);" {
		t.Errorf("text = %q", got)
	}
}
