package script

import (
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/compactlog/internal/annotation"
	"github.com/dshills/compactlog/internal/host/memhost"
	"github.com/dshills/compactlog/internal/textrange"
)

// register installs the compactlog global table.
func (r *Runner) register() {
	mod := r.L.NewTable()

	r.L.SetField(mod, "select", r.L.NewFunction(r.selectRange))
	r.L.SetField(mod, "cursor", r.L.NewFunction(r.cursor))
	r.L.SetField(mod, "toggle", r.L.NewFunction(r.toggle))
	r.L.SetField(mod, "insert", r.L.NewFunction(r.insert))
	r.L.SetField(mod, "replace", r.L.NewFunction(r.replace))
	r.L.SetField(mod, "text", r.L.NewFunction(r.text))
	r.L.SetField(mod, "line", r.L.NewFunction(r.line))
	r.L.SetField(mod, "lines", r.L.NewFunction(r.lines))
	r.L.SetField(mod, "find", r.L.NewFunction(r.find))
	r.L.SetField(mod, "list", r.L.NewFunction(r.list))
	r.L.SetField(mod, "sync", r.L.NewFunction(r.sync))
	r.L.SetField(mod, "clear", r.L.NewFunction(r.clear))

	r.L.SetGlobal("compactlog", mod)
}

// editor returns the active editor or raises a Lua error.
func (r *Runner) editor(L *lua.LState) *memhost.Editor {
	r.step(L)
	ed := r.ws.Active()
	if ed == nil {
		L.RaiseError("%v", ErrNoEditor)
	}
	return ed
}

// drain delivers pending events or raises a Lua error.
func (r *Runner) drain(L *lua.LState) {
	if _, err := r.ws.Drain(); err != nil {
		L.RaiseError("%v", err)
	}
}

// position converts a 1-based line and column argument pair.
func position(L *lua.LState, n int) textrange.Position {
	return textrange.Pos(L.CheckInt(n)-1, L.CheckInt(n+1)-1)
}

// select(line, first, last)
// Selects columns first through last of line.
func (r *Runner) selectRange(L *lua.LState) int {
	ed := r.editor(L)
	start := position(L, 1)
	end := textrange.Pos(start.Line, L.CheckInt(3))
	ed.Select(textrange.NewSelection(start, end))
	r.drain(L)
	return 0
}

// cursor(line, col)
// Places an empty selection before column col.
func (r *Runner) cursor(L *lua.LState) int {
	ed := r.editor(L)
	ed.Select(textrange.Cursor(position(L, 1)))
	r.drain(L)
	return 0
}

// toggle() -> true | nil, message
func (r *Runner) toggle(L *lua.LState) int {
	r.editor(L)
	err := r.ctl.Toggle()
	r.drain(L)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

func (r *Runner) edit(L *lua.LState, e textrange.Edit) {
	ed := r.editor(L)
	if err := ed.Edit(e); err != nil {
		L.RaiseError("%s: %v", e, err)
	}
	r.drain(L)
}

// insert(line, col, text)
func (r *Runner) insert(L *lua.LState) int {
	r.edit(L, textrange.Insert(position(L, 1), L.CheckString(3)))
	return 0
}

// replace(line, first, last, text)
func (r *Runner) replace(L *lua.LState) int {
	start := position(L, 1)
	end := textrange.Pos(start.Line, L.CheckInt(3))
	r.edit(L, textrange.Replace(textrange.NewRange(start, end), L.CheckString(4)))
	return 0
}

// text() -> string
func (r *Runner) text(L *lua.LState) int {
	L.Push(lua.LString(r.editor(L).Text()))
	return 1
}

// line(n) -> string
func (r *Runner) line(L *lua.LState) int {
	ed := r.editor(L)
	L.Push(lua.LString(ed.Buffer().LineText(L.CheckInt(1) - 1)))
	return 1
}

// lines() -> count
func (r *Runner) lines(L *lua.LState) int {
	L.Push(lua.LNumber(r.editor(L).Buffer().LineCount()))
	return 1
}

// find(text [, fromLine]) -> line, first, last | nil
// Finds the first plain-text occurrence of text at or after fromLine.
func (r *Runner) find(L *lua.LState) int {
	ed := r.editor(L)
	needle := L.CheckString(1)
	from := L.OptInt(2, 1)

	buf := ed.Buffer()
	for l := from - 1; l < buf.LineCount(); l++ {
		if l < 0 {
			continue
		}
		if i := strings.Index(buf.LineText(l), needle); i >= 0 && needle != "" {
			L.Push(lua.LNumber(l + 1))
			L.Push(lua.LNumber(i + 1))
			L.Push(lua.LNumber(i + len(needle)))
			return 3
		}
	}
	L.Push(lua.LNil)
	return 1
}

// list() -> {{id, line, payload, first, last}, ...}
func (r *Runner) list(L *lua.LState) int {
	ed := r.editor(L)
	tbl := L.NewTable()
	for i, a := range annotation.ParseDocument(ed.Document()) {
		item := L.NewTable()
		L.SetField(item, "id", lua.LString(a.ID))
		L.SetField(item, "line", lua.LNumber(a.Line+1))
		L.SetField(item, "payload", lua.LString(a.PayloadText))
		L.SetField(item, "first", lua.LNumber(a.PayloadRange.Start.Column+1))
		L.SetField(item, "last", lua.LNumber(a.PayloadRange.End.Column))
		tbl.RawSetInt(i+1, item)
	}
	L.Push(tbl)
	return 1
}

// sync()
func (r *Runner) sync(L *lua.LState) int {
	r.editor(L)
	r.ctl.Sync()
	r.drain(L)
	return 0
}

// clear() -> count
func (r *Runner) clear(L *lua.LState) int {
	r.editor(L)
	n := len(r.ctl.ClearAll())
	r.drain(L)
	L.Push(lua.LNumber(n))
	return 1
}
