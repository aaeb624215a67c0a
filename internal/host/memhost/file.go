package memhost

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// OpenFile reads a file from disk into a new editor.
func (w *Workspace) OpenFile(path string) (*Editor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ed := w.Open(path, string(data))
	ed.saved = ed.Text()
	ed.perm = info.Mode().Perm()
	if bytes.Contains(data, []byte("\r\n")) {
		ed.newline = "\r\n"
	}
	return ed, nil
}

// Modified reports whether the text differs from what was last read from or
// written to disk. Line endings are compared after normalization to "\n".
func (e *Editor) Modified() bool {
	return e.Text() != e.saved
}

// Save writes the text back to the editor's path if it was modified. It
// reports whether a write happened. Files read with CRLF line endings are
// written back with CRLF.
func (e *Editor) Save() (bool, error) {
	if !e.Modified() {
		return false, nil
	}
	perm := e.perm
	if perm == 0 {
		perm = 0o644
	}
	text := e.Text()
	out := text
	if e.newline != "" {
		out = strings.ReplaceAll(text, "\n", e.newline)
	}
	if err := os.WriteFile(e.buf.Path(), []byte(out), perm); err != nil {
		return false, err
	}
	e.saved = text
	return true, nil
}
