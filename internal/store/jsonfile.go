package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// ErrCorrupt is returned when a JSON store file is not valid JSON.
var ErrCorrupt = errors.New("store file is not valid JSON")

const emptyDocument = `{"version":1,"files":[]}`

// JSONFile is a store kept in a single human-readable JSON file:
//
//	{"version": 1, "files": [{"path": "...", "entries": [...]}]}
//
// The document is held in memory and rewritten on every Save.
type JSONFile struct {
	mu     sync.Mutex
	path   string
	doc    []byte
	closed bool
}

// NewJSONFile opens the JSON store at path. A missing file is created on
// the first Save.
func NewJSONFile(path string) (*JSONFile, error) {
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = []byte(emptyDocument)
	case err != nil:
		return nil, fmt.Errorf("open %s: %w", path, err)
	case !gjson.ValidBytes(data):
		return nil, fmt.Errorf("open %s: %w", path, ErrCorrupt)
	}
	return &JSONFile{path: path, doc: data}, nil
}

// fileIndex returns the index of path in the files array, or -1.
func (s *JSONFile) fileIndex(path string) int {
	index := -1
	i := 0
	gjson.GetBytes(s.doc, "files").ForEach(func(_, file gjson.Result) bool {
		if file.Get("path").String() == path {
			index = i
			return false
		}
		i++
		return true
	})
	return index
}

// Load returns the entries saved for path.
func (s *JSONFile) Load(path string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	i := s.fileIndex(path)
	if i < 0 {
		return nil, nil
	}

	var entries []Entry
	gjson.GetBytes(s.doc, fmt.Sprintf("files.%d.entries", i)).ForEach(func(_, e gjson.Result) bool {
		entries = append(entries, Entry{
			PayloadText: e.Get("payload").String(),
			Line:        int(e.Get("line").Int()),
			StartColumn: int(e.Get("start").Int()),
			EndColumn:   int(e.Get("end").Int()),
		})
		return true
	})
	return entries, nil
}

// Save replaces the entries for path and rewrites the file.
func (s *JSONFile) Save(path string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	var (
		doc []byte
		err error
	)
	i := s.fileIndex(path)
	switch {
	case len(entries) == 0 && i < 0:
		return nil
	case len(entries) == 0:
		doc, err = sjson.DeleteBytes(s.doc, fmt.Sprintf("files.%d", i))
	case i < 0:
		doc, err = sjson.SetBytes(s.doc, "files.-1", struct {
			Path    string  `json:"path"`
			Entries []Entry `json:"entries"`
		}{path, entries})
	default:
		doc, err = sjson.SetBytes(s.doc, fmt.Sprintf("files.%d.entries", i), entries)
	}
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	if err := s.write(doc); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.doc = doc
	return nil
}

// write replaces the file atomically.
func (s *JSONFile) write(doc []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".compactlog-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pretty.Pretty(doc)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Paths returns every path with saved entries.
func (s *JSONFile) Paths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	var paths []string
	for _, p := range gjson.GetBytes(s.doc, "files.#.path").Array() {
		paths = append(paths, p.String())
	}
	sort.Strings(paths)
	return paths, nil
}

// Close marks the store closed. Every Save is already on disk.
func (s *JSONFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
