// Package store persists log positions per file so annotations can be
// stripped from a file and restored later.
package store

import (
	"errors"
	"fmt"
)

// Entry records where the bare expression text of one annotation sits in a
// file with its annotations stripped.
type Entry struct {
	PayloadText string `json:"payload"`
	Line        int    `json:"line"`
	StartColumn int    `json:"start"`
	EndColumn   int    `json:"end"`
}

// Store is the interface for entry persistence, keyed by file path.
type Store interface {
	// Load returns the entries saved for path, or nil if there are none.
	Load(path string) ([]Entry, error)

	// Save replaces the entries for path. Saving no entries removes path.
	Save(path string, entries []Entry) error

	// Paths returns every path with saved entries, sorted.
	Paths() ([]string, error)

	// Close releases resources.
	Close() error
}

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store closed")

// ErrUnknownBackend is returned by Open for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown store backend")

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Open opens a store by backend name. The path is ignored for the memory
// backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		s, err := NewSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendJSON:
		s, err := NewJSONFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
