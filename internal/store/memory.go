package store

import (
	"sort"
	"sync"
)

// Memory is an in-memory store for tests and one-shot sessions.
type Memory struct {
	mu     sync.RWMutex
	data   map[string][]Entry
	closed bool
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]Entry)}
}

// Load returns the entries saved for path.
func (m *Memory) Load(path string) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	entries, ok := m.data[path]
	if !ok {
		return nil, nil
	}
	return append([]Entry(nil), entries...), nil
}

// Save replaces the entries for path.
func (m *Memory) Save(path string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if len(entries) == 0 {
		delete(m.data, path)
		return nil
	}
	m.data[path] = append([]Entry(nil), entries...)
	return nil
}

// Paths returns every path with saved entries.
func (m *Memory) Paths() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	paths := make([]string, 0, len(m.data))
	for p := range m.data {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// Close marks the store closed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
