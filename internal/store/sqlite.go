package store

import (
	"database/sql"
	"fmt"
	"sync"
)

// SchemaVersion is the current schema version of SQLite stores.
const SchemaVersion = "1"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool
}

// NewSQLite opens or creates a SQLite store at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			path TEXT NOT NULL,
			seq INTEGER NOT NULL,
			payload TEXT NOT NULL,
			line INTEGER NOT NULL,
			start_col INTEGER NOT NULL,
			end_col INTEGER NOT NULL,
			PRIMARY KEY (path, seq)
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLite{db: db}

	version, err := s.metadata("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadata("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Load returns the entries saved for path in their saved order.
func (s *SQLite) Load(path string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.Query(`
		SELECT payload, line, start_col, end_col FROM entries
		WHERE path = ? ORDER BY seq
	`, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PayloadText, &e.Line, &e.StartColumn, &e.EndColumn); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the entries for path in one transaction.
func (s *SQLite) Save(path string, entries []Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries WHERE path = ?", path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	for i, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO entries (path, seq, payload, line, start_col, end_col)
			VALUES (?, ?, ?, ?, ?, ?)
		`, path, i, e.PayloadText, e.Line, e.StartColumn, e.EndColumn)
		if err != nil {
			return fmt.Errorf("save %s: %w", path, err)
		}
	}
	return tx.Commit()
}

// Paths returns every path with saved entries.
func (s *SQLite) Paths() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.Query("SELECT DISTINCT path FROM entries ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// metadata reads a metadata value; the caller must hold the lock or be
// constructing the store.
func (s *SQLite) metadata(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLite) setMetadata(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
