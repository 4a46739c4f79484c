// ABOUTME: SQLite-backed single-slot storage for the persisted track list
// ABOUTME: Stores the serialized array as one row in a key/value table

package playlist

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const createKVTable = `
	CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)
`

// SQLiteBackend keeps the value in a kv table under one key
type SQLiteBackend struct {
	db  *sql.DB
	key string
}

// OpenSQLiteBackend opens (or creates) the database at path.
// The path can be ":memory:" for an in-memory database.
func OpenSQLiteBackend(path, key string) (*SQLiteBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases consistent
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(createKVTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &SQLiteBackend{db: db, key: key}, nil
}

// Read returns the stored value, or ErrNotFound if the key is absent
func (b *SQLiteBackend) Read() ([]byte, error) {
	var data []byte

	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, b.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", b.key, err)
	}

	return data, nil
}

// Write replaces the stored value
func (b *SQLiteBackend) Write(data []byte) error {
	query := `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`

	if _, err := b.db.Exec(query, b.key, data); err != nil {
		return fmt.Errorf("failed to write key %q: %w", b.key, err)
	}

	return nil
}

// Delete removes the key
func (b *SQLiteBackend) Delete() error {
	if _, err := b.db.Exec(`DELETE FROM kv WHERE key = ?`, b.key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", b.key, err)
	}

	return nil
}

// Close closes the database connection
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
