// ABOUTME: Single-slot storage backends for the persisted track list
// ABOUTME: JSON file backend with atomic replace, plus an in-memory backend

package playlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrNotFound is returned by Backend.Read when nothing has been stored
var ErrNotFound = errors.New("no persisted tracks")

// Backend stores one opaque value under one fixed key
type Backend interface {
	Read() ([]byte, error)
	Write(data []byte) error
	Delete() error
}

// FileBackend keeps the value in a single file
type FileBackend struct {
	path string
}

// NewFileBackend creates a backend writing to path
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

// Read returns the file contents, or ErrNotFound if the file doesn't exist
func (b *FileBackend) Read() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}

	return data, nil
}

// Write replaces the file contents atomically via a temp file and rename
func (b *FileBackend) Write(data []byte) (err error) {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create library directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", b.path, err)
	}

	return nil
}

// Delete removes the file; a missing file is not an error
func (b *FileBackend) Delete() error {
	if err := os.Remove(b.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", b.path, err)
	}

	return nil
}

// MemoryBackend keeps the value in process memory
type MemoryBackend struct {
	mu     sync.Mutex
	data   []byte
	writes int
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Read returns a copy of the stored value
func (b *MemoryBackend) Read() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data == nil {
		return nil, ErrNotFound
	}

	return append([]byte(nil), b.data...), nil
}

// Write stores a copy of data
func (b *MemoryBackend) Write(data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = append([]byte{}, data...)
	b.writes++

	return nil
}

// Delete clears the stored value
func (b *MemoryBackend) Delete() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = nil
	b.writes++

	return nil
}

// Writes returns how many times the value was written or deleted
func (b *MemoryBackend) Writes() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.writes
}
