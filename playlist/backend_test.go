// ABOUTME: Tests for the single-slot storage backends
// ABOUTME: Covers missing keys, replace semantics and delete on each backend

package playlist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "tracks.json")
	b := NewFileBackend(path)

	if _, err := b.Read(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound before first write, got %v", err)
	}

	if err := b.Write([]byte("first")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := b.Write([]byte("second")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := b.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if string(data) != "second" {
		t.Errorf("Expected last write to win, got %q", data)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("Expected only the data file, found %d entries", len(entries))
	}

	if err := b.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := b.Delete(); err != nil {
		t.Errorf("Deleting a missing file should succeed, got %v", err)
	}

	if _, err := b.Read(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteBackend(t *testing.T) {
	b, err := OpenSQLiteBackend(":memory:", "musicPlayerTracks")
	if err != nil {
		t.Fatalf("OpenSQLiteBackend failed: %v", err)
	}
	defer b.Close()

	if _, err := b.Read(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound before first write, got %v", err)
	}

	if err := b.Write([]byte("[1]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := b.Write([]byte("[1,2]")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := b.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if string(data) != "[1,2]" {
		t.Errorf("Expected upsert to replace value, got %q", data)
	}

	if err := b.Delete(); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := b.Read(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSQLiteBackendKeysAreIndependent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib.db")

	a, err := OpenSQLiteBackend(path, "a")
	if err != nil {
		t.Fatalf("OpenSQLiteBackend failed: %v", err)
	}
	defer a.Close()

	other, err := OpenSQLiteBackend(path, "b")
	if err != nil {
		t.Fatalf("OpenSQLiteBackend failed: %v", err)
	}
	defer other.Close()

	if err := a.Write([]byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := other.Read(); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected key b to be empty, got %v", err)
	}
}
