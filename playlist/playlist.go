// ABOUTME: Ordered track store mirrored to a single-slot persistence backend
// ABOUTME: Every mutation rewrites the whole serialized array (or deletes it when empty)

// Package playlist holds the ordered list of tracks the player knows about.
// The in-memory list is the source of truth for the session and is flushed to
// a Backend (JSON file, SQLite row, memory) after every mutation.
package playlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Store errors
var (
	ErrIndexOutOfRange = errors.New("track index out of range")
	ErrDuplicateID     = errors.New("duplicate track id")
)

// Store is the ordered sequence of tracks
type Store struct {
	backend Backend
	tracks  []Track
	logger  *log.Logger
}

// NewStore creates an empty store over backend. Call Load to read persisted
// tracks.
func NewStore(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Store{backend: backend, logger: logger}
}

// Load replaces the in-memory list with the persisted one and returns a copy.
// Missing or corrupt data yields an empty store; corruption is logged, not
// returned.
func (s *Store) Load() []Track {
	s.tracks = nil

	data, err := s.backend.Read()
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("error loading saved tracks", "err", err)
		}

		return s.Tracks()
	}

	var tracks []Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		s.logger.Error("error loading saved tracks", "err", err)

		return s.Tracks()
	}

	seen := make(map[string]bool, len(tracks))
	for _, t := range tracks {
		if seen[t.ID] {
			s.logger.Warn("dropping duplicate persisted track", "id", t.ID, "name", t.Name)
			continue
		}

		seen[t.ID] = true
		s.tracks = append(s.tracks, t)
	}

	s.logger.Debug("loaded tracks", "count", len(s.tracks))

	return s.Tracks()
}

// Tracks returns a copy of the current list
func (s *Store) Tracks() []Track {
	return append([]Track{}, s.tracks...)
}

// Len returns the number of tracks
func (s *Store) Len() int {
	return len(s.tracks)
}

// At returns the track at index
func (s *Store) At(index int) (Track, bool) {
	if index < 0 || index >= len(s.tracks) {
		return Track{}, false
	}

	return s.tracks[index], true
}

// Add appends tracks to the end, preserving their order.
// The whole batch is rejected if any id is already present or repeated.
func (s *Store) Add(tracks ...Track) error {
	if len(tracks) == 0 {
		return nil
	}

	if err := s.checkUnique(s.tracks, tracks); err != nil {
		return err
	}

	s.tracks = append(s.tracks, tracks...)
	s.save()

	return nil
}

// Remove deletes the track at index, shifting later tracks down by one
func (s *Store) Remove(index int) (Track, error) {
	if index < 0 || index >= len(s.tracks) {
		return Track{}, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, index, len(s.tracks))
	}

	removed := s.tracks[index]
	s.tracks = append(s.tracks[:index:index], s.tracks[index+1:]...)
	s.save()

	return removed, nil
}

// Replace swaps the whole list
func (s *Store) Replace(tracks []Track) error {
	if err := s.checkUnique(nil, tracks); err != nil {
		return err
	}

	s.tracks = append([]Track{}, tracks...)
	s.save()

	return nil
}

// Clear removes every track
func (s *Store) Clear() {
	s.tracks = nil
	s.save()
}

func (s *Store) checkUnique(existing, incoming []Track) error {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, t := range existing {
		seen[t.ID] = true
	}

	for _, t := range incoming {
		if seen[t.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}

		seen[t.ID] = true
	}

	return nil
}

// save flushes the list. Writes are best-effort: failures are logged only.
func (s *Store) save() {
	if len(s.tracks) == 0 {
		if err := s.backend.Delete(); err != nil {
			s.logger.Warn("failed to delete saved tracks", "err", err)
		}

		return
	}

	data, err := json.Marshal(s.tracks)
	if err != nil {
		s.logger.Warn("failed to encode tracks", "err", err)
		return
	}

	if err := s.backend.Write(data); err != nil {
		s.logger.Warn("failed to save tracks", "err", err)
	}
}
