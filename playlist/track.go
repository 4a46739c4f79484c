// ABOUTME: Defines the Track descriptor and its persisted JSON form
// ABOUTME: Provides display name derivation for local audio files

package playlist

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"
)

// Track identifies one playable item
type Track struct {
	ID       string  // Opaque unique id, generated at ingestion
	Name     string  // Display name (file name without extension)
	Source   string  // Playable reference, a file:// URI
	Duration float64 // Seconds, NaN until known
}

// persistedTrack is the on-disk shape. Duration is a pointer so NaN can be
// written as null.
type persistedTrack struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	URL      string   `json:"url"`
	Duration *float64 `json:"duration"`
}

// MarshalJSON implements json.Marshaler
func (t Track) MarshalJSON() ([]byte, error) {
	p := persistedTrack{ID: t.ID, Name: t.Name, URL: t.Source}

	if !math.IsNaN(t.Duration) && !math.IsInf(t.Duration, 0) {
		d := t.Duration
		p.Duration = &d
	}

	return json.Marshal(p)
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Track) UnmarshalJSON(data []byte) error {
	var p persistedTrack
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	t.ID = p.ID
	t.Name = p.Name
	t.Source = p.URL
	t.Duration = math.NaN()

	if p.Duration != nil {
		t.Duration = *p.Duration
	}

	return nil
}

// HasDuration reports whether the duration has been discovered
func (t Track) HasDuration() bool {
	return !math.IsNaN(t.Duration) && !math.IsInf(t.Duration, 0)
}

// String returns a formatted string representation of the track
func (t Track) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.ID)
}

// DisplayName strips the last extension from a file name
// Example: "01 Dreams.final.mp3" -> "01 Dreams.final"
func DisplayName(fileName string) string {
	base := filepath.Base(fileName)
	ext := filepath.Ext(base)

	if ext == "" || ext == base {
		return base
	}

	return strings.TrimSuffix(base, ext)
}
