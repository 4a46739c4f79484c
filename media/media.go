// ABOUTME: Host media capability consumed by the transport controller
// ABOUTME: Defines the Handle interface, its notifications and source URI helpers

// Package media wraps the audio output facility behind a small interface.
// A Handle plays one source at a time and reports progress through an event
// channel; a Prober discovers a source's duration without playing it.
package media

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Media errors
var (
	ErrNotLoaded          = errors.New("no source loaded")
	ErrUnsupportedFormat  = errors.New("unsupported audio format")
	ErrUnknownDuration    = errors.New("duration could not be determined")
	ErrSpeakerUnavailable = errors.New("audio output unavailable")
)

// EventKind identifies a Handle notification
type EventKind int

// Notifications emitted by a Handle
const (
	TimeUpdated   EventKind = iota // Periodic position report while playing
	DurationKnown                  // Duration discovered after load
	Ended                          // Natural end of media
)

// String returns the event name
func (k EventKind) String() string {
	switch k {
	case TimeUpdated:
		return "time-updated"
	case DurationKnown:
		return "duration-known"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Event is a notification from a Handle. Generation matches the value
// returned by the Load call the event belongs to.
type Event struct {
	Kind       EventKind
	Generation uint64
	Position   float64 // Seconds
	Duration   float64 // Seconds, NaN if unknown
}

// Handle is a single playable media handle
type Handle interface {
	// Load binds a new source and returns its generation. The handle is
	// paused after Load.
	Load(source string) (uint64, error)
	// Unload releases the current source
	Unload()
	Play() error
	Pause()
	Position() float64
	SetPosition(seconds float64) error
	Volume() float64
	SetVolume(v float64)
	// Duration returns NaN until known
	Duration() float64
	Events() <-chan Event
	Close() error
}

// Prober discovers the duration of a source
type Prober interface {
	Probe(ctx context.Context, source string) (float64, error)
}

// SourceURI converts a local path into a file:// URI
func SourceURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	return u.String(), nil
}

// SourcePath converts a source reference back into a local path
// Plain paths are returned unchanged.
func SourcePath(source string) (string, error) {
	if !strings.HasPrefix(source, "file:") {
		return source, nil
	}

	u, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("invalid source uri %q: %w", source, err)
	}

	return filepath.FromSlash(u.Path), nil
}
