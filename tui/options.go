// ABOUTME: TUI configuration and injected dependencies
// ABOUTME: Defines what the terminal player needs from the rest of the application

package tui

import (
	"context"

	"github.com/charmbracelet/log"

	"melodyflow/ingest"
	"melodyflow/media"
	"melodyflow/player"
)

// Options contains configuration for running the TUI
type Options struct {
	VolumeStep float64  // Volume change per key press
	SeekStep   float64  // Seconds moved per scrub key press
	Paths      []string // Files or folders to add at startup
}

// Ingester turns selected files into a track batch
type Ingester interface {
	Ingest(ctx context.Context, files []ingest.File) (ingest.Batch, error)
}

// InboxWatcher reports batches of files dropped into a directory
type InboxWatcher interface {
	Next(ctx context.Context) ([]string, error)
}

// Dependencies holds all external dependencies for the TUI
type Dependencies struct {
	Session  *player.Session
	Ingester Ingester
	// Describe builds file handles from paths; defaults to ingest.Describe
	Describe func(paths []string) []ingest.File
	Events   <-chan media.Event
	Inbox    InboxWatcher // Optional
	// Status must be the notifier the session was built with
	Status *StatusBoard
	// SaveVolume persists the volume on quit; optional
	SaveVolume func(volume float64) error
	Logger     *log.Logger
}
