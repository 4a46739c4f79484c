// ABOUTME: User-facing notification sink and message texts
// ABOUTME: Lets the terminal UI and the command line surface the same messages

package player

import (
	"fmt"

	"github.com/charmbracelet/log"

	"melodyflow/ingest"
)

// Notifier shows transient messages to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Message texts
const (
	MsgNoAudioFiles = "Please select valid audio files"
	MsgTrackRemoved = "Track removed"
)

// MsgAdded reports a successful batch
func MsgAdded(n int) string {
	if n == 1 {
		return "Added 1 track"
	}

	return fmt.Sprintf("Added %d tracks", n)
}

// MsgLoadFailed reports one file that could not be loaded
func MsgLoadFailed(name string) string {
	return "Failed to load: " + name
}

// ReportBatch posts one error per failed file in batch, then the success
// line when added is positive
func ReportBatch(n Notifier, batch ingest.Batch, added int) {
	for _, f := range batch.Failures {
		n.Error(MsgLoadFailed(f.Name))
	}

	if added > 0 {
		n.Success(MsgAdded(added))
	}
}

// LogNotifier writes notifications to a logger
type LogNotifier struct {
	Logger *log.Logger
}

// Success implements Notifier
func (n LogNotifier) Success(msg string) {
	n.Logger.Info(msg)
}

// Error implements Notifier
func (n LogNotifier) Error(msg string) {
	n.Logger.Error(msg)
}
