// ABOUTME: Bubble Tea commands bridging blocking work into the update loop
// ABOUTME: Media events, inbox batches, ingestion and timers arrive here as messages

package tui

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"melodyflow/ingest"
	"melodyflow/media"
)

// mediaEventMsg carries a notification from the audio handle
type mediaEventMsg struct {
	event media.Event
}

// inboxMsg carries files that appeared in the watched directory
type inboxMsg struct {
	paths []string
	err   error
}

// ingestDoneMsg carries a finished ingestion batch
type ingestDoneMsg struct {
	batch ingest.Batch
	err   error
}

// seekCommitMsg fires after scrubbing goes idle
type seekCommitMsg struct {
	seq int
}

// statusExpiredMsg forces a redraw once a status message times out
type statusExpiredMsg struct{}

// waitForMediaEvent blocks until the handle reports something
func waitForMediaEvent(events <-chan media.Event) tea.Cmd {
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}

		return mediaEventMsg{event: ev}
	}
}

// waitForInbox blocks until the watcher reports a batch of new files
func waitForInbox(ctx context.Context, inbox InboxWatcher) tea.Cmd {
	if inbox == nil {
		return nil
	}

	return func() tea.Msg {
		paths, err := inbox.Next(ctx)
		return inboxMsg{paths: paths, err: err}
	}
}

// inboxStopped reports whether the watcher will not deliver again
func inboxStopped(err error) bool {
	return errors.Is(err, ingest.ErrWatcherClosed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// ingestPaths describes and probes paths off the update loop
func ingestPaths(ctx context.Context, ingester Ingester, describe func([]string) []ingest.File, paths []string) tea.Cmd {
	return func() tea.Msg {
		batch, err := ingester.Ingest(ctx, describe(paths))

		return ingestDoneMsg{batch: batch, err: err}
	}
}

// scheduleSeekCommit commits the scrub position once keys stop arriving
func scheduleSeekCommit(seq int) tea.Cmd {
	return tea.Tick(seekCommitDelay, func(time.Time) tea.Msg {
		return seekCommitMsg{seq: seq}
	})
}

// scheduleStatusExpiry redraws after a status message times out
func scheduleStatusExpiry(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusExpiredMsg{}
	})
}

// splitPaths splits prompt input into paths. Whitespace separates paths
// unless quoted or escaped with a backslash, which is how terminals paste
// dropped files.
func splitPaths(input string) []string {
	var (
		paths   []string
		current strings.Builder
		quote   rune
		escaped bool
		started bool
	)

	flush := func() {
		if started {
			paths = append(paths, current.String())
		}

		current.Reset()
		started = false
	}

	for _, r := range input {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			started = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			started = true
		case unicode.IsSpace(r):
			flush()
		default:
			current.WriteRune(r)
			started = true
		}
	}

	flush()

	return paths
}
