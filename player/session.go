// ABOUTME: Player session composing the track store, active index and transport
// ABOUTME: Applies selection, removal, skip rules and ingestion results atomically

// Package player holds the application state shared by the terminal UI and
// the command line: the playlist, which track is active, and playback.
package player

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"melodyflow/ingest"
	"melodyflow/media"
	"melodyflow/playlist"
	"melodyflow/transport"
)

// NoActive is the active index when the playlist is empty
const NoActive = -1

// RestartThreshold is how far into a track "previous" restarts it instead
// of moving back, in seconds
const RestartThreshold = 3.0

// Session owns the playlist and the active track. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	store     *playlist.Store
	transport *transport.Controller
	notify    Notifier
	history   *History
	logger    *log.Logger
	active    int
}

// NewSession wraps a loaded store. The first track becomes active, paused.
func NewSession(store *playlist.Store, ctrl *transport.Controller, notify Notifier, logger *log.Logger) *Session {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	if notify == nil {
		notify = LogNotifier{Logger: logger}
	}

	s := &Session{
		store:     store,
		transport: ctrl,
		notify:    notify,
		history:   NewHistory(DefaultHistorySize),
		logger:    logger,
		active:    NoActive,
	}

	if store.Len() > 0 {
		s.active = 0
		s.bind()
	}

	return s
}

// Tracks returns a copy of the playlist
func (s *Session) Tracks() []playlist.Track {
	return s.store.Tracks()
}

// Len returns the playlist length
func (s *Session) Len() int {
	return s.store.Len()
}

// Active returns the active index, NoActive when empty
func (s *Session) Active() int {
	return s.active
}

// ActiveTrack returns the active track
func (s *Session) ActiveTrack() (playlist.Track, bool) {
	if s.active == NoActive {
		return playlist.Track{}, false
	}

	return s.store.At(s.active)
}

// Transport returns the playback controller
func (s *Session) Transport() *transport.Controller {
	return s.transport
}

// History returns the undo history
func (s *Session) History() *History {
	return s.history
}

// CanPrevious reports whether Previous would do anything
func (s *Session) CanPrevious() bool {
	return s.active > 0 || (s.active == 0 && s.transport.Elapsed() > RestartThreshold)
}

// CanNext reports whether a next track exists
func (s *Session) CanNext() bool {
	return s.active != NoActive && s.active < s.store.Len()-1
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{Tracks: s.store.Tracks(), Active: s.active}
}

// bind points the transport at the active track
func (s *Session) bind() {
	t, ok := s.ActiveTrack()
	if !ok {
		s.transport.Bind(nil)
		return
	}

	if err := s.transport.Bind(&t); err != nil {
		s.notify.Error(MsgLoadFailed(t.Name))
	}
}

// Select makes index active. Selecting the active track changes nothing.
func (s *Session) Select(index int) error {
	if index < 0 || index >= s.store.Len() {
		return fmt.Errorf("select %d: %w", index, playlist.ErrIndexOutOfRange)
	}

	s.active = index
	s.bind()

	return nil
}

// Remove deletes the track at index and keeps the active track stable
// where possible
func (s *Session) Remove(index int) error {
	before := s.snapshot()

	removed, err := s.store.Remove(index)
	if err != nil {
		return err
	}

	s.history.Record(before)
	s.active = reconcileActive(s.active, index, s.store.Len())
	s.bind()

	s.logger.Info("removed track", "track", removed.Name, "index", index, "active", s.active)
	s.notify.Success(MsgTrackRemoved)

	return nil
}

// reconcileActive returns the active index after removing removed from a
// playlist that now has length remaining
func reconcileActive(active, removed, remaining int) int {
	switch {
	case remaining == 0:
		return NoActive
	case removed < active:
		return active - 1
	case active >= remaining:
		return remaining - 1
	default:
		return active
	}
}

// Clear empties the playlist
func (s *Session) Clear() {
	if s.store.Len() == 0 {
		return
	}

	s.history.Record(s.snapshot())
	s.store.Clear()
	s.active = NoActive
	s.bind()
}

// AddBatch appends an ingestion result and reports it to the user. One
// error is shown per failed file; the success message counts appended
// tracks and is skipped when nothing was appended.
func (s *Session) AddBatch(batch ingest.Batch) error {
	if len(batch.Tracks) == 0 {
		s.logger.Info("batch produced no tracks", "failures", len(batch.Failures))
		ReportBatch(s.notify, batch, 0)

		return nil
	}

	before := s.snapshot()

	if err := s.store.Add(batch.Tracks...); err != nil {
		ReportBatch(s.notify, batch, 0)
		s.notify.Error(err.Error())

		return err
	}

	s.history.Record(before)

	if s.active == NoActive {
		s.active = 0
		s.bind()
	}

	s.logger.Info("added tracks", "count", len(batch.Tracks))
	ReportBatch(s.notify, batch, len(batch.Tracks))

	return nil
}

// HandleIngestError reports a failed ingestion. Cancellation is silent.
func (s *Session) HandleIngestError(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ingest.ErrNoAudioFiles):
		s.notify.Error(MsgNoAudioFiles)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.logger.Debug("ingestion dropped", "err", err)
	default:
		s.logger.Error("ingestion failed", "err", err)
		s.notify.Error(err.Error())
	}
}

// TogglePlay switches between play and pause. Failures are logged by the
// transport and leave it paused.
func (s *Session) TogglePlay() error {
	if s.active == NoActive {
		return transport.ErrNoTrack
	}

	return s.transport.Toggle()
}

// Next advances to the following track; no-op at the end
func (s *Session) Next() {
	if !s.CanNext() {
		return
	}

	s.active++
	s.bind()
}

// Previous restarts the track when past the threshold, otherwise moves
// back one; no-op on the first track near its start
func (s *Session) Previous() {
	if s.active == NoActive {
		return
	}

	if s.transport.Elapsed() > RestartThreshold {
		s.transport.Restart()
		return
	}

	if s.active > 0 {
		s.active--
		s.bind()
	}
}

// HandleMediaEvent feeds a media notification to the transport. At the end
// of a track playback advances, or stops at the end of the playlist.
func (s *Session) HandleMediaEvent(ev media.Event) {
	if !s.transport.HandleEvent(ev) {
		return
	}

	if s.CanNext() {
		s.logger.Debug("track ended, advancing", "from", s.active)
		s.Next()

		return
	}

	s.logger.Debug("playlist ended")
	s.transport.Stop()
}

// Undo reverts the last edit
func (s *Session) Undo() bool {
	prev, ok := s.history.Undo(s.snapshot())
	if !ok {
		return false
	}

	s.restore(prev)

	return true
}

// Redo reapplies the last undone edit
func (s *Session) Redo() bool {
	next, ok := s.history.Redo(s.snapshot())
	if !ok {
		return false
	}

	s.restore(next)

	return true
}

func (s *Session) restore(snap Snapshot) {
	if err := s.store.Replace(snap.Tracks); err != nil {
		s.logger.Error("failed to restore playlist", "err", err)
		return
	}

	s.active = snap.Active
	if s.active >= s.store.Len() {
		s.active = s.store.Len() - 1
	}

	if s.store.Len() == 0 {
		s.active = NoActive
	}

	s.bind()
}
