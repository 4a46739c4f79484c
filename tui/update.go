// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"melodyflow/transport"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("update panic", "panic", r, "stack", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	cmd := m.handleMsg(msg)

	// Every status message gets its own expiry redraw, including queued
	// ones once they become visible
	if d, ok := m.status.nextExpiry(); ok && !m.quitting {
		cmd = tea.Batch(cmd, scheduleStatusExpiry(d))
	}

	return m, cmd
}

func (m *model) handleMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return nil

	case mediaEventMsg:
		before := m.session.Active()
		m.session.HandleMediaEvent(msg.event)

		// Follow playback to the next track when the cursor was on it
		if after := m.session.Active(); after != before && m.cursorPos == before {
			m.cursorPos = after
		}

		m.updateViewportContent()

		return waitForMediaEvent(m.events)

	case inboxMsg:
		return m.handleInbox(msg)

	case ingestDoneMsg:
		m.ingesting--

		if msg.err != nil {
			m.session.HandleIngestError(msg.err)
		} else {
			_ = m.session.AddBatch(msg.batch) // Reported through the notifier
		}

		m.refreshPlaylist()

		return nil

	case seekCommitMsg:
		// Only the tick from the latest key press commits
		if msg.seq == m.seekSeq && m.session.Transport().State() == transport.Seeking {
			m.commitSeek()
		}

		return nil

	case statusExpiredMsg:
		return nil

	case tea.KeyMsg:
		if m.adding {
			return m.handleInputKey(msg)
		}

		return m.handleKey(msg)
	}

	return nil
}

// resize lays out the widgets for a new terminal size
func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	viewportWidth := max(width, minViewportWidth)

	// Height: total height minus all UI chrome (title, card, header, status, help, prompt)
	viewportHeight := max(height-totalUIChrome, minViewportHeight)

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight

	// Progress bar shares its line with the two timestamps
	m.progress.Width = max(width-timeColumnsWidth, minProgressWidth)
	m.input.Width = max(width-len(m.input.Prompt)-1, minProgressWidth)

	m.updateViewportContent()
}

func (m *model) handleInbox(msg inboxMsg) tea.Cmd {
	if msg.err != nil {
		if inboxStopped(msg.err) {
			m.logger.Debug("inbox watcher stopped", "err", msg.err)
			return nil
		}

		m.logger.Warn("inbox watcher failed", "err", msg.err)

		return waitForInbox(m.ctx, m.inbox)
	}

	if len(msg.paths) == 0 {
		return waitForInbox(m.ctx, m.inbox)
	}

	m.logger.Info("new files in inbox", "count", len(msg.paths))

	return tea.Batch(m.startIngest(msg.paths), waitForInbox(m.ctx, m.inbox))
}

// startIngest launches ingestion for paths
func (m *model) startIngest(paths []string) tea.Cmd {
	if m.ingester == nil {
		m.logger.Warn("no ingester configured, ignoring paths", "count", len(paths))
		return nil
	}

	m.ingesting++

	return ingestPaths(m.ctx, m.ingester, m.describe, paths)
}

// handleKey dispatches a key press in playlist mode
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return m.handleQuitKey()

	case key.Matches(msg, keys.Cancel):
		m.session.Transport().CancelSeek()
		return nil

	case key.Matches(msg, keys.Select):
		m.handleSelectKey()

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, keys.PageUp):
		m.moveCursor(-pageJumpSize)

	case key.Matches(msg, keys.PageDown):
		m.moveCursor(pageJumpSize)

	case key.Matches(msg, keys.Home):
		m.moveCursor(-m.session.Len())

	case key.Matches(msg, keys.End):
		m.moveCursor(m.session.Len())

	case key.Matches(msg, keys.Delete):
		m.handleDeleteKey()

	case key.Matches(msg, keys.Undo):
		if m.session.Undo() {
			m.setStatusMsg("Undone")
		} else {
			m.setStatusMsg("Nothing to undo")
		}

		m.refreshPlaylist()

	case key.Matches(msg, keys.Redo):
		if m.session.Redo() {
			m.setStatusMsg("Redone")
		} else {
			m.setStatusMsg("Nothing to redo")
		}

		m.refreshPlaylist()

	case key.Matches(msg, keys.PlayPause):
		m.handlePlayPauseKey()

	case key.Matches(msg, keys.Next):
		m.session.Next()
		m.updateViewportContent()

	case key.Matches(msg, keys.Previous):
		m.session.Previous()
		m.updateViewportContent()

	case key.Matches(msg, keys.SeekBack):
		return m.handleSeekKey(-m.opts.SeekStep)

	case key.Matches(msg, keys.SeekFwd):
		return m.handleSeekKey(m.opts.SeekStep)

	case key.Matches(msg, keys.VolUp):
		ctrl := m.session.Transport()
		ctrl.SetVolume(ctrl.DisplayVolume() + m.opts.VolumeStep)

	case key.Matches(msg, keys.VolDown):
		ctrl := m.session.Transport()
		ctrl.SetVolume(ctrl.DisplayVolume() - m.opts.VolumeStep)

	case key.Matches(msg, keys.Mute):
		m.session.Transport().ToggleMute()

	case key.Matches(msg, keys.Add):
		m.adding = true
		m.input.SetValue("")

		return m.input.Focus()
	}

	return nil
}

// handleQuitKey persists the volume and exits
func (m *model) handleQuitKey() tea.Cmd {
	m.quitting = true
	m.cancel()

	if m.saveVolume != nil {
		if err := m.saveVolume(m.session.Transport().Volume()); err != nil {
			m.logger.Warn("failed to save volume", "err", err)
		}
	}

	return tea.Quit
}

// handleSelectKey commits a pending seek, otherwise plays the track under the cursor
func (m *model) handleSelectKey() {
	if m.session.Transport().State() == transport.Seeking {
		m.commitSeek()
		return
	}

	if m.session.Len() == 0 {
		return
	}

	if err := m.session.Select(m.cursorPos); err != nil {
		m.logger.Warn("failed to select track", "index", m.cursorPos, "err", err)
		return
	}

	m.updateViewportContent()
}

func (m *model) handleDeleteKey() {
	if m.session.Len() == 0 {
		return
	}

	if err := m.session.Remove(m.cursorPos); err != nil {
		m.logger.Warn("failed to remove track", "index", m.cursorPos, "err", err)
		m.status.Error(fmt.Sprintf("Cannot remove track: %v", err))

		return
	}

	m.refreshPlaylist()
}

func (m *model) handlePlayPauseKey() {
	err := m.session.TogglePlay()

	switch {
	case err == nil:
	case errors.Is(err, transport.ErrNoTrack):
		m.setStatusMsg("Press a to add tracks")
	default:
		// The transport already logged it and reverted to paused
		m.logger.Debug("toggle play failed", "err", err)
	}
}

// handleSeekKey moves the scrub position and schedules the commit
func (m *model) handleSeekKey(delta float64) tea.Cmd {
	ctrl := m.session.Transport()
	if ctrl.State() == transport.Idle || !ctrl.HasDuration() {
		return nil
	}

	ctrl.DragSeek(ctrl.Position() + delta)

	m.seekSeq++

	return scheduleSeekCommit(m.seekSeq)
}

func (m *model) commitSeek() {
	if err := m.session.Transport().CommitSeek(); err != nil {
		m.logger.Warn("failed to seek", "err", err)
	}
}

// moveCursor moves the playlist cursor by delta rows, clamped to the list
func (m *model) moveCursor(delta int) {
	m.cursorPos += delta
	m.clampCursor()
	m.updateViewportContent()
}

// handleInputKey edits the add-files prompt
func (m *model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.handleQuitKey()

	case tea.KeyEsc:
		m.closeInput()
		return nil

	case tea.KeyEnter:
		paths := splitPaths(m.input.Value())
		m.closeInput()

		if len(paths) == 0 {
			return nil
		}

		return m.startIngest(paths)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return cmd
}

func (m *model) closeInput() {
	m.adding = false
	m.input.Blur()
	m.input.SetValue("")
}
