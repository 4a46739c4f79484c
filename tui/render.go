// ABOUTME: Playlist and status bar rendering for the TUI
// ABOUTME: Builds the scrollable track list, bottom status bar and help line

package tui

import (
	"fmt"
	"strings"

	"melodyflow/transport"
)

// Playlist row layout: marker, number, name, length
const (
	markerWidth  = 2
	numberWidth  = 4
	lengthWidth  = 8
	rowSeparator = 3 // Spaces between columns
)

// nameWidth returns how many columns the track name gets
func (m model) nameWidth() int {
	return max(m.viewport.Width-markerWidth-numberWidth-lengthWidth-rowSeparator, minViewportWidth/3)
}

// renderPlaylistHeader renders the playlist title and column headers
func (m model) renderPlaylistHeader() string {
	title := fmt.Sprintf("Playlist (%d tracks)", m.session.Len())
	if m.ingesting > 0 {
		title += " · adding files..."
	}

	nameW := m.nameWidth()
	columns := fmt.Sprintf("%*s%*s  %-*s %*s",
		markerWidth, "", numberWidth, "#", nameW, "Title", lengthWidth, "Length")

	return playlistHeaderStyle.Render(title) + "\n" + dimStyle.Render(columns) + "\n"
}

// updateViewportContent rebuilds the track rows and scrolls to the cursor
func (m *model) updateViewportContent() {
	tracks := m.session.Tracks()

	if len(tracks) == 0 {
		m.viewport.SetContent(dimStyle.Render("  Playlist is empty"))
		m.viewport.SetYOffset(0)

		return
	}

	active := m.session.Active()
	nameW := m.nameWidth()

	var b strings.Builder

	for i, t := range tracks {
		marker := ""
		if i == active {
			marker = "▶"
		}

		line := fmt.Sprintf("%-*s%*d  %-*s %*s",
			markerWidth, marker,
			numberWidth, i+1,
			nameW, truncate(t.Name, nameW),
			lengthWidth, transport.FormatTime(t.Duration))

		switch {
		case i == m.cursorPos:
			line = cursorStyle.Render(line)
		case i == active:
			line = activeStyle.Render(line)
		}

		b.WriteString(line)

		if i < len(tracks)-1 {
			b.WriteString("\n")
		}
	}

	m.viewport.SetContent(b.String())
	m.ensureCursorVisible()
}

// renderStatus renders the status bar
func (m model) renderStatus() string {
	// Show status message if recent
	if msg, isErr, ok := m.status.Current(); ok {
		if n := m.status.Queued(); n > 0 {
			msg += fmt.Sprintf(" (+%d more)", n)
		}

		if isErr {
			return errorStatusStyle.Width(m.width).Render(msg)
		}

		return statusStyle.Width(m.width).Render(msg)
	}

	history := m.session.History()
	status := fmt.Sprintf("%d tracks | %s | %s | undo:%t redo:%t",
		m.session.Len(),
		m.activeLabel(),
		m.session.Transport().State(),
		history.CanUndo(),
		history.CanRedo(),
	)

	return statusStyle.Width(m.width).Render(status)
}

// helpEntry is one key hint in the help line
type helpEntry struct{ keys, desc string }

// renderHelp renders the help text
func (m model) renderHelp() string {
	if m.adding {
		return helpStyle.Render(" enter: add | esc: cancel | paths separated by spaces, quote or escape spaces in names")
	}

	bindings := []helpEntry{
		{keys.PlayPause.Help().Key, keys.PlayPause.Help().Desc},
	}

	// Only offer the skips that would do something
	switch next, prev := m.session.CanNext(), m.session.CanPrevious(); {
	case next && prev:
		bindings = append(bindings, helpEntry{"n/p", "next/prev"})
	case next:
		bindings = append(bindings, helpEntry{"n", "next"})
	case prev:
		bindings = append(bindings, helpEntry{"p", "prev"})
	}

	bindings = append(bindings, []helpEntry{
		{"←/→", "seek"},
		{"+/-", "volume"},
		{keys.Mute.Help().Key, keys.Mute.Help().Desc},
		{keys.Select.Help().Key, keys.Select.Help().Desc},
		{keys.Delete.Help().Key, "remove"},
		{"u/ctrl+r", "undo/redo"},
		{keys.Add.Help().Key, keys.Add.Help().Desc},
		{keys.Quit.Help().Key, keys.Quit.Help().Desc},
	}...)

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		parts = append(parts, b.keys+": "+b.desc)
	}

	return helpStyle.Render(" " + strings.Join(parts, " | "))
}
