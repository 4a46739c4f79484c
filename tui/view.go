// ABOUTME: Rendering entry point for the TUI
// ABOUTME: Implements the Bubble Tea View() function and the now-playing card

package tui

import (
	"fmt"
	"math"
	"runtime/debug"
	"strings"

	"melodyflow/player"
	"melodyflow/transport"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("view panic", "panic", r, "stack", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Bye!\n"
	}

	if m.width == 0 {
		return "Loading...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ MelodyFlow"))
	b.WriteString("\n\n")
	b.WriteString(m.renderNowPlaying())
	b.WriteString(m.renderPlaylistHeader())
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// stateIcon returns the transport glyph for the card
func stateIcon(s transport.State) string {
	switch s {
	case transport.Playing:
		return "▶"
	case transport.Paused:
		return "⏸"
	case transport.Seeking:
		return "⇆"
	default:
		return "■"
	}
}

// renderNowPlaying renders the active track card, always nowPlayingLines tall
func (m model) renderNowPlaying() string {
	track, ok := m.session.ActiveTrack()
	if !ok {
		return dimStyle.Render("No track selected") + "\n" +
			dimStyle.Render("Press a to add audio files") + "\n\n\n\n"
	}

	ctrl := m.session.Transport()
	pos, dur := ctrl.Position(), ctrl.Duration()

	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n",
		stateIcon(ctrl.State()),
		trackNameStyle.Render(truncate(track.Name, max(m.width-4, 1))))

	fmt.Fprintf(&b, "%s\n", dimStyle.Render(
		fmt.Sprintf("Track %d of %d · %s", m.session.Active()+1, m.session.Len(), ctrl.State())))

	fmt.Fprintf(&b, "%s %s %s\n",
		transport.FormatTime(pos),
		m.progress.ViewAs(transport.Progress(pos, dur)),
		transport.FormatTime(dur))

	b.WriteString(m.renderVolume())
	b.WriteString("\n\n")

	return b.String()
}

// renderVolume renders the volume bar with its percentage
func (m model) renderVolume() string {
	ctrl := m.session.Transport()
	vol := ctrl.DisplayVolume()

	line := fmt.Sprintf("Vol %s %3d%%", m.volumeBar.ViewAs(vol), int(math.Round(vol*100)))
	if ctrl.Muted() {
		line += dimStyle.Render(" (muted)")
	}

	return line
}

// renderInput renders the add-files prompt when open
func (m model) renderInput() string {
	if !m.adding {
		return ""
	}

	return m.input.View()
}

// activeLabel describes the active position for the status bar
func (m model) activeLabel() string {
	if m.session.Active() == player.NoActive {
		return "nothing playing"
	}

	return fmt.Sprintf("track %d/%d", m.session.Active()+1, m.session.Len())
}
