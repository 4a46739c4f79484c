// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model wiring the player session to keys, media events and ingestion

// Package tui provides the interactive terminal player.
package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"melodyflow/ingest"
	"melodyflow/media"
	"melodyflow/player"
)

// Layout constants for UI dimensions
const (
	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 2 // App title and spacing
	nowPlayingLines = 5 // Track card, progress, volume, spacing
	headerHeight    = 2 // Playlist title and column headers
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	inputHeight     = 1 // Add-files prompt line
	totalUIChrome   = titleHeight + nowPlayingLines + headerHeight + statusBarHeight + helpHeight + inputHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 30
	minViewportHeight = 3

	// Now-playing card widths
	timeColumnsWidth = 16 // Two timestamps and separators around the progress bar
	minProgressWidth = 10
	volumeBarWidth   = 20
)

// Navigation and interaction constants
const (
	pageJumpSize          = 10                     // Number of tracks to jump on PageUp/PageDown
	statusMessageDuration = 5 * time.Second        // How long to show transient status messages
	seekCommitDelay       = 500 * time.Millisecond // Idle time after the last scrub key before seeking
)

// model holds the TUI state
type model struct {
	// Dependencies
	session    *player.Session
	ingester   Ingester
	describe   func([]string) []ingest.File
	events     <-chan media.Event
	inbox      InboxWatcher
	status     *StatusBoard
	saveVolume func(float64) error
	logger     *log.Logger
	opts       Options

	// Framework exception: Bubble Tea owns the model lifecycle, so the
	// context that cancels in-flight ingestion lives in the struct.
	ctx    context.Context //nolint:containedctx // See above
	cancel context.CancelFunc

	// UI state
	width     int
	height    int
	quitting  bool
	ingesting int // Batches in flight

	// Playlist browsing
	cursorPos int
	viewport  viewport.Model

	// Transport widgets
	progress  progress.Model
	volumeBar progress.Model
	seekSeq   int // Latest scrub key press; older commit ticks are ignored

	// Add-files prompt
	input  textinput.Model
	adding bool
}

// Key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Home      key.Binding
	End       key.Binding
	Select    key.Binding
	Delete    key.Binding
	Undo      key.Binding
	Redo      key.Binding
	PlayPause key.Binding
	Next      key.Binding
	Previous  key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	VolUp     key.Binding
	VolDown   key.Binding
	Mute      key.Binding
	Add       key.Binding
	Cancel    key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "navigate"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "navigate"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown"),
		key.WithHelp("pgdn", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("home", "g"),
		key.WithHelp("home/g", "first track"),
	),
	End: key.NewBinding(
		key.WithKeys("end", "G"),
		key.WithHelp("end/G", "last track"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play track"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "delete"),
		key.WithHelp("d", "remove track"),
	),
	Undo: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "redo"),
	),
	PlayPause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "play/pause"),
	),
	Next: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "next"),
	),
	Previous: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "previous"),
	),
	SeekBack: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "seek back"),
	),
	SeekFwd: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "seek forward"),
	),
	VolUp: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "volume up"),
	),
	VolDown: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "volume down"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mute"),
	),
	Add: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "add files"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	trackNameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	playlistHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("10"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	errorStatusStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("15")).
				Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Run starts the terminal player with injected dependencies
func Run(opts Options, deps Dependencies) error {
	m := initModel(opts, deps)

	p := tea.NewProgram(m, tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if fm, ok := finalModel.(model); ok {
		fm.cancel()
	}

	return nil
}

// initModel creates the initial model with injected dependencies
func initModel(opts Options, deps Dependencies) model {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	describe := deps.Describe
	if describe == nil {
		describe = ingest.Describe
	}

	status := deps.Status
	if status == nil {
		status = NewStatusBoard()
	}

	if opts.VolumeStep <= 0 {
		opts.VolumeStep = 0.05
	}

	if opts.SeekStep <= 0 {
		opts.SeekStep = 5
	}

	ctx, cancel := context.WithCancel(context.Background())

	input := textinput.New()
	input.Prompt = "Add: "
	input.Placeholder = "paths to audio files or folders"

	m := model{
		session:    deps.Session,
		ingester:   deps.Ingester,
		describe:   describe,
		events:     deps.Events,
		inbox:      deps.Inbox,
		status:     status,
		saveVolume: deps.SaveVolume,
		logger:     logger,
		opts:       opts,

		ctx:    ctx,
		cancel: cancel,

		viewport:  viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		volumeBar: progress.New(progress.WithSolidFill("12"), progress.WithoutPercentage()),
		input:     input,
	}

	m.volumeBar.Width = volumeBarWidth

	if a := m.session.Active(); a != player.NoActive {
		m.cursorPos = a
	}

	return m
}

// Init starts listening for media events, the inbox and startup paths
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForMediaEvent(m.events),
		waitForInbox(m.ctx, m.inbox),
	}

	if len(m.opts.Paths) > 0 {
		cmds = append(cmds, m.startIngest(m.opts.Paths))
	}

	return tea.Batch(cmds...)
}

// ========== Helpers ==========

// truncate shortens a string to maxLen runes, adding "..." if truncated
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return string(r[:maxLen])
	}

	return string(r[:maxLen-3]) + "..."
}

// setStatusMsg shows a transient informational message
func (m *model) setStatusMsg(msg string) {
	m.status.Success(msg)
}

// ensureCursorVisible adjusts viewport offset to keep cursor visible with middle-of-screen scrolling
func (m *model) ensureCursorVisible() {
	m.viewport.SetYOffset(scrollOffset(m.viewport.Height, m.cursorPos, m.session.Len()))
}

// clampCursor keeps the cursor inside the playlist
func (m *model) clampCursor() {
	n := m.session.Len()

	switch {
	case n == 0:
		m.cursorPos = 0
	case m.cursorPos >= n:
		m.cursorPos = n - 1
	case m.cursorPos < 0:
		m.cursorPos = 0
	}
}

// refreshPlaylist re-renders the playlist after any change
func (m *model) refreshPlaylist() {
	m.clampCursor()
	m.updateViewportContent()
}
