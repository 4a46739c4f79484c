// ABOUTME: Playback state machine bound to the active track
// ABOUTME: Drives one media handle and reconciles volume with mute state

// Package transport controls playback of the active track through a
// media.Handle. It owns play/pause state, seeking and volume; the caller
// decides which track is active.
package transport

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"melodyflow/media"
	"melodyflow/playlist"
)

// ErrNoTrack is returned by operations that need a bound track
var ErrNoTrack = errors.New("no active track")

// DefaultUnmuteVolume is restored on unmute when no audible level was ever set
const DefaultUnmuteVolume = 0.5

// State is the externally visible playback state
type State int

// Playback states
const (
	Idle    State = iota // No active track
	Paused               // Track loaded, output paused
	Playing              // Track loaded, output running
	Seeking              // User is dragging the position
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case Seeking:
		return "seeking"
	default:
		return "unknown"
	}
}

// Controller drives a media handle for the active track
type Controller struct {
	handle media.Handle
	logger *log.Logger

	track      *playlist.Track
	generation uint64 // Load generation of track; older events are ignored
	playing    bool
	position   float64
	duration   float64

	seeking   bool
	seekValue float64

	volume      float64
	muted       bool
	lastAudible float64 // Last non-zero volume
}

// New creates an idle controller at the given volume
func New(handle media.Handle, volume float64, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	c := &Controller{
		handle:   handle,
		logger:   logger,
		duration: math.NaN(),
	}

	c.SetVolume(volume)

	return c
}

// State returns the current playback state
func (c *Controller) State() State {
	switch {
	case c.track == nil:
		return Idle
	case c.seeking:
		return Seeking
	case c.playing:
		return Playing
	default:
		return Paused
	}
}

// Bind makes t the active track. Binding the already bound id only
// refreshes its descriptor. A new track is loaded paused and resumes if
// the previous one was playing. A nil track unloads the handle. Only load
// failures are returned.
func (c *Controller) Bind(t *playlist.Track) error {
	if t == nil {
		if c.track != nil {
			c.handle.Unload()
		}

		c.track = nil
		c.playing = false
		c.seeking = false
		c.position = 0
		c.duration = math.NaN()

		return nil
	}

	if c.track != nil && c.track.ID == t.ID {
		tr := *t
		c.track = &tr

		if math.IsNaN(c.duration) {
			c.duration = t.Duration
		}

		return nil
	}

	wasPlaying := c.playing

	tr := *t
	c.track = &tr
	c.playing = false
	c.seeking = false
	c.position = 0
	c.duration = t.Duration

	gen, err := c.handle.Load(t.Source)
	c.generation = gen

	if err != nil {
		c.logger.Error("failed to load track", "track", t.Name, "err", err)
		return fmt.Errorf("failed to load %s: %w", t.Name, err)
	}

	if d := c.handle.Duration(); !math.IsNaN(d) {
		c.duration = d
	}

	c.logger.Debug("bound track", "track", t.Name, "generation", gen, "resume", wasPlaying)

	// Play failures are logged and leave the track paused
	if wasPlaying {
		_ = c.Play()
	}

	return nil
}

// Play starts output. A failure leaves the controller paused.
func (c *Controller) Play() error {
	if c.track == nil {
		return ErrNoTrack
	}

	if err := c.handle.Play(); err != nil {
		c.playing = false
		c.logger.Error("playback failed", "track", c.track.Name, "err", err)

		return fmt.Errorf("failed to play %s: %w", c.track.Name, err)
	}

	c.playing = true

	return nil
}

// Pause stops output, keeping the position
func (c *Controller) Pause() {
	if c.track == nil {
		return
	}

	c.handle.Pause()
	c.playing = false
}

// Toggle switches between playing and paused
func (c *Controller) Toggle() error {
	if c.playing {
		c.Pause()
		return nil
	}

	return c.Play()
}

// Restart moves to the start of the current track
func (c *Controller) Restart() {
	if c.track == nil {
		return
	}

	if err := c.handle.SetPosition(0); err != nil {
		c.logger.Warn("failed to restart track", "err", err)
	}

	c.position = 0
}

// Stop pauses and rewinds to the start
func (c *Controller) Stop() {
	c.Pause()
	c.Restart()
}

// Position returns the displayed position: the drag value while seeking,
// otherwise the last reported position
func (c *Controller) Position() float64 {
	if c.seeking {
		return c.seekValue
	}

	return c.position
}

// Elapsed returns the live position of the handle
func (c *Controller) Elapsed() float64 {
	if c.track == nil {
		return 0
	}

	return c.handle.Position()
}

// Duration returns the bound track length, NaN if unknown
func (c *Controller) Duration() float64 {
	return c.duration
}

// HasDuration reports whether the bound track length is known
func (c *Controller) HasDuration() bool {
	return !math.IsNaN(c.duration) && !math.IsInf(c.duration, 0) && c.duration > 0
}

// BeginSeek enters seek mode at the current position
func (c *Controller) BeginSeek() {
	if c.track == nil || c.seeking {
		return
	}

	c.seeking = true
	c.seekValue = c.position
}

// DragSeek updates the drag value, entering seek mode if needed
func (c *Controller) DragSeek(seconds float64) {
	if c.track == nil {
		return
	}

	c.BeginSeek()
	c.seekValue = c.clampPosition(seconds)
}

// CommitSeek applies the drag value and leaves seek mode
func (c *Controller) CommitSeek() error {
	if !c.seeking {
		return nil
	}

	c.seeking = false
	c.position = c.seekValue

	if err := c.handle.SetPosition(c.seekValue); err != nil {
		c.logger.Warn("seek failed", "position", c.seekValue, "err", err)
		return fmt.Errorf("seek failed: %w", err)
	}

	return nil
}

// CancelSeek leaves seek mode without moving
func (c *Controller) CancelSeek() {
	c.seeking = false
}

func (c *Controller) clampPosition(seconds float64) float64 {
	if math.IsNaN(seconds) || seconds < 0 {
		return 0
	}

	if d := c.duration; !math.IsNaN(d) && !math.IsInf(d, 0) && seconds > d {
		return d
	}

	return seconds
}

// HandleEvent applies a media notification and reports whether the bound
// track ended. Events from earlier loads are ignored.
func (c *Controller) HandleEvent(ev media.Event) bool {
	if c.track == nil || ev.Generation != c.generation {
		return false
	}

	switch ev.Kind {
	case media.TimeUpdated:
		if !c.seeking {
			c.position = ev.Position
		}

		if !math.IsNaN(ev.Duration) && ev.Duration > 0 {
			c.duration = ev.Duration
		}
	case media.DurationKnown:
		c.duration = ev.Duration
	case media.Ended:
		if !math.IsNaN(c.duration) {
			c.position = c.duration
		}

		return true
	}

	return false
}

// Volume returns the volume setting, independent of mute
func (c *Controller) Volume() float64 {
	return c.volume
}

// Muted reports the mute state
func (c *Controller) Muted() bool {
	return c.muted
}

// DisplayVolume returns the effective output level
func (c *Controller) DisplayVolume() float64 {
	if c.muted {
		return 0
	}

	return c.volume
}

// SetVolume sets the volume in [0,1]. Zero mutes; anything above unmutes.
func (c *Controller) SetVolume(v float64) {
	switch {
	case math.IsNaN(v), v < 0:
		v = 0
	case v > 1:
		v = 1
	}

	c.volume = v

	if v > 0 {
		c.lastAudible = v
		c.muted = false
	} else {
		c.muted = true
	}

	c.reconcile()
}

// ToggleMute mutes, or restores the last audible volume
func (c *Controller) ToggleMute() {
	if c.muted {
		c.muted = false

		if c.volume == 0 {
			c.volume = c.lastAudible
			if c.volume == 0 {
				c.volume = DefaultUnmuteVolume
			}
		}
	} else {
		c.muted = true
	}

	c.reconcile()
}

// reconcile pushes the effective level to the handle after any change
func (c *Controller) reconcile() {
	if !c.muted && c.volume == 0 {
		c.muted = true
	}

	c.handle.SetVolume(c.DisplayVolume())
}
