// ABOUTME: Handle implementation that plays decoded files on the system speaker
// ABOUTME: Mixes one stream at a time and reports progress on a ticker

package media

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
)

const (
	defaultSampleRate = beep.SampleRate(44100)
	tickInterval      = 250 * time.Millisecond
	eventBuffer       = 32
	resampleQuality   = 4
)

// loaded is the stream currently bound to the speaker
type loaded struct {
	generation uint64
	source     string
	stream     beep.StreamSeekCloser
	format     beep.Format
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	queued     bool // Present in the speaker mixer
}

// SpeakerHandle plays one source at a time through the speaker
type SpeakerHandle struct {
	sampleRate beep.SampleRate
	logger     *log.Logger

	initOnce sync.Once
	initErr  error

	// mu guards the fields below. When both locks are needed mu is taken
	// before the speaker lock.
	mu         sync.Mutex
	cur        *loaded
	generation uint64
	volume     float64
	playing    bool

	events    chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// NewSpeakerHandle creates a handle mixing at sampleRate. The speaker is
// opened lazily on first Play.
func NewSpeakerHandle(sampleRate int, logger *log.Logger) *SpeakerHandle {
	sr := beep.SampleRate(sampleRate)
	if sr <= 0 {
		sr = defaultSampleRate
	}

	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := &SpeakerHandle{
		sampleRate: sr,
		logger:     logger,
		volume:     1,
		events:     make(chan Event, eventBuffer),
		done:       make(chan struct{}),
	}

	go h.tick()

	return h
}

// Events returns the notification channel
func (h *SpeakerHandle) Events() <-chan Event {
	return h.events
}

// Load binds source, replacing anything previously loaded
func (h *SpeakerHandle) Load(source string) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unloadLocked()
	h.generation++
	gen := h.generation

	path, err := SourcePath(source)
	if err != nil {
		return gen, err
	}

	stream, format, err := Open(path)
	if err != nil {
		return gen, err
	}

	var s beep.Streamer = stream
	if format.SampleRate != h.sampleRate {
		s = beep.Resample(resampleQuality, format.SampleRate, h.sampleRate, stream)
	}

	ctrl := &beep.Ctrl{Streamer: s, Paused: true}
	vol := &effects.Volume{Streamer: ctrl, Base: 2}
	applyVolume(vol, h.volume)

	h.cur = &loaded{
		generation: gen,
		source:     source,
		stream:     stream,
		format:     format,
		ctrl:       ctrl,
		volume:     vol,
	}

	h.logger.Debug("loaded source", "source", source, "generation", gen, "rate", format.SampleRate)

	if d := h.durationLocked(); !math.IsNaN(d) {
		h.emit(Event{Kind: DurationKnown, Generation: gen, Duration: d})
	}

	return gen, nil
}

// Unload releases the current source
func (h *SpeakerHandle) Unload() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.unloadLocked()
}

func (h *SpeakerHandle) unloadLocked() {
	if h.cur == nil {
		return
	}

	speaker.Clear()

	if err := h.cur.stream.Close(); err != nil {
		h.logger.Warn("failed to close stream", "source", h.cur.source, "err", err)
	}

	h.cur = nil
	h.playing = false
}

// Play starts or resumes output
func (h *SpeakerHandle) Play() error {
	if err := h.initSpeaker(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cur == nil {
		return ErrNotLoaded
	}

	cur := h.cur

	speaker.Lock()
	cur.ctrl.Paused = false
	speaker.Unlock()

	if !cur.queued {
		cur.queued = true
		gen := cur.generation

		// The callback runs with the speaker locked
		speaker.Play(beep.Seq(cur.volume, beep.Callback(func() {
			go h.finished(gen)
		})))
	}

	h.playing = true

	return nil
}

// Pause suspends output, keeping the position
func (h *SpeakerHandle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cur == nil {
		return
	}

	speaker.Lock()
	h.cur.ctrl.Paused = true
	speaker.Unlock()

	h.playing = false
}

// Position returns the playback position in seconds
func (h *SpeakerHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.positionLocked()
}

func (h *SpeakerHandle) positionLocked() float64 {
	if h.cur == nil {
		return 0
	}

	speaker.Lock()
	pos := h.cur.stream.Position()
	speaker.Unlock()

	return h.cur.format.SampleRate.D(pos).Seconds()
}

// SetPosition seeks, clamping to the stream bounds
func (h *SpeakerHandle) SetPosition(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cur == nil {
		return ErrNotLoaded
	}

	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	n := h.cur.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if length := h.cur.stream.Len(); length > 0 && n >= length {
		n = length - 1
	}

	speaker.Lock()
	err := h.cur.stream.Seek(n)
	speaker.Unlock()

	return err
}

// Volume returns the linear gain in [0,1]
func (h *SpeakerHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.volume
}

// SetVolume sets the linear gain, clamped to [0,1]
func (h *SpeakerHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.volume = clamp01(v)

	if h.cur != nil {
		speaker.Lock()
		applyVolume(h.cur.volume, h.volume)
		speaker.Unlock()
	}
}

// Duration returns the loaded stream length in seconds, NaN if unknown
func (h *SpeakerHandle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.durationLocked()
}

func (h *SpeakerHandle) durationLocked() float64 {
	if h.cur == nil {
		return math.NaN()
	}

	n := h.cur.stream.Len()
	if n <= 0 {
		return math.NaN()
	}

	return h.cur.format.SampleRate.D(n).Seconds()
}

// Close stops the ticker and releases the current source
func (h *SpeakerHandle) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.Unload()
	})

	return nil
}

func (h *SpeakerHandle) initSpeaker() error {
	h.initOnce.Do(func() {
		if err := speaker.Init(h.sampleRate, h.sampleRate.N(time.Second/10)); err != nil {
			h.initErr = err
			h.logger.Error("failed to open speaker", "err", err)
		}
	})

	if h.initErr != nil {
		return ErrSpeakerUnavailable
	}

	return nil
}

// finished runs after a stream drains naturally
func (h *SpeakerHandle) finished(gen uint64) {
	h.mu.Lock()
	if h.cur == nil || h.cur.generation != gen {
		h.mu.Unlock()
		return
	}

	h.cur.queued = false
	h.playing = false
	h.mu.Unlock()

	// Ended is never dropped
	select {
	case h.events <- Event{Kind: Ended, Generation: gen}:
	case <-h.done:
	}
}

func (h *SpeakerHandle) tick() {
	t := time.NewTicker(tickInterval)
	defer t.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-t.C:
			h.mu.Lock()
			if h.cur != nil && h.playing {
				h.emit(Event{
					Kind:       TimeUpdated,
					Generation: h.cur.generation,
					Position:   h.positionLocked(),
					Duration:   h.durationLocked(),
				})
			}
			h.mu.Unlock()
		}
	}
}

// emit drops the event when the consumer is behind
func (h *SpeakerHandle) emit(ev Event) {
	select {
	case h.events <- ev:
	default:
	}
}

func applyVolume(v *effects.Volume, gain float64) {
	if gain <= 0 {
		v.Silent = true
		return
	}

	v.Silent = false
	v.Volume = math.Log2(gain)
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
