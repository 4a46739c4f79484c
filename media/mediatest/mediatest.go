// ABOUTME: Scripted media fakes for exercising playback logic without audio output
// ABOUTME: Provides a recording Handle, a table-driven Prober and WAV fixture writer

// Package mediatest provides fakes for the media package interfaces.
package mediatest

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"melodyflow/media"
)

// ErrPlayRejected is the default failure returned when PlayErr is set
var ErrPlayRejected = errors.New("playback rejected")

// Handle is an in-memory media.Handle that records calls
type Handle struct {
	mu sync.Mutex

	// Durations maps a source to the duration reported after Load
	Durations map[string]float64
	// LoadErrs maps a source to the error Load returns
	LoadErrs map[string]error
	// PlayErr is returned by every Play call when set
	PlayErr error

	source     string
	generation uint64
	playing    bool
	position   float64
	volume     float64
	calls      []string
	events     chan media.Event
}

// NewHandle creates a fake handle at full volume
func NewHandle() *Handle {
	return &Handle{
		Durations: make(map[string]float64),
		LoadErrs:  make(map[string]error),
		volume:    1,
		events:    make(chan media.Event, 64),
	}
}

func (h *Handle) record(format string, args ...any) {
	h.calls = append(h.calls, fmt.Sprintf(format, args...))
}

// Load implements media.Handle
func (h *Handle) Load(source string) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("load %s", source)
	h.generation++
	h.playing = false
	h.position = 0
	h.source = ""

	if err := h.LoadErrs[source]; err != nil {
		return h.generation, err
	}

	h.source = source

	return h.generation, nil
}

// Unload implements media.Handle
func (h *Handle) Unload() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("unload")
	h.source = ""
	h.playing = false
	h.position = 0
}

// Play implements media.Handle
func (h *Handle) Play() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("play")

	if h.source == "" {
		return media.ErrNotLoaded
	}

	if h.PlayErr != nil {
		return h.PlayErr
	}

	h.playing = true

	return nil
}

// Pause implements media.Handle
func (h *Handle) Pause() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("pause")
	h.playing = false
}

// Position implements media.Handle
func (h *Handle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.position
}

// SetPosition implements media.Handle
func (h *Handle) SetPosition(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.record("seek %.2f", seconds)

	if h.source == "" {
		return media.ErrNotLoaded
	}

	h.position = seconds

	return nil
}

// Volume implements media.Handle
func (h *Handle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.volume
}

// SetVolume implements media.Handle
func (h *Handle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.volume = v
}

// Duration implements media.Handle
func (h *Handle) Duration() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	if d, ok := h.Durations[h.source]; ok && h.source != "" {
		return d
	}

	return math.NaN()
}

// Events implements media.Handle
func (h *Handle) Events() <-chan media.Event {
	return h.events
}

// Close implements media.Handle
func (h *Handle) Close() error {
	return nil
}

// Source returns the loaded source, empty if none
func (h *Handle) Source() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.source
}

// Playing reports whether output is running
func (h *Handle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.playing
}

// Generation returns the generation of the latest Load
func (h *Handle) Generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.generation
}

// Calls returns the recorded call log
func (h *Handle) Calls() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.calls...)
}

// ResetCalls clears the call log
func (h *Handle) ResetCalls() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.calls = nil
}

// Advance moves the position as if playback progressed and returns the
// matching TimeUpdated event
func (h *Handle) Advance(seconds float64) media.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.position = seconds

	return media.Event{Kind: media.TimeUpdated, Generation: h.generation, Position: seconds}
}

// End stops output as if the media finished and returns the Ended event
func (h *Handle) End() media.Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.playing = false

	return media.Event{Kind: media.Ended, Generation: h.generation}
}

// Emit queues an event on the notification channel
func (h *Handle) Emit(ev media.Event) {
	h.events <- ev
}

// Prober is a table-driven media.Prober
type Prober struct {
	mu sync.Mutex

	Durations map[string]float64
	Errs      map[string]error
	// OnProbe runs before each probe
	OnProbe func(source string)

	probed []string
}

// NewProber creates a prober with empty tables
func NewProber() *Prober {
	return &Prober{
		Durations: make(map[string]float64),
		Errs:      make(map[string]error),
	}
}

// Probe implements media.Prober
func (p *Prober) Probe(ctx context.Context, source string) (float64, error) {
	if p.OnProbe != nil {
		p.OnProbe(source)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.probed = append(p.probed, source)

	if err := p.Errs[source]; err != nil {
		return 0, err
	}

	if d, ok := p.Durations[source]; ok {
		return d, nil
	}

	return math.NaN(), nil
}

// Probed returns the sources probed so far
func (p *Prober) Probed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.probed...)
}

// WriteTone writes a mono 16-bit PCM WAV file of the given length
func WriteTone(path string, sampleRate int, seconds float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n := int(float64(sampleRate) * seconds)
	data := make([]int, n)

	for i := range data {
		data[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return err
	}

	return enc.Close()
}
