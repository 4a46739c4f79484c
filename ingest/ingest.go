// ABOUTME: Turns user-selected files into track descriptors
// ABOUTME: Probes durations concurrently and joins on all before returning a batch

// Package ingest converts selected local files into playlist tracks.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"melodyflow/media"
	"melodyflow/playlist"
	"melodyflow/pool"
)

// ErrNoAudioFiles is returned when a selection contains no audio files
var ErrNoAudioFiles = errors.New("no audio files selected")

// File is a handle to one user-selected file
type File struct {
	Name        string // Base file name
	ContentType string // MIME type, empty if unknown
	Source      string // file:// URI
	Err         error  // Set when the path could not be read
}

// Failure records a file that could not be turned into a track
type Failure struct {
	Name string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %v", f.Name, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Batch is the settled result of one ingestion
type Batch struct {
	Tracks   []playlist.Track // Successes, in selection order
	Failures []Failure        // In selection order
}

// Ingester builds tracks from files
type Ingester struct {
	pool   *pool.WorkerPool
	prober media.Prober
	logger *log.Logger
	newID  func() string
}

// New creates an ingester probing on the given pool
func New(p *pool.WorkerPool, prober media.Prober, logger *log.Logger) *Ingester {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Ingester{
		pool:   p,
		prober: prober,
		logger: logger,
		newID:  uuid.NewString,
	}
}

type probeResult struct {
	duration float64
	err      error
}

// Ingest filters files to audio types, probes each one and returns the
// batch once every probe has settled. Unreadable files become failures as
// long as at least one audio file remains. A cancelled context discards the
// whole batch.
func (in *Ingester) Ingest(ctx context.Context, files []File) (Batch, error) {
	var (
		accepted []File
		audio    int
	)

	for _, f := range files {
		switch {
		case f.Err != nil:
			accepted = append(accepted, f)
		case media.IsAudio(f.ContentType):
			accepted = append(accepted, f)
			audio++
		default:
			in.logger.Debug("skipping non-audio file", "name", f.Name, "type", f.ContentType)
		}
	}

	if audio == 0 {
		return Batch{}, ErrNoAudioFiles
	}

	results := make([]probeResult, len(accepted))
	g := in.pool.Group()

	for i, f := range accepted {
		if f.Err != nil {
			results[i] = probeResult{err: f.Err}
			continue
		}

		g.Submit(func() {
			d, err := in.prober.Probe(ctx, f.Source)
			results[i] = probeResult{duration: d, err: err}
		})
	}

	g.Wait()

	if err := ctx.Err(); err != nil {
		in.logger.Info("ingestion cancelled", "files", len(accepted))
		return Batch{}, err
	}

	var batch Batch

	for i, f := range accepted {
		r := results[i]
		if r.err != nil {
			in.logger.Warn("failed to load file", "name", f.Name, "err", r.err)
			batch.Failures = append(batch.Failures, Failure{Name: f.Name, Err: r.err})
			continue
		}

		if r.duration < 0 || math.IsInf(r.duration, 0) {
			r.duration = math.NaN()
		}

		batch.Tracks = append(batch.Tracks, playlist.Track{
			ID:       in.newID(),
			Name:     playlist.DisplayName(f.Name),
			Source:   f.Source,
			Duration: r.duration,
		})
	}

	in.logger.Debug("ingested batch", "tracks", len(batch.Tracks), "failures", len(batch.Failures))

	return batch, nil
}
