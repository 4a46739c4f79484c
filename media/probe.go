// ABOUTME: Duration discovery for local audio files without playback
// ABOUTME: Reads WAV headers directly and falls back to decoding stream length

package media

import (
	"context"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// FileProber probes local files referenced by path or file:// URI
type FileProber struct{}

// NewFileProber creates a prober for local files
func NewFileProber() *FileProber {
	return &FileProber{}
}

// Probe returns the duration of source in seconds
func (p *FileProber) Probe(ctx context.Context, source string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path, err := SourcePath(source)
	if err != nil {
		return 0, err
	}

	contentType, err := DetectContentType(path)
	if err != nil {
		return 0, err
	}

	if contentType == TypeWAV {
		if d, err := probeWAV(path); err == nil {
			return d, nil
		}
	}

	streamer, format, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer streamer.Close()

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := streamer.Len()
	if n <= 0 || format.SampleRate <= 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownDuration)
	}

	return format.SampleRate.D(n).Seconds(), nil
}

func probeWAV(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	d, err := dec.Duration()
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s: %w", path, ErrUnknownDuration)
	}

	return d.Seconds(), nil
}
