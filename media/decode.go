// ABOUTME: Opens local audio files as seekable beep streams
// ABOUTME: Picks a decoder from the detected content type

package media

import (
	"fmt"
	"os"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Open decodes the file at path. The returned streamer owns the file and
// closes it on Close.
func Open(path string) (beep.StreamSeekCloser, beep.Format, error) {
	contentType, err := DetectContentType(path)
	if err != nil {
		return nil, beep.Format{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)

	switch contentType {
	case TypeMP3:
		streamer, format, err = mp3.Decode(f)
	case TypeWAV:
		streamer, format, err = wav.Decode(f)
	case TypeFLAC:
		streamer, format, err = flac.Decode(f)
	case TypeOGG:
		streamer, format, err = vorbis.Decode(f)
	default:
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("%s (%s): %w", path, contentType, ErrUnsupportedFormat)
	}

	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return streamer, format, nil
}
