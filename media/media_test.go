// ABOUTME: Tests for content type detection, decoding and duration probing
// ABOUTME: Uses generated WAV fixtures so no audio device is needed

package media_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"melodyflow/media"
	"melodyflow/media/mediatest"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}

	return path
}

func TestDetectContentType(t *testing.T) {
	dir := t.TempDir()

	tone := filepath.Join(dir, "tone.bin")
	if err := mediatest.WriteTone(tone, 8000, 0.5); err != nil {
		t.Fatalf("WriteTone failed: %v", err)
	}

	id3 := append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 64)...)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"wav by content", tone, media.TypeWAV},
		{"mp3 by id3 header", writeFile(t, dir, "noext", id3), media.TypeMP3},
		{"flac signature", writeFile(t, dir, "a.bin", append([]byte("fLaC"), make([]byte, 64)...)), media.TypeFLAC},
		{"ogg signature", writeFile(t, dir, "b.bin", append([]byte("OggS"), make([]byte, 64)...)), media.TypeOGG},
		{"mp3 by extension", writeFile(t, dir, "c.mp3", make([]byte, 16)), media.TypeMP3},
		{"plain text", writeFile(t, dir, "notes.txt", []byte("just some notes about the album\n")), "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := media.DetectContentType(tt.path)
			if err != nil {
				t.Fatalf("DetectContentType failed: %v", err)
			}

			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDetectContentTypeMissingFile(t *testing.T) {
	if _, err := media.DetectContentType(filepath.Join(t.TempDir(), "missing.mp3")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestIsAudio(t *testing.T) {
	if !media.IsAudio("audio/mpeg") {
		t.Error("audio/mpeg should be audio")
	}

	if media.IsAudio("text/plain") || media.IsAudio("") {
		t.Error("non-audio types should be rejected")
	}
}

func TestProbeWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := mediatest.WriteTone(path, 8000, 2); err != nil {
		t.Fatalf("WriteTone failed: %v", err)
	}

	uri, err := media.SourceURI(path)
	if err != nil {
		t.Fatalf("SourceURI failed: %v", err)
	}

	d, err := media.NewFileProber().Probe(context.Background(), uri)
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}

	if math.Abs(d-2) > 0.01 {
		t.Errorf("Expected ~2s, got %v", d)
	}
}

func TestOpenDecodesWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := mediatest.WriteTone(path, 8000, 1); err != nil {
		t.Fatalf("WriteTone failed: %v", err)
	}

	stream, format, err := media.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer stream.Close()

	if format.SampleRate != 8000 {
		t.Errorf("Expected 8000 Hz, got %d", format.SampleRate)
	}

	if stream.Len() != 8000 {
		t.Errorf("Expected 8000 samples, got %d", stream.Len())
	}
}

func TestProbeRejectsGarbage(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.mp3", []byte(strings.Repeat("not audio ", 20)))

	if _, err := media.NewFileProber().Probe(context.Background(), path); err == nil {
		t.Error("Expected probe of garbage to fail")
	}
}

func TestProbeUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "song.m4a", make([]byte, 32))

	_, err := media.NewFileProber().Probe(context.Background(), path)
	if !errors.Is(err, media.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestProbeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := media.NewFileProber().Probe(ctx, "/nowhere.mp3"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSourceURIRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "my song #1.mp3")

	uri, err := media.SourceURI(path)
	if err != nil {
		t.Fatalf("SourceURI failed: %v", err)
	}

	if !strings.HasPrefix(uri, "file://") {
		t.Errorf("Expected file:// uri, got %s", uri)
	}

	back, err := media.SourcePath(uri)
	if err != nil {
		t.Fatalf("SourcePath failed: %v", err)
	}

	if back != path {
		t.Errorf("Round trip mismatch: got %q, want %q", back, path)
	}

	if plain, _ := media.SourcePath("/plain/path.mp3"); plain != "/plain/path.mp3" {
		t.Errorf("Plain paths should pass through, got %q", plain)
	}
}
