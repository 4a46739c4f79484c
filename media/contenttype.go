// ABOUTME: Detects the content type of local audio files
// ABOUTME: Uses tag container identification, falling back to byte sniffing and extensions

package media

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Content types understood by the decoders
const (
	TypeMP3  = "audio/mpeg"
	TypeWAV  = "audio/wav"
	TypeFLAC = "audio/flac"
	TypeOGG  = "audio/ogg"
	TypeMP4  = "audio/mp4"
)

var extensionTypes = map[string]string{
	".mp3":  TypeMP3,
	".wav":  TypeWAV,
	".wave": TypeWAV,
	".flac": TypeFLAC,
	".ogg":  TypeOGG,
	".oga":  TypeOGG,
	".m4a":  TypeMP4,
	".m4b":  TypeMP4,
	".aac":  "audio/aac",
	".opus": "audio/opus",
}

// IsAudio reports whether a content type names an audio format
func IsAudio(contentType string) bool {
	return strings.HasPrefix(contentType, "audio/")
}

// DetectContentType returns the MIME type of the file at path.
// Container signatures are trusted first, then sniffed bytes, then the
// file extension.
func DetectContentType(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, fileType, err := tag.Identify(f); err == nil {
		if ct := fileTypeContentType(fileType); ct != "" {
			return ct, nil
		}
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind %s: %w", path, err)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	sniffed := normalizeContentType(http.DetectContentType(head[:n]))
	if IsAudio(sniffed) {
		return sniffed, nil
	}

	if ct := extensionContentType(path); ct != "" {
		return ct, nil
	}

	return sniffed, nil
}

func fileTypeContentType(ft tag.FileType) string {
	switch ft {
	case tag.MP3:
		return TypeMP3
	case tag.FLAC:
		return TypeFLAC
	case tag.OGG:
		return TypeOGG
	case tag.M4A, tag.M4B, tag.M4P, tag.ALAC:
		return TypeMP4
	case tag.DSF:
		return "audio/dsf"
	default:
		return ""
	}
}

func extensionContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct, ok := extensionTypes[ext]; ok {
		return ct
	}

	return normalizeContentType(mime.TypeByExtension(ext))
}

// normalizeContentType drops parameters and folds aliases onto the
// canonical names used by the decoders
func normalizeContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}

	ct = strings.ToLower(strings.TrimSpace(ct))

	switch ct {
	case "application/ogg", "audio/vorbis", "audio/x-ogg":
		return TypeOGG
	case "audio/wave", "audio/x-wav", "audio/vnd.wave":
		return TypeWAV
	case "audio/mp3", "audio/x-mp3", "audio/mpeg3":
		return TypeMP3
	case "audio/x-flac":
		return TypeFLAC
	case "audio/x-m4a":
		return TypeMP4
	default:
		return ct
	}
}
