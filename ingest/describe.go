// ABOUTME: Builds file handles from command line or prompt paths
// ABOUTME: Expands directories one level and detects each file's content type

package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"melodyflow/media"
)

// Describe builds file handles for paths. Directories contribute their
// regular files (not recursive) in name order. A path that cannot be read
// yields a handle carrying Err, which Ingest reports as a failure without
// dropping the rest of the selection.
func Describe(paths []string) []File {
	var files []File

	for _, p := range paths {
		p = expandHome(strings.TrimSpace(p))
		if p == "" {
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			files = append(files, unreadable(p, fmt.Errorf("cannot read %s: %w", p, err)))
			continue
		}

		if !info.IsDir() {
			files = append(files, describeFile(p))
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			files = append(files, unreadable(p, fmt.Errorf("cannot list %s: %w", p, err)))
			continue
		}

		for _, e := range entries {
			if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
				continue
			}

			files = append(files, describeFile(filepath.Join(p, e.Name())))
		}
	}

	return files
}

func describeFile(path string) File {
	source, err := media.SourceURI(path)
	if err != nil {
		return unreadable(path, err)
	}

	// Unreadable content leaves the type empty and Ingest filters it out
	contentType, err := media.DetectContentType(path)
	if err != nil {
		contentType = ""
	}

	return File{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Source:      source,
	}
}

func unreadable(path string, err error) File {
	return File{Name: filepath.Base(path), Err: err}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
