// ABOUTME: End-to-end tests for the headless commands
// ABOUTME: Runs the command tree against temporary config, library and audio files

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"melodyflow/config"
	"melodyflow/media/mediatest"
)

// testLibrary holds the paths used by one test
type testLibrary struct {
	configPath string
	musicDir   string
}

func newTestLibrary(t *testing.T, backend string) testLibrary {
	t.Helper()

	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Library.Backend = backend
	cfg.Library.Path = filepath.Join(dir, "library", "tracks."+backend)
	cfg.Log.Path = filepath.Join(dir, "melodyflow.log")

	configPath := filepath.Join(dir, "config.toml")
	if err := config.SaveConfig(configPath, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	music := filepath.Join(dir, "music")
	if err := os.MkdirAll(music, 0o755); err != nil {
		t.Fatal(err)
	}

	return testLibrary{configPath: configPath, musicDir: music}
}

// run executes one command line and returns its output
func (l testLibrary) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	app := newApp(NewRunner(RunnerOpts{Output: &out}))
	argv := append([]string{"melodyflow", "--config", l.configPath, "--env-file", ""}, args...)

	err := app.Run(context.Background(), argv)

	return out.String(), err
}

func (l testLibrary) writeTone(t *testing.T, name string, seconds float64) string {
	t.Helper()

	path := filepath.Join(l.musicDir, name)
	if err := mediatest.WriteTone(path, 8000, seconds); err != nil {
		t.Fatalf("WriteTone failed: %v", err)
	}

	return path
}

func TestAddListRemoveClear(t *testing.T) {
	lib := newTestLibrary(t, config.BackendJSON)
	lib.writeTone(t, "first.wav", 1)
	lib.writeTone(t, "second.wav", 2)

	if err := os.WriteFile(filepath.Join(lib.musicDir, "notes.txt"), []byte("not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := lib.run(t, "add", lib.musicDir)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if !strings.Contains(out, "✓ Added 2 tracks") {
		t.Errorf("Unexpected add output: %q", out)
	}

	out, err = lib.run(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	for _, want := range []string{"first", "second", "0:01", "0:02", filepath.Join(lib.musicDir, "first.wav")} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "file://") {
		t.Errorf("FILE column should show plain paths:\n%s", out)
	}

	out, err = lib.run(t, "remove", "1")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if !strings.Contains(out, "✓ Track removed") {
		t.Errorf("Unexpected remove output: %q", out)
	}

	out, _ = lib.run(t, "list")
	if strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("Expected only second after removal:\n%s", out)
	}

	if _, err := lib.run(t, "remove", "5"); err == nil {
		t.Error("Expected error removing a missing track")
	}

	out, err = lib.run(t, "clear")
	if err != nil || !strings.Contains(out, "Removed 1 tracks") {
		t.Errorf("clear: %q, %v", out, err)
	}

	out, _ = lib.run(t, "list")
	if !strings.Contains(out, "Playlist is empty") {
		t.Errorf("Expected empty playlist, got %q", out)
	}
}

func TestAddWithoutAudioFiles(t *testing.T) {
	lib := newTestLibrary(t, config.BackendJSON)

	path := filepath.Join(lib.musicDir, "readme.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := lib.run(t, "add", path)
	if err == nil {
		t.Fatal("Expected error")
	}

	if !strings.Contains(out, "✗ Please select valid audio files") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestAddReportsBrokenFiles(t *testing.T) {
	lib := newTestLibrary(t, config.BackendJSON)
	good := lib.writeTone(t, "good.wav", 1)

	broken := filepath.Join(lib.musicDir, "broken.mp3")
	if err := os.WriteFile(broken, []byte("ID3 truncated"), 0o644); err != nil {
		t.Fatal(err)
	}

	missing := filepath.Join(lib.musicDir, "typo.wav")

	out, err := lib.run(t, "add", good, broken, missing)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}

	for _, want := range []string{"✗ Failed to load: broken.mp3", "✗ Failed to load: typo.wav"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q, got %q", want, out)
		}
	}

	if !strings.Contains(out, "✓ Added 1 track\n") {
		t.Errorf("Expected singular success line, got %q", out)
	}
}

func TestSQLiteBackendPersists(t *testing.T) {
	lib := newTestLibrary(t, config.BackendSQLite)
	tone := lib.writeTone(t, "stored.wav", 1)

	if _, err := lib.run(t, "add", tone); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	out, err := lib.run(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if !strings.Contains(out, "stored") {
		t.Errorf("Expected stored track, got %q", out)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	lib := newTestLibrary(t, config.BackendJSON)

	if _, err := lib.run(t, "--backend", "tape", "list"); err == nil {
		t.Error("Expected invalid backend error")
	}

	other := filepath.Join(t.TempDir(), "other.json")
	tone := lib.writeTone(t, "elsewhere.wav", 1)

	if _, err := lib.run(t, "--library", other, "add", tone); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if _, err := os.Stat(other); err != nil {
		t.Errorf("Expected library written to flag path: %v", err)
	}

	out, _ := lib.run(t, "list")
	if !strings.Contains(out, "Playlist is empty") {
		t.Errorf("Configured library should be untouched, got %q", out)
	}
}

func TestRemoveRejectsBadNumber(t *testing.T) {
	lib := newTestLibrary(t, config.BackendJSON)

	for _, arg := range []string{"abc", "0", ""} {
		if _, err := lib.run(t, "remove", arg); err == nil {
			t.Errorf("Expected error for %q", arg)
		}
	}
}
