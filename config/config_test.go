// ABOUTME: Tests for configuration load/save and environment overrides
// ABOUTME: Validates TOML parsing, default fallback and .env handling

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Player.InitialVolume != 1.0 {
		t.Errorf("Expected InitialVolume 1.0, got %.2f", cfg.Player.InitialVolume)
	}

	if cfg.Library.Backend != BackendJSON {
		t.Errorf("Expected backend %q, got %q", BackendJSON, cfg.Library.Backend)
	}

	if cfg.Library.Key != "musicPlayerTracks" {
		t.Errorf("Expected key musicPlayerTracks, got %q", cfg.Library.Key)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should validate, got %v", err)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "melodyflow.toml")

	cfg := DefaultConfig()
	cfg.Player.InitialVolume = 0.7
	cfg.Library.Backend = BackendSQLite

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded.Player.InitialVolume != 0.7 {
		t.Errorf("InitialVolume mismatch: got %.2f, want 0.70", loaded.Player.InitialVolume)
	}

	if loaded.Library.Backend != BackendSQLite {
		t.Errorf("Backend mismatch: got %q, want %q", loaded.Library.Backend, BackendSQLite)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("Expected no error for non-existent file, got: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.Player.SeekStep != defaults.Player.SeekStep {
		t.Errorf("Expected default SeekStep %.2f, got %.2f", defaults.Player.SeekStep, cfg.Player.SeekStep)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[player]\ninitial_volume = 0.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Player.InitialVolume != 0.4 {
		t.Errorf("Expected InitialVolume 0.4, got %.2f", cfg.Player.InitialVolume)
	}

	if cfg.Player.SampleRate != DefaultConfig().Player.SampleRate {
		t.Errorf("Expected default sample rate, got %d", cfg.Player.SampleRate)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[player\nbroken"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err == nil {
		t.Error("Expected parse error for invalid TOML")
	}

	if cfg.Library.Backend != BackendJSON {
		t.Errorf("Expected defaults on parse error, got backend %q", cfg.Library.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"volume above one", func(c *Config) { c.Player.InitialVolume = 1.5 }, true},
		{"negative volume", func(c *Config) { c.Player.InitialVolume = -0.1 }, true},
		{"zero sample rate", func(c *Config) { c.Player.SampleRate = 0 }, true},
		{"unknown backend", func(c *Config) { c.Library.Backend = "redis" }, true},
		{"empty path", func(c *Config) { c.Library.Path = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "MELODYFLOW_BACKEND=sqlite\nMELODYFLOW_LIBRARY=/from/file.db\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// Process environment wins over the file
	t.Setenv(EnvLibrary, "/from/env.db")

	cfg, err := ApplyEnv(DefaultConfig(), envFile)
	if err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Library.Backend != BackendSQLite {
		t.Errorf("Expected backend from .env, got %q", cfg.Library.Backend)
	}

	if cfg.Library.Path != "/from/env.db" {
		t.Errorf("Expected library path from environment, got %q", cfg.Library.Path)
	}
}

func TestApplyEnvMissingFile(t *testing.T) {
	cfg, err := ApplyEnv(DefaultConfig(), filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Missing .env should not fail, got %v", err)
	}

	if cfg.Library.Backend != BackendJSON {
		t.Errorf("Expected default backend, got %q", cfg.Library.Backend)
	}
}
