// ABOUTME: Configuration management for player, library and logging settings
// ABOUTME: Handles loading/saving TOML config files with fallback to defaults

// Package config loads and saves the melodyflow TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Library backends
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds all user-tunable settings
type Config struct {
	Player  PlayerConfig  `toml:"player"`
	Library LibraryConfig `toml:"library"`
	Log     LogConfig     `toml:"log"`
}

// PlayerConfig holds transport settings
type PlayerConfig struct {
	InitialVolume float64 `toml:"initial_volume"` // 0.0 - 1.0
	VolumeStep    float64 `toml:"volume_step"`
	SeekStep      float64 `toml:"seek_step_seconds"`
	SampleRate    int     `toml:"sample_rate"` // Speaker output rate
}

// LibraryConfig holds track store settings
type LibraryConfig struct {
	Backend  string `toml:"backend"` // "json" or "sqlite"
	Path     string `toml:"path"`
	Key      string `toml:"key"`       // Storage key (sqlite backend)
	InboxDir string `toml:"inbox_dir"` // Watched for new files when set
}

// LogConfig holds log file settings
type LogConfig struct {
	Path       string `toml:"path"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// GetConfigPath returns the default config file path
// First tries current directory, then falls back to ~/.config/melodyflow/config.toml
func GetConfigPath() string {
	if _, err := os.Stat("./melodyflow.toml"); err == nil {
		return "./melodyflow.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "./melodyflow.toml"
	}

	return filepath.Join(home, ".config", "melodyflow", "config.toml")
}

// LoadConfig loads configuration from a TOML file
// If the file doesn't exist, returns default config. Keys missing from the
// file keep their default values.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}

		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a TOML file
func SaveConfig(path string, config Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Round to 2 decimal places to match UI precision
	config.Player.InitialVolume = roundPrecision(config.Player.InitialVolume)
	config.Player.VolumeStep = roundPrecision(config.Player.VolumeStep)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			fmt.Printf("Warning: failed to close config file: %v\n", err)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Player: PlayerConfig{
			InitialVolume: 1.0,
			VolumeStep:    0.05,
			SeekStep:      5,
			SampleRate:    44100,
		},
		Library: LibraryConfig{
			Backend: BackendJSON,
			Path:    defaultDataPath("tracks.json"),
			Key:     "musicPlayerTracks",
		},
		Log: LogConfig{
			Path:       defaultDataPath("melodyflow.log"),
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Validate reports settings that cannot be used as-is
func (c Config) Validate() error {
	if c.Player.InitialVolume < 0 || c.Player.InitialVolume > 1 {
		return fmt.Errorf("player.initial_volume must be within [0,1], got %.2f", c.Player.InitialVolume)
	}

	if c.Player.SampleRate <= 0 {
		return fmt.Errorf("player.sample_rate must be positive, got %d", c.Player.SampleRate)
	}

	switch c.Library.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown library.backend %q", c.Library.Backend)
	}

	if c.Library.Path == "" {
		return fmt.Errorf("library.path must not be empty")
	}

	return nil
}

// defaultDataPath places a file under ~/.local/share/melodyflow
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}

	return filepath.Join(home, ".local", "share", "melodyflow", name)
}

func roundPrecision(x float64) float64 {
	return float64(int(x*100+0.5)) / 100
}
