// ABOUTME: Environment variable overrides for the TOML configuration
// ABOUTME: Reads the process environment and an optional .env file

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables recognised by ApplyEnv
const (
	EnvBackend  = "MELODYFLOW_BACKEND"
	EnvLibrary  = "MELODYFLOW_LIBRARY"
	EnvInbox    = "MELODYFLOW_INBOX"
	EnvLogLevel = "MELODYFLOW_LOG_LEVEL"
)

// ApplyEnv overlays environment overrides onto cfg.
// Values from envFile are used only when the process environment does not set
// the same variable. A missing envFile is not an error.
func ApplyEnv(cfg Config, envFile string) (Config, error) {
	fileVars := map[string]string{}

	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read env file: %w", err)
		}

		if vars != nil {
			fileVars = vars
		}
	}

	lookup := func(name string) (string, bool) {
		if v, ok := os.LookupEnv(name); ok {
			return v, true
		}

		v, ok := fileVars[name]

		return v, ok
	}

	if v, ok := lookup(EnvBackend); ok && v != "" {
		cfg.Library.Backend = v
	}

	if v, ok := lookup(EnvLibrary); ok && v != "" {
		cfg.Library.Path = v
	}

	if v, ok := lookup(EnvInbox); ok {
		cfg.Library.InboxDir = v
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = v
	}

	return cfg, nil
}
