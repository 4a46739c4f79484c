// ABOUTME: Shared initialization code for all commands
// ABOUTME: Loads configuration, opens the log file and the playlist storage backend

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/natefinch/lumberjack.v2"

	"melodyflow/config"
	"melodyflow/ingest"
	"melodyflow/media"
	"melodyflow/playlist"
	"melodyflow/pool"
)

// Runner holds the dependencies shared by every command
type Runner struct {
	output io.Writer

	configPath string
	cfg        config.Config
	logger     *log.Logger
	store      *playlist.Store

	closers []func() error
}

// RunnerOpts contains configuration options for creating a Runner
type RunnerOpts struct {
	Output io.Writer
}

// NewRunner creates a Runner; dependencies are opened by Open
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{output: opts.Output}
}

// Open loads configuration, starts logging and loads the playlist
func (r *Runner) Open(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	cfg, err := loadConfig(r.configPath, cmd.String("env-file"))
	if err != nil {
		return ctx, err
	}

	// Command line flags win over file and environment
	if v := cmd.String("backend"); v != "" {
		cfg.Library.Backend = v
	}

	if v := cmd.String("library"); v != "" {
		cfg.Library.Path = v
	}

	if err := cfg.Validate(); err != nil {
		return ctx, fmt.Errorf("invalid configuration: %w", err)
	}

	r.cfg = cfg

	logger, closeLog := newLogger(cfg.Log, cmd.Bool("debug"))
	r.logger = logger
	r.closers = append(r.closers, closeLog)

	backend, closeBackend, err := openBackend(cfg.Library)
	if err != nil {
		return ctx, err
	}

	r.closers = append(r.closers, closeBackend)

	r.store = playlist.NewStore(backend, logger)
	r.store.Load()

	logger.Debug("opened library", "backend", cfg.Library.Backend, "path", cfg.Library.Path, "tracks", r.store.Len())

	return ctx, nil
}

// Close releases everything Open acquired, newest first
func (r *Runner) Close(_ context.Context, _ *cli.Command) error {
	var errs []error

	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}

	r.closers = nil

	return errors.Join(errs...)
}

// loadConfig reads the TOML file and applies environment overrides
func loadConfig(path, envFile string) (config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return cfg, err
	}

	return config.ApplyEnv(cfg, envFile)
}

// newLogger writes structured logs to a rotating file. The terminal belongs
// to the player, so nothing is logged to stderr.
func newLogger(cfg config.LogConfig, debug bool) (*log.Logger, func() error) {
	w := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
	}

	logger := log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
		logger.Warn("unknown log level, using info", "level", cfg.Level)
	}

	if debug {
		level = log.DebugLevel
	}

	logger.SetLevel(level)

	return logger, w.Close
}

// openBackend opens the configured playlist storage
func openBackend(cfg config.LibraryConfig) (playlist.Backend, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		b, err := playlist.OpenSQLiteBackend(cfg.Path, cfg.Key)
		if err != nil {
			return nil, nil, err
		}

		return b, b.Close, nil

	case config.BackendJSON:
		return playlist.NewFileBackend(cfg.Path), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// newIngester builds an ingester probing real files on one worker per CPU
func (r *Runner) newIngester() *ingest.Ingester {
	p := pool.NewWorkerPool(runtime.NumCPU(), 0)
	r.logger.Debug("started probe pool", "workers", p.Workers())

	r.closers = append(r.closers, func() error {
		p.Close()
		return nil
	})

	return ingest.New(p, media.NewFileProber(), r.logger)
}
