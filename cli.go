// ABOUTME: Command actions for the interactive player and headless playlist edits
// ABOUTME: Headless commands print the same notifications the player shows

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"melodyflow/config"
	"melodyflow/ingest"
	"melodyflow/media"
	"melodyflow/player"
	"melodyflow/playlist"
	"melodyflow/transport"
	"melodyflow/tui"
)

// printNotifier writes notifications as lines of command output
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) Success(msg string) {
	fmt.Fprintf(n.out, "✓ %s\n", msg)
}

func (n printNotifier) Error(msg string) {
	fmt.Fprintf(n.out, "✗ %s\n", msg)
}

// Play opens the interactive player
func (r *Runner) Play(_ context.Context, cmd *cli.Command) error {
	handle := media.NewSpeakerHandle(r.cfg.Player.SampleRate, r.logger)
	defer func() {
		if err := handle.Close(); err != nil {
			r.logger.Warn("failed to close audio output", "err", err)
		}
	}()

	status := tui.NewStatusBoard()
	ctrl := transport.New(handle, r.cfg.Player.InitialVolume, r.logger)
	session := player.NewSession(r.store, ctrl, status, r.logger)

	deps := tui.Dependencies{
		Session:    session,
		Ingester:   r.newIngester(),
		Events:     handle.Events(),
		Status:     status,
		SaveVolume: r.saveVolume,
		Logger:     r.logger,
	}

	if dir := r.cfg.Library.InboxDir; dir != "" {
		w, err := ingest.NewWatcher(dir, ingest.DefaultDebounce, r.logger)
		if err != nil {
			r.logger.Warn("inbox disabled", "dir", dir, "err", err)
		} else {
			defer w.Close()

			r.logger.Info("watching inbox", "dir", w.Dir())
			deps.Inbox = w
		}
	}

	opts := tui.Options{
		VolumeStep: r.cfg.Player.VolumeStep,
		SeekStep:   r.cfg.Player.SeekStep,
		Paths:      cmd.Args().Slice(),
	}

	r.logger.Info("starting player", "tracks", r.store.Len(), "paths", len(opts.Paths))

	return tui.Run(opts, deps)
}

// saveVolume stores the volume as the next session's initial volume. The
// file is re-read so environment and flag overrides are not persisted.
func (r *Runner) saveVolume(volume float64) error {
	cfg, err := config.LoadConfig(r.configPath)
	if err != nil {
		return err
	}

	cfg.Player.InitialVolume = volume

	return config.SaveConfig(r.configPath, cfg)
}

// Add ingests paths and appends the playable ones
func (r *Runner) Add(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errors.New("no paths given")
	}

	notify := printNotifier{out: r.output}

	batch, err := r.newIngester().Ingest(ctx, ingest.Describe(paths))
	if err != nil {
		if errors.Is(err, ingest.ErrNoAudioFiles) {
			notify.Error(player.MsgNoAudioFiles)
		}

		return err
	}

	if len(batch.Tracks) == 0 {
		player.ReportBatch(notify, batch, 0)
		return nil
	}

	if err := r.store.Add(batch.Tracks...); err != nil {
		player.ReportBatch(notify, batch, 0)
		return err
	}

	player.ReportBatch(notify, batch, len(batch.Tracks))

	return nil
}

// List prints the playlist as a table
func (r *Runner) List(_ context.Context, _ *cli.Command) error {
	tracks := r.store.Tracks()
	if len(tracks) == 0 {
		fmt.Fprintln(r.output, "Playlist is empty")
		return nil
	}

	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tLENGTH\tFILE")

	for i, t := range tracks {
		path, err := media.SourcePath(t.Source)
		if err != nil {
			path = t.Source
		}

		length := "--:--"
		if t.HasDuration() {
			length = transport.FormatTime(t.Duration)
		}

		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, t.Name, length, path)
	}

	return w.Flush()
}

// Remove deletes the track at a 1-based position
func (r *Runner) Remove(_ context.Context, cmd *cli.Command) error {
	arg := cmd.Args().First()

	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("invalid track number %q", arg)
	}

	removed, err := r.store.Remove(n - 1)
	if err != nil {
		if errors.Is(err, playlist.ErrIndexOutOfRange) {
			return fmt.Errorf("no track %d, playlist has %d", n, r.store.Len())
		}

		return err
	}

	r.logger.Info("removed track", "track", removed.String(), "position", n)
	printNotifier{out: r.output}.Success(player.MsgTrackRemoved)

	return nil
}

// Clear empties the playlist
func (r *Runner) Clear(_ context.Context, _ *cli.Command) error {
	n := r.store.Len()
	r.store.Clear()

	fmt.Fprintf(r.output, "Removed %d tracks\n", n)

	return nil
}
