// ABOUTME: Entry point for the melodyflow music player
// ABOUTME: Defines the command line and routes to the interactive player or headless commands

// Package main provides the entry point for melodyflow, an offline terminal music player.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"melodyflow/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	app := newApp(NewRunner(RunnerOpts{}))

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "melodyflow: %v\n", err)
		return 1
	}

	return 0
}

// newApp builds the command tree around r
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "melodyflow",
		Usage:     "Play local audio files from a persistent playlist",
		Version:   "0.3.0",
		ArgsUsage: "[paths...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   config.GetConfigPath(),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Optional .env file with MELODYFLOW_* overrides",
				Value: ".env",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Log at debug level",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Playlist storage backend (json or sqlite)",
			},
			&cli.StringFlag{
				Name:  "library",
				Usage: "Playlist storage path",
			},
		},
		Before:   r.Open,
		After:    r.Close,
		Action:   r.Play,
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		playCommand, addCommand, listCommand, removeCommand, clearCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Open the interactive player, adding any given files first",
		ArgsUsage: "[paths...]",
		Action:    r.Play,
	}
}

func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add audio files or folders to the playlist",
		ArgsUsage: "paths...",
		Action:    r.Add,
	}
}

func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Print the playlist",
		Action:  r.List,
	}
}

func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Remove the track at a 1-based position",
		ArgsUsage: "N",
		Action:    r.Remove,
	}
}

func clearCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Remove every track",
		Action: r.Clear,
	}
}
