package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/genify/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	logger := shared.NewLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := newApp(runner).Run(ctx, os.Args); err != nil {
		logger.Error("application error", "error", err)
		stop()
		os.Exit(1)
	}
}

// newApp builds the root command with r's subcommands and lifecycle hooks.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "genify",
		Usage:   "Suggest new tracks for a Spotify playlist and see who added what",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the config file",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}
