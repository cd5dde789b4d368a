// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// serveCommand starts the web front-end
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web front-end",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (default from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (default from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the form in the default browser once listening",
			},
			&cli.BoolFlag{
				Name:  "no-qr",
				Usage: "Do not render QR codes for suggested tracks",
			},
		},
		Action: r.Serve,
	}
}

// analyzeCommand runs full lookups for one or more playlists
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"suggest"},
		Usage:     "Suggest new tracks for playlists and tally their contributors",
		ArgsUsage: "<playlist URL, URI or ID> [more playlists...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "weights",
				Aliases: []string{"w"},
				Usage:   "Feature weights, e.g. energy=2,valence=1 (default from config)",
			},
			&cli.IntFlag{
				Name:    "suggestions",
				Aliases: []string{"n"},
				Usage:   "Number of tracks to suggest (default from config)",
			},
			&cli.StringFlag{
				Name:  "market",
				Usage: "ISO market code for recommendations (default from config)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Most representative tracks to include",
				Value: 5,
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent lookups when several playlists are given",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Lookups started per second when several playlists are given",
				Value: 5,
			},
		},
		Action: r.Analyze,
	}
}

// tallyCommand counts contributors without fetching audio features
func tallyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tally",
		Usage: "Show how many tracks each contributor added to a playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, markdown, csv or json",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to a file instead of stdout",
			},
		},
		Action: r.Tally,
	}
}

// setupCommand handles setup operations for configuration and the history database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the history database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// historyCommand inspects recorded lookups
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect recorded lookups (requires [history] enabled = true)",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent lookups",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Only lookups of this playlist URL, URI or ID",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of lookups to show",
						Value: 20,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show one lookup by ID or sequence number",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive lookups.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Action:  r.TUI,
	}
}
