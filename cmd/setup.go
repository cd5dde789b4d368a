package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/genify/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes a starter config file to the --config path.
//
// When SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are exported they are written into the new file.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	if _, err := os.Stat(path); err == nil {
		if !cmd.Bool("force") {
			return fmt.Errorf("%w: config file already exists at %s (use --force to overwrite)", shared.ErrInvalidArgument, path)
		}
		r.logger.Info("overwriting existing config file", "path", path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing config file: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	if os.Getenv(shared.EnvClientID) != "" && os.Getenv(shared.EnvClientSecret) != "" {
		config, err := shared.LoadConfig(path)
		if err != nil {
			return err
		}
		if err := shared.SaveConfig(path, config); err != nil {
			return err
		}
		r.logger.Info("stored Spotify credentials from environment", "path", path)
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Next steps:\n")
	r.writePlain("1. Add your Spotify app's client ID and secret under [credentials.spotify]\n")
	r.writePlain("2. Run 'genify analyze <playlist-url>' or 'genify serve'\n")
	return nil
}

// SetupDatabase creates the history database and applies pending migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	r.logger.Info("initializing database", "path", r.config.Database.Path)

	repo, err := r.lookups()
	if err != nil {
		return err
	}

	statuses, err := shared.Migrations(r.db)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	for _, s := range statuses {
		mark := " "
		if s.Applied {
			mark = "x"
		}
		r.writePlain("[%s] %04d %s\n", mark, s.Version, s.Name)
	}

	count, err := repo.Count()
	if err != nil {
		return err
	}

	r.writePlain("✓ Database ready at %s (%d lookups recorded)\n", r.config.Database.Path, count)
	if !r.config.History.Enabled {
		r.writePlain("Set [history] enabled = true in %s to record lookups\n", r.configPath)
	}
	return nil
}
