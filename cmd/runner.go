package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/genify/internal/repositories"
	"github.com/desertthunder/genify/internal/services"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/desertthunder/genify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	configPath   string
	configLoaded bool
	service      services.Service
	engine       *tasks.PlaylistEngine
	db           *sql.DB
	logger       *log.Logger
	output       io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config // Used as-is; when nil the --config file is loaded before each command
	ConfigPath string
	Service    services.Service // Overrides the Spotify client built from the config
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	loaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:       opts.Config,
		configPath:   opts.ConfigPath,
		configLoaded: loaded,
		service:      opts.Service,
		logger:       opts.Logger,
		output:       opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, analyzeCommand, tallyCommand, tuiCommand, setupCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration file named by --config and applies the log level.
//
// A missing file is not an error: defaults plus SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET are used instead.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if !r.configLoaded {
		config, err := loadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
		r.configLoaded = true
	}

	level := r.config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(level))
	return ctx, nil
}

// After releases the history database, if one was opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close closes the history database. An engine recording into it is discarded with it.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	if r.config.History.Enabled {
		r.engine = nil
	}
	return err
}

func loadConfig(path string) (*shared.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return shared.LoadConfig(path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	config := shared.DefaultConfig()
	config.ApplyEnv()
	return config, nil
}

// SetLogger replaces the logger for the runner and any engine built afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// Engine returns the playlist engine, building the Spotify client and history recorder on first use.
func (r *Runner) Engine() (*tasks.PlaylistEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	if r.service == nil {
		if !r.config.Credentials.Spotify.Valid() {
			return nil, fmt.Errorf("%w: set [credentials.spotify] in %s or export %s and %s",
				shared.ErrMissingCredentials, r.configPath, shared.EnvClientID, shared.EnvClientSecret)
		}
		svc, err := services.NewSpotifyService(services.SpotifyOpts{Config: r.config, Logger: r.logger})
		if err != nil {
			return nil, err
		}
		r.service = svc
	}

	opts := tasks.EngineOpts{Logger: r.logger}
	if r.config.History.Enabled {
		repo, err := r.lookups()
		if err != nil {
			return nil, err
		}
		opts.Recorder = repo
	}

	r.engine = tasks.NewPlaylistEngine(r.service, opts)
	return r.engine, nil
}

// lookups opens the history database, running pending migrations, and returns its repository.
func (r *Runner) lookups() (*repositories.LookupRepository, error) {
	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open history database: %w", err)
		}
		r.db = db
	}
	return repositories.NewLookupRepository(r.db), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
