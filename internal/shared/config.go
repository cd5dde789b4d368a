package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
//
// A Config is passed explicitly to every component that needs it; nothing reads credentials from globals.
type Config struct {
	Credentials     CredentialsConfig     `toml:"credentials"`
	Spotify         SpotifyAPIConfig      `toml:"spotify"`
	Server          ServerConfig          `toml:"server"`
	Log             LogConfig             `toml:"log"`
	Database        DatabaseConfig        `toml:"database"`
	History         HistoryConfig         `toml:"history"`
	Recommendations RecommendationsConfig `toml:"recommendations"`
	Weights         map[string]float64    `toml:"weights"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify client-credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// Valid reports whether both the client ID and secret are set to something other than the template placeholders.
func (c SpotifyConfig) Valid() bool {
	return c.ClientID != "" && c.ClientSecret != "" &&
		c.ClientID != "your_spotify_client_id" && c.ClientSecret != "your_spotify_client_secret"
}

// SpotifyAPIConfig tunes the upstream HTTP client.
type SpotifyAPIConfig struct {
	MaxRetries     int    `toml:"max_retries"`
	Market         string `toml:"market"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the per-request timeout.
func (c SpotifyAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host      string  `toml:"host"`
	Port      int     `toml:"port"`
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LogConfig sets the log level name (debug, info, warn, error).
type LogConfig struct {
	Level string `toml:"level"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// HistoryConfig toggles lookup history persistence.
type HistoryConfig struct {
	Enabled bool `toml:"enabled"`
}

// RecommendationsConfig controls how many suggestions are returned and how seeds are sampled.
type RecommendationsConfig struct {
	Suggestions int `toml:"suggestions"`
	SeedTracks  int `toml:"seed_tracks"`
	SeedArtists int `toml:"seed_artists"`
	SeedGenres  int `toml:"seed_genres"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults. A [weights] table in the file replaces the default
// weights entirely. Credentials from the environment override those in the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	defaults := config.Weights
	config.Weights = nil

	md, err := toml.Decode(string(data), config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}
	if !md.IsDefined("weights") {
		config.Weights = defaults
	}

	config.ApplyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ApplyEnv overrides Spotify credentials with SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
}

// Validate checks ranges that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	r := c.Recommendations
	switch {
	case r.Suggestions < 1 || r.Suggestions > 100:
		return fmt.Errorf("%w: recommendations.suggestions must be between 1 and 100", ErrInvalidConfig)
	case r.SeedTracks < 0 || r.SeedArtists < 0 || r.SeedGenres < 0:
		return fmt.Errorf("%w: seed counts must be non-negative", ErrInvalidConfig)
	case r.SeedTracks+r.SeedArtists+r.SeedGenres == 0:
		return fmt.Errorf("%w: at least one recommendation seed is required", ErrInvalidConfig)
	case c.Spotify.MaxRetries < 0:
		return fmt.Errorf("%w: spotify.max_retries must be non-negative", ErrInvalidConfig)
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port out of range", ErrInvalidConfig)
	}
	for name, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("%w: weight %s must be non-negative", ErrInvalidConfig, name)
		}
	}
	return nil
}
