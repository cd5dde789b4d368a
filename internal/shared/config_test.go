package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./genify.db" {
			t.Errorf("expected database path ./genify.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Spotify.MaxRetries != 0 {
			t.Errorf("expected no retries by default, got %d", config.Spotify.MaxRetries)
		}

		if config.Recommendations.Suggestions != 6 {
			t.Errorf("expected 6 suggestions, got %d", config.Recommendations.Suggestions)
		}

		if config.History.Enabled {
			t.Error("expected history to be disabled by default")
		}

		for _, name := range []string{"danceability", "energy", "valence"} {
			if config.Weights[name] != 1 {
				t.Errorf("expected default weight 1 for %s, got %v", name, config.Weights[name])
			}
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "")

		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[spotify]
max_retries = 2
market = "US"

[weights]
energy = 3.0
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Spotify.MaxRetries != 2 || config.Spotify.Market != "US" {
			t.Errorf("unexpected spotify settings: %+v", config.Spotify)
		}

		t.Run("fills unset fields from defaults", func(t *testing.T) {
			if config.Database.MaxOpenConns != 1 {
				t.Errorf("expected default max_open_conns 1, got %d", config.Database.MaxOpenConns)
			}
			if config.Recommendations.Suggestions != 6 {
				t.Errorf("expected default suggestions 6, got %d", config.Recommendations.Suggestions)
			}
			if config.Spotify.Timeout() != 15*time.Second {
				t.Errorf("expected default timeout 15s, got %v", config.Spotify.Timeout())
			}
		})

		t.Run("weights table replaces defaults", func(t *testing.T) {
			if len(config.Weights) != 1 || config.Weights["energy"] != 3 {
				t.Errorf("expected only energy=3, got %v", config.Weights)
			}
		})
	})

	t.Run("LoadConfig environment overrides", func(t *testing.T) {
		t.Setenv(EnvClientID, "env_id")
		t.Setenv(EnvClientSecret, "env_secret")

		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "env_id" || config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected env credentials, got %+v", config.Credentials.Spotify)
		}
		if !config.Credentials.Spotify.Valid() {
			t.Error("env credentials should be valid")
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
		}{
			{name: "malformed toml", content: "[server\nport = 1"},
			{name: "negative retries", content: "[spotify]\nmax_retries = -1\n"},
			{name: "too many suggestions", content: "[recommendations]\nsuggestions = 500\n"},
			{name: "negative weight", content: "[weights]\nenergy = -1.0\n"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("SaveConfig round trip", func(t *testing.T) {
		t.Setenv(EnvClientID, "")
		t.Setenv(EnvClientSecret, "")

		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		config.History.Enabled = true
		config.Server.Port = 9000

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if !loaded.History.Enabled || loaded.Server.Port != 9000 {
			t.Errorf("saved values not preserved: %+v", loaded)
		}
	})

	t.Run("SpotifyConfig.Valid", func(t *testing.T) {
		if DefaultConfig().Credentials.Spotify.Valid() {
			t.Error("template placeholders should not count as valid credentials")
		}
		if (SpotifyConfig{ClientID: "id"}).Valid() {
			t.Error("missing secret should not be valid")
		}
	})
}
