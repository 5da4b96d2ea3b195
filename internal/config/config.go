// Package config loads trackfinder settings from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/trackfinder/internal/core/query"
)

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = "TRACKFINDER_CONFIG"

// xdgRelPath is searched for under the XDG config directories.
const xdgRelPath = "trackfinder/config.yaml"

// Config holds the trackfinder configuration.
type Config struct {
	Env           string              `yaml:"env"` // local, dev, prod
	Logging       LoggingConfig       `yaml:"logging"`
	HTTP          HTTPConfig          `yaml:"http"`
	Catalog       CatalogConfig       `yaml:"catalog"`
	Search        SearchConfig        `yaml:"search"`
	Resolve       ResolveConfig       `yaml:"resolve"`
	Query         QueryConfig         `yaml:"query"`
	Parser        ParserConfig        `yaml:"parser"`
	Disambiguator DisambiguatorConfig `yaml:"disambiguator"`
	Ollama        OllamaConfig        `yaml:"ollama"`
	OpenAI        OpenAIConfig        `yaml:"openai"`
	Journal       JournalConfig       `yaml:"journal"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// CatalogConfig selects and configures the music catalog.
type CatalogConfig struct {
	Driver  string        `yaml:"driver"` // sonos, spotify (default: sonos)
	Sonos   SonosConfig   `yaml:"sonos"`
	Spotify SpotifyConfig `yaml:"spotify"`
}

// SonosConfig configures the sonos CLI catalog.
type SonosConfig struct {
	Command    []string `yaml:"command"`
	TimeoutSec int      `yaml:"timeout_sec"`
}

// SpotifyConfig configures the Spotify Web API catalog.
type SpotifyConfig struct {
	ClientID       string  `yaml:"client_id"`
	ClientSecret   string  `yaml:"client_secret"`
	BaseURL        string  `yaml:"base_url"`
	TokenURL       string  `yaml:"token_url"`
	Market         string  `yaml:"market"`
	Limit          int     `yaml:"limit"`
	RateLimit      float64 `yaml:"rate_limit"`       // requests per second, 0 = unlimited
	MaxRetries     int     `yaml:"max_retries"`      // 429/5xx replays, 0 = client default
	RetryBackoffMs int     `yaml:"retry_backoff_ms"` // 0 = client default
}

// SearchConfig holds the retry policy for transient catalog failures.
type SearchConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	BackoffMs   int `yaml:"backoff_ms"`
}

// ResolveConfig bounds a single resolution.
type ResolveConfig struct {
	TimeoutSec int `yaml:"timeout_sec"`
}

// QueryConfig holds query generation settings. A nil AlbumFallbacks means
// the built-in table; an explicit empty list disables album rules.
type QueryConfig struct {
	AlbumFallbacks []query.AlbumFallback `yaml:"album_fallbacks"`
}

// ParserConfig selects the free-text request parser.
type ParserConfig struct {
	Driver string `yaml:"driver"` // rules, ollama (default: rules)
}

// DisambiguatorConfig selects the external chooser for ambiguous batches.
type DisambiguatorConfig struct {
	Driver string `yaml:"driver"` // none, ollama, openai (default: none)
}

// OllamaConfig configures the local Ollama service.
type OllamaConfig struct {
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// OpenAIConfig configures an OpenAI-compatible chat API.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// JournalConfig selects where resolutions are recorded.
type JournalConfig struct {
	Driver      string `yaml:"driver"` // none, sqlite, postgres (default: none)
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresURL string `yaml:"postgres_url"`
	Workers     int    `yaml:"workers"`
	QueueSize   int    `yaml:"queue_size"`
}

// Load reads configuration from path. An empty path falls back to
// $TRACKFINDER_CONFIG, then the XDG config directories, then built-in
// defaults.
func Load(path string) (Config, error) {
	configPath, err := findConfigPath(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if configPath != "" {
		data, err := os.ReadFile(filepath.Clean(configPath))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}

		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", configPath, err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "local"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = "sonos"
	}
	if len(c.Catalog.Sonos.Command) == 0 {
		c.Catalog.Sonos.Command = []string{"sonos", "searchtrack"}
	}
	if c.Catalog.Sonos.TimeoutSec <= 0 {
		c.Catalog.Sonos.TimeoutSec = 30
	}
	if c.Catalog.Spotify.Limit <= 0 {
		c.Catalog.Spotify.Limit = 10
	}
	if c.Search.MaxAttempts <= 0 {
		c.Search.MaxAttempts = 5
	}
	if c.Search.BackoffMs <= 0 {
		c.Search.BackoffMs = 1000
	}
	if c.Resolve.TimeoutSec <= 0 {
		c.Resolve.TimeoutSec = 90
	}
	if c.Query.AlbumFallbacks == nil {
		c.Query.AlbumFallbacks = query.DefaultAlbumFallbacks()
	}
	if c.Parser.Driver == "" {
		c.Parser.Driver = "rules"
	}
	if c.Disambiguator.Driver == "" {
		c.Disambiguator.Driver = "none"
	}
	if c.Ollama.BaseURL == "" {
		c.Ollama.BaseURL = "http://localhost:11434"
	}
	if c.Ollama.TimeoutSec <= 0 {
		c.Ollama.TimeoutSec = 30
	}
	if c.Journal.Driver == "" {
		c.Journal.Driver = "none"
	}
	if c.Journal.SQLitePath == "" {
		c.Journal.SQLitePath = filepath.Join(xdg.DataHome, "trackfinder", "journal.db")
	}
	if c.Journal.Workers <= 0 {
		c.Journal.Workers = 2
	}
	if c.Journal.QueueSize <= 0 {
		c.Journal.QueueSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := oneOf("env", c.Env, "local", "dev", "prod"); err != nil {
		return err
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if err := oneOf("catalog.driver", c.Catalog.Driver, "sonos", "spotify"); err != nil {
		return err
	}
	if c.Catalog.Driver == "spotify" {
		if c.Catalog.Spotify.ClientID == "" || c.Catalog.Spotify.ClientSecret == "" {
			return fmt.Errorf("catalog.spotify.client_id and client_secret are required")
		}
		if c.Catalog.Spotify.Limit > 50 {
			return fmt.Errorf("catalog.spotify.limit must be at most 50, got %d", c.Catalog.Spotify.Limit)
		}
	}
	for i, f := range c.Query.AlbumFallbacks {
		if len(f.TitleContains) == 0 || strings.TrimSpace(f.Query) == "" {
			return fmt.Errorf("query.album_fallbacks[%d] needs title_contains and query", i)
		}
	}
	if err := oneOf("parser.driver", c.Parser.Driver, "rules", "ollama"); err != nil {
		return err
	}
	if err := oneOf("disambiguator.driver", c.Disambiguator.Driver, "none", "ollama", "openai"); err != nil {
		return err
	}
	if err := oneOf("journal.driver", c.Journal.Driver, "none", "sqlite", "postgres"); err != nil {
		return err
	}
	if c.Journal.Driver == "postgres" && c.Journal.PostgresURL == "" {
		return fmt.Errorf("journal.postgres_url is required for the postgres journal")
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, ", "), value)
}

// findConfigPath returns "" when no config file exists and none was asked for.
func findConfigPath(explicit string) (string, error) {
	// 1. --config flag
	if explicit != "" {
		return explicit, nil
	}

	// 2. Environment
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path, nil
	}

	// 3. $XDG_CONFIG_HOME and $XDG_CONFIG_DIRS
	if path, err := xdg.SearchConfigFile(xdgRelPath); err == nil {
		return path, nil
	}

	return "", nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
