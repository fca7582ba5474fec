package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration. User values are
// deep-merged over the built-in defaults: decoding the user file on top of
// a pre-populated struct only overwrites the keys the file actually sets.
type Config struct {
	Database DatabaseConfig `json:"database" toml:"database"`
	API      APIConfig      `json:"api" toml:"api"`
	Chrome   ChromeConfig   `json:"chrome" toml:"chrome"`
	Research ResearchConfig `json:"research" toml:"research"`
	Browser  BrowserConfig  `json:"browser" toml:"browser"`
	Logging  LoggingConfig  `json:"logging" toml:"logging"`
}

// DatabaseConfig selects the storage backend. "sqlite" is the embedded
// default; "postgresql" enables the networked backend with fallback.
type DatabaseConfig struct {
	Type       string `json:"type" toml:"type" validate:"oneof=sqlite postgresql"`
	SQLitePath string `json:"sqlite_path" toml:"sqlite_path"`
	Host       string `json:"host" toml:"host"`
	Port       int    `json:"port" toml:"port" validate:"gte=0,lte=65535"`
	Database   string `json:"database" toml:"database"`
	User       string `json:"user" toml:"user"`
	Password   string `json:"password" toml:"password"`
}

// APIConfig points at the roster API. An empty key disables write-back;
// reads fail with a clear error when the endpoint is unset.
type APIConfig struct {
	Endpoint string `json:"endpoint" toml:"endpoint" validate:"omitempty,url"`
	Key      string `json:"key" toml:"key"`
}

// ChromeConfig locates the externally-launched browser's debug endpoint.
// No browser is ever launched by this process.
type ChromeConfig struct {
	DebugHost string `json:"debug_host" toml:"debug_host" validate:"required"`
	DebugPort int    `json:"debug_port" toml:"debug_port" validate:"required,gte=1,lte=65535"`
}

// ResearchConfig holds orchestrator defaults overridable per run via flags.
type ResearchConfig struct {
	MinScore float64 `json:"min_score" toml:"min_score" validate:"gte=0,lte=100"`
	Workers  int     `json:"workers" toml:"workers" validate:"gte=1"`
}

// BrowserConfig tunes the shared browser pool.
type BrowserConfig struct {
	// MaxTabs caps concurrent fetches against the single shared browser.
	MaxTabs int `json:"max_tabs" toml:"max_tabs" validate:"gte=1,lte=8"`
}

// LoggingConfig mirrors the arbor writer configuration.
type LoggingConfig struct {
	Level  string   `json:"level" toml:"level"`
	Output []string `json:"output" toml:"output"`
}

// ConfigDir returns the per-user configuration directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".genealogy-extractors"
	}
	return filepath.Join(home, ".genealogy-extractors")
}

// LoadConfig loads configuration from the given path, or from the default
// per-user location when path is empty. A missing file is not an error; a
// malformed file logs a warning and falls back to defaults.
func LoadConfig(path string) *Config {
	cfg := DefaultConfig()

	candidates := []string{path}
	if path == "" {
		candidates = []string{
			filepath.Join(ConfigDir(), "config.json"),
			filepath.Join(ConfigDir(), "config.toml"),
		}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		if err := decodeInto(cfg, candidate, data); err != nil {
			GetLogger().Warn().
				Str("path", candidate).
				Err(err).
				Msg("Failed to parse config file, using defaults")
			return DefaultConfig()
		}
		break
	}

	if err := cfg.Validate(); err != nil {
		GetLogger().Warn().
			Err(err).
			Msg("Config validation failed, using defaults")
		return DefaultConfig()
	}

	return cfg
}

// decodeInto merges a config document over cfg, dispatching on extension.
func decodeInto(cfg *Config, path string, data []byte) error {
	if filepath.Ext(path) == ".toml" {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("toml decode: %w", err)
		}
		return nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("json decode: %w", err)
	}
	return nil
}

// Validate checks configuration constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsPostgres reports whether the networked backend is configured.
func (c *Config) IsPostgres() bool {
	return c.Database.Type == "postgresql"
}

// ChromeDebugURL returns the CDP endpoint URL for the shared browser.
func (c *Config) ChromeDebugURL() string {
	return fmt.Sprintf("http://%s:%d", c.Chrome.DebugHost, c.Chrome.DebugPort)
}
