// Package common provides shared configuration, logging and defaults.
package common

import "path/filepath"

// DefaultConfig returns the built-in configuration. The embedded SQLite
// backend needs no external services, so a fresh install works without any
// config file at all.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Type:       "sqlite",
			SQLitePath: filepath.Join(ConfigDir(), "genealogy.db"),
			Host:       "localhost",
			Port:       5432,
			Database:   "genealogy",
			User:       "postgres",
			Password:   "",
		},
		API: APIConfig{
			Endpoint: "",
			Key:      "",
		},
		Chrome: ChromeConfig{
			DebugHost: "127.0.0.1",
			DebugPort: 9222,
		},
		Research: ResearchConfig{
			MinScore: 80,
			Workers:  16,
		},
		Browser: BrowserConfig{
			MaxTabs: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}
