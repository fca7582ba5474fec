package storage

import (
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/common"
)

// NewBackend returns the configured backend. When PostgreSQL is configured
// but unreachable, it logs the failure and falls back to the embedded
// SQLite store.
func NewBackend(cfg *common.Config, logger arbor.ILogger) (Backend, error) {
	if cfg.IsPostgres() {
		backend, err := NewPostgresBackend(cfg.Database, logger)
		if err == nil {
			return backend, nil
		}
		logger.Warn().
			Err(err).
			Str("host", cfg.Database.Host).
			Msg("PostgreSQL connection failed, falling back to SQLite")
	}
	return NewSQLiteBackend(cfg.Database.SQLitePath, logger)
}
