package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/ternarybob/arbor"

	"github.com/pmilano1/genealogy-extractors/internal/common"
)

// PostgresBackend is the networked store used when several machines share
// one search log and staging area.
type PostgresBackend struct {
	db     *sql.DB
	logger arbor.ILogger
}

// NewPostgresBackend connects and verifies the connection with a short
// ping so the factory can fall back to SQLite on failure.
func NewPostgresBackend(cfg common.DatabaseConfig, logger arbor.ILogger) (*PostgresBackend, error) {
	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Database, cfg.User, cfg.Password)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	db.SetMaxOpenConns(8)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.Debug().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("PostgreSQL backend connected")

	return &PostgresBackend{db: db, logger: logger}, nil
}

func (p *PostgresBackend) Execute(ctx context.Context, query string, args ...any) error {
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("postgres execute failed: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	// lib/pq does not support LastInsertId; ask the server for the id.
	if !strings.Contains(strings.ToUpper(query), "RETURNING") {
		query += " RETURNING id"
	}
	var id int64
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("postgres insert failed: %w", err)
	}
	return id, nil
}

func (p *PostgresBackend) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (p *PostgresBackend) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	all, err := p.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (p *PostgresBackend) Dialect() string { return "postgres" }

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
