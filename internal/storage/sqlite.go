package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"
)

// placeholderPattern matches PostgreSQL-style $N placeholders.
var placeholderPattern = regexp.MustCompile(`\$\d+`)

// SQLiteBackend is the embedded file-based store. It is the default and
// the fallback when the networked backend is unreachable.
type SQLiteBackend struct {
	db     *sql.DB
	logger arbor.ILogger
}

// NewSQLiteBackend opens (and creates if needed) the database file at path.
func NewSQLiteBackend(path string, logger arbor.ILogger) (*SQLiteBackend, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite registers as "sqlite" (not "sqlite3")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer avoids SQLITE_BUSY under parallel workers.
	db.SetMaxOpenConns(1)

	s := &SQLiteBackend{db: db, logger: logger}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		logger.Warn().Err(err).Msg("Failed to enable WAL mode")
	}

	logger.Debug().Str("path", path).Msg("SQLite backend opened")
	return s, nil
}

// translate rewrites PostgreSQL query syntax into the SQLite dialect.
func translate(query string) string {
	query = placeholderPattern.ReplaceAllString(query, "?")
	query = strings.ReplaceAll(query, "NOW()", "datetime('now')")
	return query
}

func (s *SQLiteBackend) Execute(ctx context.Context, query string, args ...any) error {
	if _, err := s.db.ExecContext(ctx, translate(query), args...); err != nil {
		return fmt.Errorf("sqlite execute failed: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, translate(query), args...)
	if err != nil {
		return 0, fmt.Errorf("sqlite insert failed: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite insert id unavailable: %w", err)
	}
	return id, nil
}

func (s *SQLiteBackend) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, translate(query), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func (s *SQLiteBackend) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	all, err := s.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (s *SQLiteBackend) Dialect() string { return "sqlite" }

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
