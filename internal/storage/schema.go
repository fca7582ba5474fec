package storage

import (
	"context"
	"fmt"
)

// Table creation statements. Both engines share the same logical schema;
// only id generation and the JSON column type differ.

const createSearchLogSQLite = `
CREATE TABLE IF NOT EXISTS search_log (
	person_id TEXT NOT NULL,
	source_key TEXT NOT NULL,
	searched_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	result_count INTEGER DEFAULT 0,
	had_error BOOLEAN DEFAULT 0,
	error_message TEXT,
	UNIQUE(person_id, source_key)
)`

const createSearchLogPostgres = `
CREATE TABLE IF NOT EXISTS search_log (
	person_id TEXT NOT NULL,
	source_key TEXT NOT NULL,
	searched_at TIMESTAMP DEFAULT NOW(),
	result_count INTEGER DEFAULT 0,
	had_error BOOLEAN DEFAULT FALSE,
	error_message TEXT,
	UNIQUE(person_id, source_key)
)`

const createStagedFindingsSQLite = `
CREATE TABLE IF NOT EXISTS staged_findings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	person_id TEXT NOT NULL,
	person_name TEXT NOT NULL,
	source_key TEXT NOT NULL,
	source_url TEXT,
	extracted_record TEXT,
	match_score REAL,
	search_params TEXT,
	staged_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	status TEXT DEFAULT 'pending' CHECK(status IN ('pending','approved','rejected')),
	reviewed_at TIMESTAMP,
	notes TEXT
)`

const createStagedFindingsPostgres = `
CREATE TABLE IF NOT EXISTS staged_findings (
	id SERIAL PRIMARY KEY,
	person_id TEXT NOT NULL,
	person_name TEXT NOT NULL,
	source_key TEXT NOT NULL,
	source_url TEXT,
	extracted_record JSONB,
	match_score REAL,
	search_params JSONB,
	staged_at TIMESTAMP DEFAULT NOW(),
	status TEXT DEFAULT 'pending' CHECK(status IN ('pending','approved','rejected')),
	reviewed_at TIMESTAMP,
	notes TEXT
)`

// EnsureSchema creates the durable tables on first use.
func EnsureSchema(ctx context.Context, b Backend) error {
	var stmts []string
	switch b.Dialect() {
	case "postgres":
		stmts = []string{createSearchLogPostgres, createStagedFindingsPostgres}
	default:
		stmts = []string{createSearchLogSQLite, createStagedFindingsSQLite}
	}
	for _, stmt := range stmts {
		if err := b.Execute(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
