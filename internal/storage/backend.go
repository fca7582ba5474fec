// Package storage provides a small database abstraction shared by the
// search log and staging stores. Two backends expose the same verb set:
// an embedded SQLite store and a networked PostgreSQL store. Queries are
// written in PostgreSQL syntax ($N placeholders, NOW()); the SQLite
// backend translates on the way in.
package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Row is a generic result row keyed by column name.
type Row map[string]any

// Backend is the uniform access surface over either database engine.
type Backend interface {
	// Execute runs a statement that returns no rows.
	Execute(ctx context.Context, query string, args ...any) error

	// Insert runs an INSERT and returns the generated id.
	Insert(ctx context.Context, query string, args ...any) (int64, error)

	// FetchAll runs a query and returns every row.
	FetchAll(ctx context.Context, query string, args ...any) ([]Row, error)

	// FetchOne runs a query and returns the first row, or nil.
	FetchOne(ctx context.Context, query string, args ...any) (Row, error)

	// Dialect returns "sqlite" or "postgres".
	Dialect() string

	// Close releases the underlying connection pool.
	Close() error
}

// scanRows converts sql.Rows into generic Row maps.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			v := values[i]
			// Drivers hand back []byte for text columns; normalize to string
			// so callers see consistent types across backends.
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// AsString extracts a string column, tolerating NULL.
func (r Row) AsString(col string) string {
	if v, ok := r[col]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// AsInt extracts an integer column, tolerating NULL and driver-specific
// numeric types.
func (r Row) AsInt(col string) int {
	switch v := r[col].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// AsFloat extracts a float column.
func (r Row) AsFloat(col string) float64 {
	switch v := r[col].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

// AsBool extracts a boolean column. SQLite stores booleans as 0/1.
func (r Row) AsBool(col string) bool {
	switch v := r[col].(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}
