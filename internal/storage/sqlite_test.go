package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmilano1/genealogy-extractors/internal/common"
)

func newBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	backend, err := NewSQLiteBackend(filepath.Join(t.TempDir(), "test.db"), common.GetLogger())
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })
	return backend
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"placeholders",
			"SELECT * FROM t WHERE a = $1 AND b = $2",
			"SELECT * FROM t WHERE a = ? AND b = ?",
		},
		{
			"double digit placeholder",
			"INSERT INTO t VALUES ($1, $10)",
			"INSERT INTO t VALUES (?, ?)",
		},
		{
			"now function",
			"UPDATE t SET ts = NOW() WHERE id = $1",
			"UPDATE t SET ts = datetime('now') WHERE id = ?",
		},
		{
			"untouched",
			"SELECT count(*) FROM t",
			"SELECT count(*) FROM t",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(tt.in))
		})
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	require.NoError(t, backend.Execute(ctx,
		`CREATE TABLE widgets (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, score REAL, active BOOLEAN)`))

	id, err := backend.Insert(ctx,
		`INSERT INTO widgets (name, score, active) VALUES ($1, $2, $3)`, "alpha", 1.5, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = backend.Insert(ctx,
		`INSERT INTO widgets (name, score, active) VALUES ($1, $2, $3)`, "beta", 2.5, false)
	require.NoError(t, err)

	rows, err := backend.FetchAll(ctx, `SELECT * FROM widgets ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "alpha", rows[0].AsString("name"))
	assert.Equal(t, 1.5, rows[0].AsFloat("score"))
	assert.True(t, rows[0].AsBool("active"))
	assert.False(t, rows[1].AsBool("active"))

	row, err := backend.FetchOne(ctx, `SELECT id FROM widgets WHERE name = $1`, "beta")
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, 2, row.AsInt("id"))

	row, err = backend.FetchOne(ctx, `SELECT id FROM widgets WHERE name = $1`, "missing")
	require.NoError(t, err)
	assert.Nil(t, row)

	assert.Equal(t, "sqlite", backend.Dialect())
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	backend := newBackend(t)
	ctx := context.Background()

	require.NoError(t, EnsureSchema(ctx, backend))
	require.NoError(t, EnsureSchema(ctx, backend))

	rows, err := backend.FetchAll(ctx, `SELECT * FROM search_log`)
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = backend.FetchAll(ctx, `SELECT * FROM staged_findings`)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
