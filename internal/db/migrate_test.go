package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	for _, table := range []string{"invoice_counter", "invoice_number_issues"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}

	var idx string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name='idx_issues_run'`).Scan(&idx)
	require.NoError(t, err)
}

func TestMigrate_CounterIsNotSeeded(t *testing.T) {
	db := openTestDB(t)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoice_counter`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMigrate_CounterHoldsSingleRow(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO invoice_counter (id, next_num, updated_at) VALUES (1, 5, 'now')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO invoice_counter (id, next_num, updated_at) VALUES (2, 9, 'now')`)
	assert.Error(t, err, "a second counter row must violate the id check")
	_, err = db.Exec(`UPDATE invoice_counter SET next_num = -1 WHERE id = 1`)
	assert.Error(t, err, "negative counter must violate the check")
}

func TestOpenDB_FileBackedUsesWAL(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "invoicer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, busyTimeoutMs, timeout)
}
