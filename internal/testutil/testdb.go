package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/invoicer/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The counter is left uninitialized. The database is closed when the test completes.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		database.Close()
	})
	return database
}

// NewCounterDB is NewTestDB with the invoice counter set to next.
func NewCounterDB(t *testing.T, next int64) *sql.DB {
	t.Helper()
	database := NewTestDB(t)
	_, err := database.ExecContext(context.Background(),
		`INSERT INTO invoice_counter (id, next_num, updated_at) VALUES (1, ?, '2026-01-01T00:00:00Z')`, next)
	if err != nil {
		t.Fatalf("failed to seed invoice counter: %v", err)
	}
	return database
}

// NewTestUoW creates a UnitOfWork backed by the given test database.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}

// CounterValue reads the stored next number directly.
func CounterValue(t *testing.T, database *sql.DB) int64 {
	t.Helper()
	var n int64
	if err := database.QueryRow(`SELECT next_num FROM invoice_counter WHERE id = 1`).Scan(&n); err != nil {
		t.Fatalf("reading invoice counter: %v", err)
	}
	return n
}
