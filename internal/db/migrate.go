package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// The counter table holds at most one row. It is never seeded here: a
// missing row means the counter was never initialized, which must stop a run
// instead of silently starting from zero.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS invoice_counter (
		id         INTEGER PRIMARY KEY CHECK(id = 1),
		next_num   INTEGER NOT NULL CHECK(next_num >= 0),
		updated_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS invoice_number_issues (
		number      INTEGER PRIMARY KEY,
		client_name TEXT NOT NULL,
		run_id      TEXT NOT NULL,
		issued_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_issues_run ON invoice_number_issues(run_id)`,
}
