package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/invoicer/internal/db"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
)

// SQLiteInvoiceCounterRepo stores the counter as the single row of the
// invoice_counter table.
type SQLiteInvoiceCounterRepo struct {
	db db.DBTX
}

func NewSQLiteInvoiceCounterRepo(conn db.DBTX) *SQLiteInvoiceCounterRepo {
	return &SQLiteInvoiceCounterRepo{db: conn}
}

func (r *SQLiteInvoiceCounterRepo) Current(ctx context.Context) (int64, error) {
	var (
		raw  sql.NullString
		kind string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT CAST(next_num AS TEXT), typeof(next_num) FROM invoice_counter WHERE id = 1`,
	).Scan(&raw, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, counterMissing()
	}
	if err != nil {
		return 0, ierr.WithError(err).WithMessage("reading invoice counter").Mark(ierr.ErrConfiguration)
	}
	if kind != "integer" {
		return 0, counterCorrupt(raw.String)
	}

	var next int64
	if _, err := fmt.Sscan(raw.String, &next); err != nil || next < 0 {
		return 0, counterCorrupt(raw.String)
	}
	return next, nil
}

// Allocate is a single UPDATE ... RETURNING, so no other writer can observe
// or change the counter between the read and the increment.
func (r *SQLiteInvoiceCounterRepo) Allocate(ctx context.Context) (int64, error) {
	var issued int64
	err := r.db.QueryRowContext(ctx,
		`UPDATE invoice_counter
		SET next_num = next_num + 1, updated_at = ?
		WHERE id = 1 AND typeof(next_num) = 'integer' AND next_num >= 0
		RETURNING next_num - 1`,
		nowUTC(),
	).Scan(&issued)
	if errors.Is(err, sql.ErrNoRows) {
		// Distinguish a missing row from a corrupt one.
		if _, cerr := r.Current(ctx); cerr != nil {
			return 0, cerr
		}
		return 0, counterMissing()
	}
	if err != nil {
		return 0, fmt.Errorf("allocating invoice number: %w", err)
	}
	return issued, nil
}

func (r *SQLiteInvoiceCounterRepo) Set(ctx context.Context, next int64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoice_counter (id, next_num, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET next_num = excluded.next_num, updated_at = excluded.updated_at`,
		next, nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("setting invoice counter to %d: %w", next, err)
	}
	return nil
}

func (r *SQLiteInvoiceCounterRepo) RecordIssue(ctx context.Context, issue IssuedNumber) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invoice_number_issues (number, client_name, run_id, issued_at) VALUES (?, ?, ?, ?)`,
		issue.Number, issue.ClientName, issue.RunID, issue.IssuedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %d", ErrDuplicateNumber, issue.Number)
		}
		return fmt.Errorf("recording issued number %d: %w", issue.Number, err)
	}
	return nil
}

func (r *SQLiteInvoiceCounterRepo) ListIssuesByRun(ctx context.Context, runID string) ([]IssuedNumber, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT number, client_name, run_id, issued_at FROM invoice_number_issues
		WHERE run_id = ? ORDER BY number`, runID)
	if err != nil {
		return nil, fmt.Errorf("listing issued numbers for run %s: %w", runID, err)
	}
	defer rows.Close()

	var issues []IssuedNumber
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, rows.Err()
}

func (r *SQLiteInvoiceCounterRepo) LastIssue(ctx context.Context) (*IssuedNumber, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT number, client_name, run_id, issued_at FROM invoice_number_issues
		ORDER BY number DESC LIMIT 1`)
	issue, err := scanIssue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return issue, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(s scanner) (*IssuedNumber, error) {
	var (
		issue    IssuedNumber
		issuedAt string
	)
	if err := s.Scan(&issue.Number, &issue.ClientName, &issue.RunID, &issuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning issued number: %w", err)
	}
	t, err := time.Parse(time.RFC3339, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing issued_at %q: %w", issuedAt, err)
	}
	issue.IssuedAt = t
	return &issue, nil
}
