package repository

import (
	"context"
	"time"
)

// IssuedNumber records one invoice number handed out by a run.
type IssuedNumber struct {
	Number     int64
	ClientName string
	RunID      string
	IssuedAt   time.Time
}

// InvoiceCounterRepo persists the next invoice number and the log of
// numbers already issued.
type InvoiceCounterRepo interface {
	// Current returns the next number to issue without changing it.
	Current(ctx context.Context) (int64, error)
	// Allocate advances the counter and returns the pre-increment value.
	Allocate(ctx context.Context) (int64, error)
	// Set overwrites the counter, creating it if needed.
	Set(ctx context.Context, next int64) error
	RecordIssue(ctx context.Context, issue IssuedNumber) error
	ListIssuesByRun(ctx context.Context, runID string) ([]IssuedNumber, error)
	LastIssue(ctx context.Context) (*IssuedNumber, error)
}
