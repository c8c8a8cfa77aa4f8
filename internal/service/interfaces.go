package service

import (
	"context"
	"time"

	"github.com/alexanderramin/invoicer/internal/domain"
	"github.com/alexanderramin/invoicer/internal/repository"
)

// TimeTrackingSource supplies the raw records a run bills.
type TimeTrackingSource interface {
	UninvoicedEntries(ctx context.Context) ([]domain.TimeEntry, error)
	Projects(ctx context.Context) ([]domain.ProjectRecord, error)
}

// ClientProfiles resolves billing terms for a client name.
type ClientProfiles interface {
	ClientTerms(name string) (domain.ClientTerms, error)
}

// CounterStatus describes the invoice counter for display.
type CounterStatus struct {
	Initialized bool
	Next        domain.InvoiceNumber
	LastIssue   *repository.IssuedNumber
}

// CounterService owns the invoice number sequence.
type CounterService interface {
	// Next issues one number outside any run.
	Next(ctx context.Context) (domain.InvoiceNumber, error)
	// Issue advances the counter and records who the number went to, in
	// one transaction.
	Issue(ctx context.Context, clientName, runID string) (domain.InvoiceNumber, error)
	// Check fails with a configuration error when issuing would fail or
	// could repeat an issued number.
	Check(ctx context.Context) error
	// Peek returns the next number without consuming it.
	Peek(ctx context.Context) (domain.InvoiceNumber, error)
	Status(ctx context.Context) (*CounterStatus, error)
	Init(ctx context.Context, next int64, force bool) error
	ImportLegacy(ctx context.Context, path string, force bool) (domain.InvoiceNumber, error)
	IssuesByRun(ctx context.Context, runID string) ([]repository.IssuedNumber, error)
}

// RunRequest configures one invoicing run.
type RunRequest struct {
	// InvoiceDate defaults to today.
	InvoiceDate time.Time
	// Confirm, when set, is shown the plan after validation and before any
	// number is issued. Returning false cancels the run.
	Confirm func(plan *RunPlan) (bool, error)
}

// InvoicingService runs the billing pipeline.
type InvoicingService interface {
	Run(ctx context.Context, req RunRequest) (*RunReport, error)
	// Preview computes the same invoices without issuing numbers or
	// exporting anything.
	Preview(ctx context.Context, req RunRequest) (*RunReport, error)
}
