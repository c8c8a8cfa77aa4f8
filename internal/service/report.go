package service

import (
	"time"

	"github.com/samber/lo"

	"github.com/alexanderramin/invoicer/internal/domain"
)

// PlannedClient is a client that passed validation and aggregation.
type PlannedClient struct {
	Name      string
	Terms     domain.ClientTerms
	WorkItems []*domain.WorkItem
}

// RunPlan is what a run is about to invoice, shown before numbers are
// issued. Rejected holds clients whose records are malformed; they will
// not receive a number.
type RunPlan struct {
	RunID       string
	InvoiceDate time.Time
	NextNumber  domain.InvoiceNumber
	Clients     []PlannedClient
	Rejected    []ClientResult
}

// ClientResult is the outcome for one client.
type ClientResult struct {
	Client string
	// Number is set when a number was issued (or, in a preview, would be).
	Number domain.InvoiceNumber
	Issued bool
	Record *domain.InvoiceRecord
	Path   string
	Err    error
}

func (r ClientResult) OK() bool {
	return r.Err == nil
}

// RunReport summarizes a run. Results are in processing order.
type RunReport struct {
	RunID       string
	InvoiceDate time.Time
	Preview     bool
	Cancelled   bool
	Results     []ClientResult
}

func (r *RunReport) Succeeded() []ClientResult {
	return lo.Filter(r.Results, func(c ClientResult, _ int) bool { return c.OK() })
}

func (r *RunReport) Failed() []ClientResult {
	return lo.Filter(r.Results, func(c ClientResult, _ int) bool { return !c.OK() })
}

// Gaps are numbers that were issued but produced no invoice.
func (r *RunReport) Gaps() []domain.InvoiceNumber {
	return lo.FilterMap(r.Results, func(c ClientResult, _ int) (domain.InvoiceNumber, bool) {
		return c.Number, c.Issued && !c.OK()
	})
}
