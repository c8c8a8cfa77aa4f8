package testutil

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/invoicer/internal/config"
	"github.com/alexanderramin/invoicer/internal/domain"
)

var testEntryCounter atomic.Int64

// Project options
type ProjectOption func(*domain.ProjectRecord)

// WithRate sets the hourly rate in minor units.
func WithRate(amount int64, currency string) ProjectOption {
	return func(p *domain.ProjectRecord) {
		p.HourlyRate = &domain.HourlyRate{Amount: amount, Currency: currency}
	}
}

func WithoutRate() ProjectOption {
	return func(p *domain.ProjectRecord) {
		p.HourlyRate = nil
	}
}

// NewTestProject returns a project billed at $100.00/h unless overridden.
func NewTestProject(id, name, clientName string, opts ...ProjectOption) domain.ProjectRecord {
	p := domain.ProjectRecord{
		ID:         id,
		Name:       name,
		ClientName: clientName,
		HourlyRate: &domain.HourlyRate{Amount: 10000, Currency: "USD"},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// NewTestEntry returns a stopped time entry with a generated id.
func NewTestEntry(projectID, description, duration string) domain.TimeEntry {
	n := testEntryCounter.Add(1)
	return domain.TimeEntry{
		ID:          fmt.Sprintf("entry-%d", n),
		ProjectID:   projectID,
		Description: description,
		Duration:    duration,
		TagIDs:      []string{"uninvoiced"},
	}
}

// NewPricedItem returns a work item already priced with step minutes.
func NewPricedItem(project, description, rate, hours string, step int) *domain.WorkItem {
	item := domain.NewWorkItem(project, project, description,
		decimal.RequireFromString(rate), decimal.RequireFromString(hours))
	if err := item.Apply(step); err != nil {
		panic(err)
	}
	return item
}

// NewTestProfile returns a valid profile with two clients: "Acme" billed in
// GBP with a 15 minute step, and "Globex" billed in USD with a 6 minute step.
func NewTestProfile() *config.Profile {
	return &config.Profile{
		Sender: config.SenderProfile{
			Name:    "Jane Doe",
			Email:   "jane@example.com",
			Address: []string{"1 Main St", "Springfield"},
		},
		Clockify: config.ClockifyProfile{
			WorkspaceID:     "ws",
			UserID:          "user",
			UninvoicedTagID: "uninvoiced",
		},
		BankAccounts: map[string]config.BankAccountProfile{
			"usd": {Holder: "Jane Doe", Bank: "First Bank", Number: "123456", Routing: "026009593"},
			"gbp": {Holder: "Jane Doe", Bank: "Wise", IBAN: "GB33BUKB20201555555555", SWIFT: "BUKBGB22"},
		},
		Clients: map[string]config.ClientProfile{
			"Acme": {
				Address:      []string{"Acme Ltd", "London"},
				BillTimeStep: 15,
				CurrencyCode: "gbp",
				DaysUntilDue: 30,
			},
			"Globex": {
				Address:      []string{"Globex Corp", "Cypress Creek"},
				BillTimeStep: 6,
				CurrencyCode: "usd",
				DaysUntilDue: 14,
			},
		},
	}
}

// FakeTimeTracking serves fixed entries and projects.
type FakeTimeTracking struct {
	Entries     []domain.TimeEntry
	ProjectList []domain.ProjectRecord
	EntriesErr  error
	ProjectsErr error
}

func (f *FakeTimeTracking) UninvoicedEntries(ctx context.Context) ([]domain.TimeEntry, error) {
	if f.EntriesErr != nil {
		return nil, f.EntriesErr
	}
	return f.Entries, nil
}

func (f *FakeTimeTracking) Projects(ctx context.Context) ([]domain.ProjectRecord, error) {
	if f.ProjectsErr != nil {
		return nil, f.ProjectsErr
	}
	return f.ProjectList, nil
}

// RateTable answers rate lookups from a fixed map and counts calls.
// Currencies not in the map fail with Err (or a generic error).
type RateTable struct {
	Rates map[domain.Currency]string
	Err   error
	calls atomic.Int32
}

func (r *RateTable) RateFromUSD(ctx context.Context, target domain.Currency) (decimal.Decimal, error) {
	r.calls.Add(1)
	rate, ok := r.Rates[target]
	if !ok {
		if r.Err != nil {
			return decimal.Zero, r.Err
		}
		return decimal.Zero, fmt.Errorf("no rate for %s", target)
	}
	return decimal.RequireFromString(rate), nil
}

func (r *RateTable) Calls() int {
	return int(r.calls.Load())
}
