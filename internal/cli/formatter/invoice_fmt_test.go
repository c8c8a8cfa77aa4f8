package formatter

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/repository"
	"github.com/alexanderramin/invoicer/internal/service"
	"github.com/alexanderramin/invoicer/internal/testutil"
)

func acmeRecord(t *testing.T) *domain.InvoiceRecord {
	t.Helper()
	items := []*domain.WorkItem{
		testutil.NewPricedItem("Website", "design", "100", "1.02", 15),
		testutil.NewPricedItem("Website", "dev", "100", "2", 15),
	}
	client, err := domain.NewClient("Acme", domain.ClientTerms{BillTimeStep: 15, Currency: domain.CurrencyGBP, DaysUntilDue: 30}, items, 41)
	require.NoError(t, err)
	date := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	return &domain.InvoiceRecord{
		InvoiceDate:        date,
		InvoiceDue:         client.DueDate(date),
		Client:             client,
		WorkItems:          items,
		WorkTotal:          decimal.RequireFromString("325"),
		ExchangeRate:       decimal.RequireFromString("0.79"),
		WorkTotalConverted: decimal.RequireFromString("256.75"),
	}
}

func TestFormatRunReport(t *testing.T) {
	rec := acmeRecord(t)
	gapErr := ierr.WithError(errors.New("rate service down")).
		WithHint("try again later").
		Mark(ierr.ErrUpstreamFetch)

	out := FormatRunReport(&service.RunReport{
		RunID:       "run-1",
		InvoiceDate: rec.InvoiceDate,
		Results: []service.ClientResult{
			{Client: "Acme", Number: 41, Issued: true, Record: rec, Path: "out/acme_000_041.json"},
			{Client: "Globex", Number: 42, Issued: true, Err: gapErr},
		},
	})

	assert.Contains(t, out, "INVOICES")
	assert.Contains(t, out, "Oct 14, 2026")
	assert.Contains(t, out, "000 041")
	assert.Contains(t, out, "$325.00")
	assert.Contains(t, out, "£256.75")
	assert.Contains(t, out, "3.25h")
	assert.Contains(t, out, "1 client(s) failed")
	assert.Contains(t, out, "[upstream_fetch]")
	assert.Contains(t, out, "hint: try again later")
	assert.Contains(t, out, "Issued without an invoice: 000 042")
	assert.Contains(t, out, "wrote out/acme_000_041.json")
}

func TestFormatRunReport_Cancelled(t *testing.T) {
	out := FormatRunReport(&service.RunReport{Cancelled: true})
	assert.Contains(t, out, "No invoice numbers were issued")
}

func TestFormatRunReport_Empty(t *testing.T) {
	out := FormatRunReport(&service.RunReport{Preview: true})
	assert.Contains(t, out, "PREVIEW")
	assert.Contains(t, out, "No uninvoiced time entries")
}

func TestFormatInvoiceDetail(t *testing.T) {
	out := FormatInvoiceDetail(acmeRecord(t))
	assert.Contains(t, out, "Acme  #000 041")
	assert.Contains(t, out, "due Nov 13, 2026")
	assert.Contains(t, out, "design")
	assert.Contains(t, out, "1.25h")
	assert.Contains(t, out, "$125.00")
	assert.Contains(t, out, "Rate        0.79")
	assert.Contains(t, out, "£256.75")
}

func TestFormatPlan(t *testing.T) {
	out := FormatPlan(&service.RunPlan{
		NextNumber: 7,
		Clients: []service.PlannedClient{
			{Name: "Acme", Terms: domain.ClientTerms{Currency: domain.CurrencyGBP}},
			{Name: "Globex", Terms: domain.ClientTerms{Currency: domain.CurrencyUSD}},
		},
		Rejected: []service.ClientResult{{Client: "Initech"}},
	})
	assert.Contains(t, out, "000 007")
	assert.Contains(t, out, "000 008")
	assert.Contains(t, out, "GBP")
	assert.Contains(t, out, "1 client(s) skipped")
}

func TestFormatCounterStatus(t *testing.T) {
	out := FormatCounterStatus(&service.CounterStatus{})
	assert.Contains(t, out, "Not initialized")

	out = FormatCounterStatus(&service.CounterStatus{
		Initialized: true,
		Next:        43,
		LastIssue: &repository.IssuedNumber{
			Number:     42,
			ClientName: "Globex",
			IssuedAt:   time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC),
		},
	})
	assert.Contains(t, out, "000 043")
	assert.Contains(t, out, "000 042 to Globex on Oct 14, 2026")
}

func TestFormatError(t *testing.T) {
	err := ierr.NewError("no profile for client \"Initech\"").
		WithHint("add it").
		Mark(ierr.ErrConfiguration)
	out := FormatError(err)
	assert.Contains(t, out, "Error: no profile for client")
	assert.Contains(t, out, "hint: add it")
}
