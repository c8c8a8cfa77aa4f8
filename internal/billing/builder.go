package billing

import (
	"context"
	"time"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/shopspring/decimal"
)

// RateLookup converts from the base currency.
type RateLookup interface {
	RateFromUSD(ctx context.Context, target domain.Currency) (decimal.Decimal, error)
}

// RateLookupFunc adapts a function to RateLookup.
type RateLookupFunc func(ctx context.Context, target domain.Currency) (decimal.Decimal, error)

func (f RateLookupFunc) RateFromUSD(ctx context.Context, target domain.Currency) (decimal.Decimal, error) {
	return f(ctx, target)
}

// Builder assembles invoice records for priced clients.
type Builder struct {
	rates        RateLookup
	sender       domain.Sender
	bankAccounts map[domain.Currency]domain.BankAccount
}

func NewBuilder(rates RateLookup, sender domain.Sender, bankAccounts map[domain.Currency]domain.BankAccount) *Builder {
	return &Builder{rates: rates, sender: sender, bankAccounts: bankAccounts}
}

// BankAccount returns the account used for invoices in currency c.
func (b *Builder) BankAccount(c domain.Currency) (domain.BankAccount, error) {
	account, ok := b.bankAccounts[c]
	if !ok {
		return domain.BankAccount{}, ierr.NewErrorf("no bank account for currency %s", c.Code()).
			WithHintf("add a bank_accounts.%s entry to the profile", c).
			Mark(ierr.ErrConfiguration)
	}
	return account, nil
}

// Build computes totals, converts them into the client's currency and dates
// the invoice. A failed rate lookup is returned as an upstream error and is
// not retried here.
func (b *Builder) Build(ctx context.Context, client *domain.Client, invoiceDate time.Time) (*domain.InvoiceRecord, error) {
	account, err := b.BankAccount(client.Terms.Currency)
	if err != nil {
		return nil, err
	}

	workTotal := decimal.Zero
	for _, item := range client.WorkItems {
		total, err := item.Total()
		if err != nil {
			return nil, ierr.WithError(err).
				WithMessagef("client %q, item %q", client.Name, item.Description).
				Mark(ierr.ErrDataShape)
		}
		workTotal = workTotal.Add(total)
	}

	exchangeRate := decimal.NewFromInt(1)
	converted := workTotal
	if !client.Terms.Currency.IsBase() {
		exchangeRate, err = b.rates.RateFromUSD(ctx, client.Terms.Currency)
		if err != nil {
			return nil, ierr.WithError(err).
				WithMessagef("exchange rate usd->%s for client %q", client.Terms.Currency, client.Name).
				Mark(ierr.ErrUpstreamFetch)
		}
		converted = workTotal.Mul(exchangeRate)
	}

	return &domain.InvoiceRecord{
		InvoiceDate:        invoiceDate,
		InvoiceDue:         client.DueDate(invoiceDate),
		Client:             client,
		WorkItems:          client.WorkItems,
		WorkTotal:          workTotal,
		ExchangeRate:       exchangeRate,
		WorkTotalConverted: converted,
		BankAccount:        account,
		Sender:             b.sender,
	}, nil
}
