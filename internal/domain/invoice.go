package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount holds the payment details printed for one currency.
type BankAccount struct {
	Holder  string
	Bank    string
	Number  string
	Routing string
	IBAN    string
	SWIFT   string
	Address []string
}

// Sender is the invoicing party.
type Sender struct {
	Name    string
	Email   string
	Address []string
}

// InvoiceRecord is everything a renderer needs for one client's invoice.
// It is built once and not modified afterwards.
type InvoiceRecord struct {
	InvoiceDate        time.Time
	InvoiceDue         time.Time
	Client             *Client
	WorkItems          []*WorkItem
	WorkTotal          decimal.Decimal // in BaseCurrency
	ExchangeRate       decimal.Decimal
	WorkTotalConverted decimal.Decimal // in Client.Terms.Currency
	BankAccount        BankAccount
	Sender             Sender
}
