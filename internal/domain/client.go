package domain

import (
	"fmt"
	"time"
)

// ClientTerms are the billing terms taken from a client's profile.
type ClientTerms struct {
	Address      []string
	BillTimeStep int // minutes
	Currency     Currency
	DaysUntilDue int
}

// Validate checks the terms without consulting any other state.
func (t ClientTerms) Validate() error {
	if t.BillTimeStep <= 0 {
		return fmt.Errorf("bill_time_step must be positive, got %d", t.BillTimeStep)
	}
	if t.DaysUntilDue < 0 {
		return fmt.Errorf("days_until_due must not be negative, got %d", t.DaysUntilDue)
	}
	if _, err := ParseCurrency(string(t.Currency)); err != nil {
		return err
	}
	return nil
}

// Client is one invoice recipient for the current run.
type Client struct {
	Name       string
	WorkItems  []*WorkItem
	InvoiceNum InvoiceNumber
	Terms      ClientTerms
}

// NewClient attaches items and an issued invoice number to a client and
// prices every item with the client's bill time step.
func NewClient(name string, terms ClientTerms, items []*WorkItem, num InvoiceNumber) (*Client, error) {
	if err := terms.Validate(); err != nil {
		return nil, fmt.Errorf("client %q: %w", name, err)
	}
	for _, item := range items {
		if err := item.Apply(terms.BillTimeStep); err != nil {
			return nil, fmt.Errorf("client %q: %w", name, err)
		}
	}
	return &Client{
		Name:       name,
		WorkItems:  items,
		InvoiceNum: num,
		Terms:      terms,
	}, nil
}

// DueDate is the invoice date plus the client's payment terms.
func (c *Client) DueDate(invoiceDate time.Time) time.Time {
	return invoiceDate.AddDate(0, 0, c.Terms.DaysUntilDue)
}
