package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotPriced is returned when a work item's derived values are read before
// the item has been rounded and priced.
var ErrNotPriced = errors.New("work item has not been priced")

// WorkItem is one billable invoice line: all of a client's time for a single
// task description.
type WorkItem struct {
	Project     string
	ProjectID   string
	Description string
	Rate        decimal.Decimal // per hour, in the rate currency
	Hours       decimal.Decimal // raw, unrounded

	priced       bool
	roundedHours decimal.Decimal
	total        decimal.Decimal
}

// NewWorkItem creates an unpriced work item.
func NewWorkItem(project, projectID, description string, rate, hours decimal.Decimal) *WorkItem {
	return &WorkItem{
		Project:     project,
		ProjectID:   projectID,
		Description: description,
		Rate:        rate,
		Hours:       hours,
	}
}

// Apply rounds the item's hours to stepMinutes and prices them. The derived
// values are computed once; applying again with the same step is a no-op and
// a different step is rejected.
func (w *WorkItem) Apply(stepMinutes int) error {
	rounded, err := RoundUp(w.Hours, stepMinutes)
	if err != nil {
		return fmt.Errorf("pricing %q: %w", w.Description, err)
	}
	if w.priced {
		if !rounded.Equal(w.roundedHours) {
			return fmt.Errorf("work item %q already priced with a different time step", w.Description)
		}
		return nil
	}
	w.roundedHours = rounded
	w.total = Price(rounded, w.Rate)
	w.priced = true
	return nil
}

func (w *WorkItem) Priced() bool {
	return w.priced
}

// RoundedHours returns the billed hours, or ErrNotPriced.
func (w *WorkItem) RoundedHours() (decimal.Decimal, error) {
	if !w.priced {
		return decimal.Zero, ErrNotPriced
	}
	return w.roundedHours, nil
}

// Total returns rate x rounded hours, or ErrNotPriced.
func (w *WorkItem) Total() (decimal.Decimal, error) {
	if !w.priced {
		return decimal.Zero, ErrNotPriced
	}
	return w.total, nil
}
