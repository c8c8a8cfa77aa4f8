package repository

import (
	"errors"

	ierr "github.com/alexanderramin/invoicer/internal/errors"
)

var (
	// ErrCounterMissing means the counter was never initialized.
	ErrCounterMissing = errors.New("invoice counter is not initialized")

	// ErrCounterCorrupt means the stored value is not a non-negative integer.
	ErrCounterCorrupt = errors.New("invoice counter is corrupt")

	// ErrDuplicateNumber means the number was already issued once.
	ErrDuplicateNumber = errors.New("invoice number already issued")
)

func counterMissing() error {
	return ierr.WithError(ErrCounterMissing).
		WithHint("run `invoicer counter init <next-number>` or `invoicer counter import <file>`").
		Mark(ierr.ErrConfiguration)
}

func counterCorrupt(stored string) error {
	return ierr.WithError(ErrCounterCorrupt).
		WithMessagef("stored value %q", stored).
		WithHint("repair the invoice_counter row before issuing invoices").
		Mark(ierr.ErrConfiguration)
}
