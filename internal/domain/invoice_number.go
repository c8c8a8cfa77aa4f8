package domain

import "fmt"

// InvoiceNumber is an issued, monotonically increasing invoice identifier.
type InvoiceNumber int64

// String renders the number as six zero-padded digits split into two groups
// of three, e.g. 42 -> "000 042". Numbers above 999999 keep all their digits
// and split before the last three.
func (n InvoiceNumber) String() string {
	s := fmt.Sprintf("%06d", int64(n))
	return s[:len(s)-3] + " " + s[len(s)-3:]
}
