package formatter

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/invoicer/internal/domain"
)

// Money renders an amount with the currency symbol and thousands
// separators, rounded half away from zero to cents: "£1,234.50".
func Money(amount decimal.Decimal, c domain.Currency) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Abs()
	}
	cents := rounded.Sub(rounded.Truncate(0)).Shift(2).IntPart()
	return fmt.Sprintf("%s%s%s.%02d", sign, c.Symbol(), humanize.Comma(rounded.IntPart()), cents)
}

// Hours renders a decimal hour count with at most two decimals.
func Hours(h decimal.Decimal) string {
	return h.Round(2).String() + "h"
}

// Date renders a calendar date, e.g. "Oct 14, 2026".
func Date(t time.Time) string {
	return t.Format("Jan 2, 2006")
}
