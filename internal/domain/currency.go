package domain

import (
	"errors"
	"strings"

	ierr "github.com/alexanderramin/invoicer/internal/errors"
)

// Currency is a supported billing currency. The zero value is not valid.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyGBP Currency = "gbp"
	CurrencyEUR Currency = "eur"
)

// BaseCurrency is the currency project rates are expressed in.
const BaseCurrency = CurrencyUSD

var currencySymbols = map[Currency]string{
	CurrencyUSD: "$",
	CurrencyGBP: "£",
	CurrencyEUR: "€",
}

// ErrUnsupportedCurrency is the cause of every currency lookup failure.
// Errors wrapping it are also marked as configuration errors.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ParseCurrency maps a currency code (any case) to a supported Currency.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := currencySymbols[c]; !ok {
		return "", ierr.WithError(ErrUnsupportedCurrency).
			WithMessagef("currency %q", code).
			WithHint("supported currencies are usd, gbp and eur").
			Mark(ierr.ErrConfiguration)
	}
	return c, nil
}

// Symbol returns the display symbol, e.g. "£" for gbp.
func (c Currency) Symbol() string {
	return currencySymbols[c]
}

// IsBase reports whether no conversion is needed to bill in c.
func (c Currency) IsBase() bool {
	return c == BaseCurrency
}

// Code returns the upper-case ISO code.
func (c Currency) Code() string {
	return strings.ToUpper(string(c))
}
