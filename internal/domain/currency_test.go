package domain

import (
	"errors"
	"testing"

	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("GBP")
	require.NoError(t, err)
	assert.Equal(t, CurrencyGBP, c)
	assert.Equal(t, "£", c.Symbol())
	assert.Equal(t, "GBP", c.Code())
	assert.False(t, c.IsBase())
	assert.True(t, CurrencyUSD.IsBase())
}

func TestParseCurrency_Unsupported(t *testing.T) {
	_, err := ParseCurrency("jpy")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedCurrency))
	assert.True(t, ierr.IsConfiguration(err))
}

func TestInvoiceNumber_String(t *testing.T) {
	assert.Equal(t, "000 007", InvoiceNumber(7).String())
	assert.Equal(t, "000 042", InvoiceNumber(42).String())
	assert.Equal(t, "123 456", InvoiceNumber(123456).String())
	assert.Equal(t, "000 000", InvoiceNumber(0).String())
	assert.Equal(t, "1234 567", InvoiceNumber(1234567).String())
}
