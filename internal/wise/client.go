// Package wise looks up exchange rates from the Wise API.
package wise

import (
	"context"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/invoicer/internal/domain"
	ierr "github.com/alexanderramin/invoicer/internal/errors"
	"github.com/alexanderramin/invoicer/internal/httpclient"
)

const DefaultBaseURL = "https://api.transferwise.com"

type Config struct {
	BaseURL string
	APIKey  string
}

// Client implements billing.RateLookup.
type Client struct {
	http httpclient.Client
	cfg  Config
}

func NewClient(http httpclient.Client, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{http: http, cfg: cfg}
}

// rateDTO keeps the JSON number textual so the rate never passes through
// a float.
type rateDTO struct {
	Rate   decimal.Decimal `json:"rate"`
	Source string          `json:"source"`
	Target string          `json:"target"`
}

// RateFromUSD returns how many units of target one US dollar buys.
func (c *Client) RateFromUSD(ctx context.Context, target domain.Currency) (decimal.Decimal, error) {
	if target.IsBase() {
		return decimal.NewFromInt(1), nil
	}
	query := url.Values{
		"source": {string(domain.BaseCurrency)},
		"target": {string(target)},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var rates []rateDTO
	if err := httpclient.GetJSON(ctx, c.http, c.cfg.BaseURL+"/v1/rates?"+query.Encode(), headers, &rates); err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithMessagef("wise rate usd->%s", target).
			Mark(ierr.ErrUpstreamFetch)
	}
	if len(rates) == 0 {
		return decimal.Zero, ierr.NewErrorf("wise returned no rate for usd->%s", target).
			Mark(ierr.ErrUpstreamFetch)
	}
	if !rates[0].Rate.IsPositive() {
		return decimal.Zero, ierr.NewErrorf("wise returned non-positive rate %s for usd->%s", rates[0].Rate, target).
			Mark(ierr.ErrUpstreamFetch)
	}
	return rates[0].Rate, nil
}
