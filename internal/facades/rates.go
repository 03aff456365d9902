package facades

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/pf-wallet/internal/logger"
)

// RatesClient fetches exchange rate tables from the external rates API.
// A slow or unreachable source fails the call; no stale or fabricated
// rates are ever returned.
type RatesClient struct {
	baseURL string
	client  *http.Client
}

// NewRatesClient creates a client for the rates API at baseURL. Requests are
// bounded by timeout.
func NewRatesClient(baseURL string, timeout time.Duration) *RatesClient {
	return &RatesClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// ratesResponse is the wire format of the external rates API: a base
// currency and target-currency -> rate mapping.
type ratesResponse struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// FetchRates fetches the full rate table for a base currency. Each returned
// entry (target, rate) means 1 unit of base = rate units of target.
func (c *RatesClient) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	u := fmt.Sprintf("%s/latest?base=%s", c.baseURL, url.QueryEscape(base))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Log.Errorw("failed to fetch rates", "base", base, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Log.Errorw("rates API returned non-OK status", "base", base, "status", resp.StatusCode)
		return nil, fmt.Errorf("rates API status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logger.Log.Errorw("failed to decode rates response", "base", base, "error", err)
		return nil, err
	}

	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates API returned no rates for %s", base)
	}

	rates := make(map[string]decimal.Decimal, len(body.Rates))
	for target, rate := range body.Rates {
		rates[target] = rate
	}

	return rates, nil
}
