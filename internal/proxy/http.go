// Package proxy provides implementations of the hub's price call-out
// capability. A proxy is an external component answering price queries for a
// symbol; the hub only sees quotes or failures.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LeJamon/goOracleHub/internal/hub"
	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// HTTPQuoter quotes through HTTP proxy endpoints. Proxy addresses are mapped
// to base URLs at construction time; an address without an endpoint fails
// the call-out like any unreachable proxy. The client timeout is the only
// cancellation this layer adds.
type HTTPQuoter struct {
	endpoints map[string]string
	client    *http.Client
}

// NewHTTPQuoter builds a quoter from a proxy address -> base URL map
func NewHTTPQuoter(endpoints map[string]string) *HTTPQuoter {
	clean := make(map[string]string, len(endpoints))
	for addr, base := range endpoints {
		clean[addr] = strings.TrimRight(base, "/")
	}
	return &HTTPQuoter{
		endpoints: clean,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type priceResponse struct {
	Rate        decimal.Decimal `json:"rate"`
	LastUpdated int64           `json:"last_updated"`
}

// Quote performs GET <base>/price?symbol=<symbol> against the proxy's
// endpoint and decodes the quote
func (q *HTTPQuoter) Quote(ctx context.Context, proxyAddr string, symbol string) (hub.Quote, error) {
	base, ok := q.endpoints[proxyAddr]
	if !ok || base == "" {
		return hub.Quote{}, fmt.Errorf("no endpoint configured for proxy %s", proxyAddr)
	}

	reqURL := fmt.Sprintf("%s/price?symbol=%s", base, url.QueryEscape(symbol))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return hub.Quote{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return hub.Quote{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return hub.Quote{}, fmt.Errorf("proxy %s returned status %d", proxyAddr, resp.StatusCode)
	}

	var pr priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return hub.Quote{}, fmt.Errorf("proxy %s returned malformed response: %w", proxyAddr, err)
	}

	return hub.Quote{Rate: pr.Rate, LastUpdated: pr.LastUpdated}, nil
}
