package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.coingecko.com/api/v3"
	solanaID       = "solana"
)

// Fetcher retrieves the SOL price from CoinGecko.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	currency string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at another CoinGecko-compatible API.
func WithBaseURL(u string) Option {
	return func(f *Fetcher) { f.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// NewFetcher creates a new price fetcher quoting in currency (default usd).
func NewFetcher(currency string, opts ...Option) *Fetcher {
	if currency == "" {
		currency = "usd"
	}
	f := &Fetcher{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  defaultBaseURL,
		currency: strings.ToLower(currency),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Currency returns the quote currency, lower-case.
func (f *Fetcher) Currency() string { return f.currency }

// SOL returns the price of one SOL.
func (f *Fetcher) SOL(ctx context.Context) (float64, error) {
	q := url.Values{}
	q.Set("ids", solanaID)
	q.Set("vs_currencies", f.currency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("building price request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching prices: HTTP %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("reading price response: %w", err)
	}

	// Response: {"solana":{"usd":142.17}}
	var raw map[string]map[string]float64
	if err := json.Unmarshal(body, &raw); err != nil {
		return 0, fmt.Errorf("parsing price response: %w", err)
	}
	p, ok := raw[solanaID][f.currency]
	if !ok {
		return 0, fmt.Errorf("price not available in %s", f.currency)
	}
	return p, nil
}

// Value converts lamports to the quote currency at price per SOL.
func Value(lamports uint64, price float64) float64 {
	return float64(lamports) / 1e9 * price
}

// Format renders an amount in the quote currency: "$12.34" for usd,
// "12.34 EUR" otherwise.
func Format(amount float64, currency string) string {
	if strings.EqualFold(currency, "usd") {
		return fmt.Sprintf("$%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}
