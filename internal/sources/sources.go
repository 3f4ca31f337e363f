// Package sources contains one client per upstream data provider. Each
// client owns its own cache and refresh policy; a failure in one source
// degrades to cached or neutral data and never aborts a scan batch.
package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coinscout/coinscout/internal/domain"
)

// Cache lifetimes, one per source. Independent on purpose.
const (
	SymbolsTTL    = 60 * time.Minute
	TickersTTL    = 60 * time.Second
	BookTickerTTL = 30 * time.Second
	MarketCapTTL  = 10 * time.Minute
	SentimentTTL  = 10 * time.Minute
)

// ExchangeAPI is the raw exchange/market-data upstream.
type ExchangeAPI interface {
	Symbols(ctx context.Context) ([]domain.TradableSymbol, error)
	Tickers24h(ctx context.Context) ([]domain.TickerSnapshot, error)
	BookTicker(ctx context.Context, symbol string) (domain.BookTicker, error)
	Klines(ctx context.Context, symbol, interval string, limit int) (domain.CandleSeries, error)
}

// MarketCapAPI is the raw paged market-capitalization upstream.
type MarketCapAPI interface {
	Listings(ctx context.Context, page, perPage int) ([]domain.MarketCapRecord, error)
}

// SentimentAPI is the raw news/sentiment upstream.
type SentimentAPI interface {
	Posts(ctx context.Context, currency string) ([]Post, error)
	HasCredential() bool
}

// Post is one upstream news item before aggregation.
type Post struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Sentiment   string    `json:"sentiment"`
	VotesUp     int       `json:"votes_up"`
	VotesDown   int       `json:"votes_down"`
	PublishedAt time.Time `json:"published_at"`
}

// getJSON performs a GET with the client's timeout and decodes the body.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d from %s", domain.ErrUpstreamUnavailable, resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", domain.ErrUpstreamUnavailable, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrUpstreamUnavailable, url, err)
	}
	return nil
}
