package sources

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/coinscout/coinscout/internal/cache"
	"github.com/coinscout/coinscout/internal/domain"
)

// Paging of the market-capitalization listing: 2 pages of 250 rows covers
// the top 500 assets, comfortably more than the analysis set.
const (
	marketCapPages   = 2
	marketCapPerPage = 250
)

// CoinGeckoClient implements MarketCapAPI against the CoinGecko REST API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewCoinGeckoClient creates a market-cap client with a per-request timeout.
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = "https://api.coingecko.com/api/v3"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "coingecko",
			Timeout: 60 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

type geckoMarketRow struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	MarketCap     float64 `json:"market_cap"`
	MarketCapRank int     `json:"market_cap_rank"`
}

// Listings fetches one page of the market-cap-ordered coin listing.
func (c *CoinGeckoClient) Listings(ctx context.Context, page, perPage int) ([]domain.MarketCapRecord, error) {
	url := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=%d", c.baseURL, perPage, page)

	var rows []geckoMarketRow
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, getJSON(ctx, c.httpClient, url, &rows)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: coingecko breaker open", domain.ErrUpstreamUnavailable)
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.MarketCapRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.MarketCapRecord{
			Symbol:    strings.ToUpper(r.Symbol),
			Name:      r.Name,
			MarketCap: r.MarketCap,
			Rank:      r.MarketCapRank,
		})
	}
	return out, nil
}

// MarketCapSource builds and caches the uppercase-base-symbol-keyed cap
// table from the paged listing.
type MarketCapSource struct {
	api   MarketCapAPI
	table *cache.TTL[map[string]domain.MarketCapRecord]
}

// NewMarketCapSource creates the cached market-cap facade.
func NewMarketCapSource(api MarketCapAPI) *MarketCapSource {
	return &MarketCapSource{
		api:   api,
		table: cache.NewTTL[map[string]domain.MarketCapRecord](MarketCapTTL),
	}
}

// Snapshot returns the current cap table, fetching all pages on cache miss.
// Duplicate symbols across pages resolve to the highest market cap. On
// upstream failure a previously built table is served stale; with no prior
// table the error propagates and callers treat caps as unknown.
func (m *MarketCapSource) Snapshot(ctx context.Context) (map[string]domain.MarketCapRecord, error) {
	if cached, ok := m.table.Get("all"); ok {
		return cached, nil
	}

	merged := make(map[string]domain.MarketCapRecord)
	for page := 1; page <= marketCapPages; page++ {
		rows, err := m.api.Listings(ctx, page, marketCapPerPage)
		if err != nil {
			if stale, age, ok := m.table.Peek("all"); ok {
				log.Warn().Err(err).Int("page", page).Dur("age", age).Msg("market cap fetch failed, serving stale")
				return stale, nil
			}
			return nil, err
		}
		for _, r := range rows {
			if existing, ok := merged[r.Symbol]; ok && existing.MarketCap >= r.MarketCap {
				continue
			}
			merged[r.Symbol] = r
		}
	}

	m.table.Set("all", merged)
	return merged, nil
}
