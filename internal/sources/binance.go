package sources

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/coinscout/coinscout/internal/domain"
)

// leveragedSuffixes identifies leveraged-product base assets: legacy
// long/short tokens (UP/DOWN, BULL/BEAR) and fixed-multiple products.
var leveragedSuffixes = []string{
	"UP", "DOWN", "BULL", "BEAR",
	"2L", "2S", "3L", "3S", "4L", "4S", "5L", "5S",
}

// IsLeveragedBase reports whether a base asset looks like a leveraged product.
func IsLeveragedBase(base string) bool {
	base = strings.ToUpper(base)
	for _, suffix := range leveragedSuffixes {
		// Require a real prefix so assets like "UP" itself don't match.
		if len(base) > len(suffix) && strings.HasSuffix(base, suffix) {
			return true
		}
	}
	return false
}

// BinanceClient implements ExchangeAPI against the Binance spot REST API.
type BinanceClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewBinanceClient creates an exchange client with a per-request timeout
// and a circuit breaker shared across its endpoints.
func NewBinanceClient(baseURL string, timeout time.Duration) *BinanceClient {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BinanceClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "binance",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

type binanceExchangeInfo struct {
	Symbols []struct {
		Symbol     string `json:"symbol"`
		BaseAsset  string `json:"baseAsset"`
		QuoteAsset string `json:"quoteAsset"`
		Status     string `json:"status"`
	} `json:"symbols"`
}

// Symbols fetches the full exchange listing with derived leveraged flags.
func (b *BinanceClient) Symbols(ctx context.Context) ([]domain.TradableSymbol, error) {
	var info binanceExchangeInfo
	if err := b.get(ctx, "/api/v3/exchangeInfo", &info); err != nil {
		return nil, err
	}

	out := make([]domain.TradableSymbol, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		out = append(out, domain.TradableSymbol{
			Symbol:     s.Symbol,
			BaseAsset:  s.BaseAsset,
			QuoteAsset: s.QuoteAsset,
			Trading:    s.Status == "TRADING",
			Leveraged:  IsLeveragedBase(s.BaseAsset),
		})
	}
	return out, nil
}

type binanceTicker struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	QuoteVolume        string `json:"quoteVolume"`
}

// Tickers24h fetches the bulk 24h ticker snapshot for all symbols.
func (b *BinanceClient) Tickers24h(ctx context.Context) ([]domain.TickerSnapshot, error) {
	var rows []binanceTicker
	if err := b.get(ctx, "/api/v3/ticker/24hr", &rows); err != nil {
		return nil, err
	}

	out := make([]domain.TickerSnapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.TickerSnapshot{
			Symbol:         r.Symbol,
			Price:          parseFloat(r.LastPrice),
			ChangePct24h:   parseFloat(r.PriceChangePercent),
			QuoteVolume24h: parseFloat(r.QuoteVolume),
		})
	}
	return out, nil
}

type binanceBookTicker struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	AskPrice string `json:"askPrice"`
}

// BookTicker fetches the best bid/ask for one symbol.
func (b *BinanceClient) BookTicker(ctx context.Context, symbol string) (domain.BookTicker, error) {
	var row binanceBookTicker
	if err := b.get(ctx, "/api/v3/ticker/bookTicker?symbol="+symbol, &row); err != nil {
		return domain.BookTicker{}, err
	}
	return domain.BookTicker{
		Symbol: row.Symbol,
		Bid:    parseFloat(row.BidPrice),
		Ask:    parseFloat(row.AskPrice),
	}, nil
}

// Klines fetches an ordered OHLCV series for one symbol+interval.
func (b *BinanceClient) Klines(ctx context.Context, symbol, interval string, limit int) (domain.CandleSeries, error) {
	path := fmt.Sprintf("/api/v3/klines?symbol=%s&interval=%s&limit=%d", symbol, interval, limit)

	// Binance kline rows are positional arrays mixing numbers and strings.
	var raw [][]any
	if err := b.get(ctx, path, &raw); err != nil {
		return domain.CandleSeries{}, err
	}

	series := domain.CandleSeries{Symbol: symbol, Interval: interval, Candles: make([]domain.Candle, 0, len(raw))}
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		openTime, _ := row[0].(float64)
		series.Candles = append(series.Candles, domain.Candle{
			OpenTime: time.UnixMilli(int64(openTime)),
			Open:     parseAnyFloat(row[1]),
			High:     parseAnyFloat(row[2]),
			Low:      parseAnyFloat(row[3]),
			Close:    parseAnyFloat(row[4]),
			Volume:   parseAnyFloat(row[5]),
		})
	}
	return series, nil
}

func (b *BinanceClient) get(ctx context.Context, path string, out any) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, getJSON(ctx, b.httpClient, b.baseURL+path, out)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("%w: binance breaker open", domain.ErrUpstreamUnavailable)
	}
	return err
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseAnyFloat(v any) float64 {
	switch t := v.(type) {
	case string:
		return parseFloat(t)
	case float64:
		return t
	default:
		return 0
	}
}
