package sources

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/coinscout/coinscout/internal/cache"
	"github.com/coinscout/coinscout/internal/domain"
)

// ExchangeSource wraps an ExchangeAPI with the per-endpoint caches the
// scanner relies on. Klines are intentionally uncached: each scan wants
// the freshest bars and already self-throttles.
type ExchangeSource struct {
	api ExchangeAPI

	symbols *cache.TTL[[]domain.TradableSymbol]
	tickers *cache.TTL[[]domain.TickerSnapshot]
	books   *cache.TTL[domain.BookTicker]
}

// NewExchangeSource creates the cached exchange facade.
func NewExchangeSource(api ExchangeAPI) *ExchangeSource {
	return &ExchangeSource{
		api:     api,
		symbols: cache.NewTTL[[]domain.TradableSymbol](SymbolsTTL),
		tickers: cache.NewTTL[[]domain.TickerSnapshot](TickersTTL),
		books:   cache.NewTTL[domain.BookTicker](BookTickerTTL),
	}
}

// Symbols returns the exchange listing, cached for SymbolsTTL. On upstream
// failure a previously fetched listing is served stale.
func (e *ExchangeSource) Symbols(ctx context.Context) ([]domain.TradableSymbol, error) {
	if cached, ok := e.symbols.Get("all"); ok {
		return cached, nil
	}
	fresh, err := e.api.Symbols(ctx)
	if err != nil {
		if stale, age, ok := e.symbols.Peek("all"); ok {
			log.Warn().Err(err).Dur("age", age).Msg("symbol list fetch failed, serving stale")
			return stale, nil
		}
		return nil, err
	}
	e.symbols.Set("all", fresh)
	return fresh, nil
}

// Tickers24h returns the bulk ticker snapshot, cached for TickersTTL, with
// the same stale fallback as Symbols.
func (e *ExchangeSource) Tickers24h(ctx context.Context) ([]domain.TickerSnapshot, error) {
	if cached, ok := e.tickers.Get("all"); ok {
		return cached, nil
	}
	fresh, err := e.api.Tickers24h(ctx)
	if err != nil {
		if stale, age, ok := e.tickers.Peek("all"); ok {
			log.Warn().Err(err).Dur("age", age).Msg("ticker snapshot fetch failed, serving stale")
			return stale, nil
		}
		return nil, err
	}
	e.tickers.Set("all", fresh)
	return fresh, nil
}

// BookTicker returns the best bid/ask for one symbol, cached per symbol
// for BookTickerTTL.
func (e *ExchangeSource) BookTicker(ctx context.Context, symbol string) (domain.BookTicker, error) {
	if cached, ok := e.books.Get(symbol); ok {
		return cached, nil
	}
	fresh, err := e.api.BookTicker(ctx, symbol)
	if err != nil {
		return domain.BookTicker{}, err
	}
	e.books.Set(symbol, fresh)
	return fresh, nil
}

// Klines fetches an uncached OHLCV series.
func (e *ExchangeSource) Klines(ctx context.Context, symbol, interval string, limit int) (domain.CandleSeries, error) {
	return e.api.Klines(ctx, symbol, interval, limit)
}
