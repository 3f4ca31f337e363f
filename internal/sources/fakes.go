package sources

import (
	"context"
	"sync"
	"time"

	"github.com/coinscout/coinscout/internal/domain"
)

// FakeExchange is a deterministic ExchangeAPI for tests and offline runs.
type FakeExchange struct {
	mu          sync.Mutex
	SymbolList  []domain.TradableSymbol
	TickerList  []domain.TickerSnapshot
	Books       map[string]domain.BookTicker
	Series      map[string]domain.CandleSeries // keyed symbol|interval
	Err         error
	SymbolCalls int
	TickerCalls int
}

func (f *FakeExchange) Symbols(ctx context.Context) ([]domain.TradableSymbol, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SymbolCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.SymbolList, nil
}

func (f *FakeExchange) Tickers24h(ctx context.Context) ([]domain.TickerSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TickerCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.TickerList, nil
}

func (f *FakeExchange) BookTicker(ctx context.Context, symbol string) (domain.BookTicker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return domain.BookTicker{}, f.Err
	}
	book, ok := f.Books[symbol]
	if !ok {
		return domain.BookTicker{}, domain.ErrUpstreamUnavailable
	}
	return book, nil
}

func (f *FakeExchange) Klines(ctx context.Context, symbol, interval string, limit int) (domain.CandleSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return domain.CandleSeries{}, f.Err
	}
	series, ok := f.Series[symbol+"|"+interval]
	if !ok {
		return domain.CandleSeries{}, domain.ErrUpstreamUnavailable
	}
	if limit > 0 && len(series.Candles) > limit {
		series.Candles = series.Candles[len(series.Candles)-limit:]
	}
	return series, nil
}

// FakeMarketCap is a deterministic MarketCapAPI for tests.
type FakeMarketCap struct {
	mu    sync.Mutex
	Pages map[int][]domain.MarketCapRecord
	Err   error
	Calls int
}

func (f *FakeMarketCap) Listings(ctx context.Context, page, perPage int) ([]domain.MarketCapRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Pages[page], nil
}

// FakeSentiment is a deterministic SentimentAPI for tests.
type FakeSentiment struct {
	mu         sync.Mutex
	PostList   []Post
	Err        error
	Credential bool
	Calls      int
	CallTimes  []int64 // UnixNano per call, for gate spacing assertions
}

func (f *FakeSentiment) HasCredential() bool {
	return f.Credential
}

func (f *FakeSentiment) Posts(ctx context.Context, currency string) ([]Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++
	f.CallTimes = append(f.CallTimes, time.Now().UnixNano())
	if f.Err != nil {
		return nil, f.Err
	}
	return f.PostList, nil
}
