package analyze

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinscout/coinscout/internal/domain"
	"github.com/coinscout/coinscout/internal/sources"
	"github.com/coinscout/coinscout/internal/universe"
)

type capStub struct {
	table map[string]domain.MarketCapRecord
	err   error
}

func (c *capStub) Snapshot(ctx context.Context) (map[string]domain.MarketCapRecord, error) {
	return c.table, c.err
}

type sentimentStub struct {
	lastTicker string
	lastName   string
	record     domain.SocialSentimentRecord
}

func (s *sentimentStub) Sentiment(ctx context.Context, ticker, name, timeframe string) domain.SocialSentimentRecord {
	s.lastTicker = ticker
	s.lastName = name
	return s.record
}

// uptrendSeries builds n strictly rising bars with a volume spike on the
// final bar.
func uptrendSeries(symbol, interval string, n int) domain.CandleSeries {
	s := domain.CandleSeries{Symbol: symbol, Interval: interval}
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		close := 100 + float64(i)
		vol := 1000.0
		if i == n-1 {
			vol = 5000
		}
		s.Candles = append(s.Candles, domain.Candle{
			OpenTime: t0.Add(time.Duration(i) * 4 * time.Hour),
			Open:     close - 0.5,
			High:     close + 0.5,
			Low:      close - 1,
			Close:    close,
			Volume:   vol,
		})
	}
	return s
}

func candidate(symbol, base string, price, vol float64) universe.Candidate {
	return universe.Candidate{
		Symbol: domain.TradableSymbol{Symbol: symbol, BaseAsset: base, QuoteAsset: "USDT", Trading: true},
		Ticker: domain.TickerSnapshot{Symbol: symbol, Price: price, ChangePct24h: 4.2, QuoteVolume24h: vol},
	}
}

func TestAnalyzeExcludesUnusableTickers(t *testing.T) {
	a := New(&sources.FakeExchange{}, &capStub{}, &sentimentStub{})

	cases := []universe.Candidate{
		candidate("ZEROUSDT", "ZERO", 0, 1e6),
		candidate("NOVOLUSDT", "NOVOL", 1.5, 0),
		candidate("NANUSDT", "NAN", math.NaN(), 1e6),
		candidate("INFUSDT", "INF", math.Inf(1), 1e6),
	}
	for _, cand := range cases {
		_, err := a.Analyze(context.Background(), cand, "4h")
		assert.ErrorIs(t, err, ErrExcluded, cand.Symbol.Symbol)
	}
}

func TestAnalyzeReturnsUpstreamErrorOnKlineFailure(t *testing.T) {
	// No series registered: the kline fetch fails upstream.
	a := New(&sources.FakeExchange{}, &capStub{}, &sentimentStub{})

	_, err := a.Analyze(context.Background(), candidate("BTCUSDT", "BTC", 100, 1e8), "4h")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, ErrExcluded)
}

func TestAnalyzeFullContext(t *testing.T) {
	market := &sources.FakeExchange{
		Series: map[string]domain.CandleSeries{
			"BTCUSDT|4h": uptrendSeries("BTCUSDT", "4h", 60),
			"BTCUSDT|1d": uptrendSeries("BTCUSDT", "1d", 8),
		},
		Books: map[string]domain.BookTicker{
			"BTCUSDT": {Symbol: "BTCUSDT", Bid: 159.84, Ask: 160.16},
		},
	}
	caps := &capStub{table: map[string]domain.MarketCapRecord{
		"BTC": {Symbol: "BTC", Name: "Bitcoin", MarketCap: 1.2e12, Rank: 1},
	}}
	sent := &sentimentStub{record: domain.SocialSentimentRecord{Positive: 3, Negative: 1}}

	a := New(market, caps, sent)
	cc, err := a.Analyze(context.Background(), candidate("BTCUSDT", "BTC", 160, 1e8), "4h")
	require.NoError(t, err)

	assert.Equal(t, "BTC", cc.BaseAsset)
	assert.Equal(t, 160.0, cc.Price)

	// A strict uptrend pins RSI at the ceiling and stacks the EMAs.
	assert.Equal(t, 100.0, cc.RSI)
	assert.Greater(t, cc.EMA20, cc.EMA50)
	assert.Greater(t, cc.EMA50, cc.EMA200)
	assert.Greater(t, cc.PlusDI, cc.MinusDI)

	// Price above every prior close means at-or-above resistance.
	assert.False(t, math.IsInf(cc.BreakoutPct, 0))
	assert.LessOrEqual(t, cc.BreakoutPct, 0.0)

	// Final-bar volume spike against a flat 1000 average.
	assert.InDelta(t, 5.0, cc.VolumeRatio, 0.01)
	assert.Greater(t, cc.DayVolumeRatio, 1.0)

	assert.InDelta(t, 0.2, cc.SpreadPct, 0.001)

	require.True(t, cc.CapKnown)
	assert.Equal(t, 1.2e12, cc.MarketCap)
	assert.Equal(t, 1, cc.MarketCapRank)

	// Sentiment is asked with the resolved listing name.
	assert.Equal(t, "BTC", sent.lastTicker)
	assert.Equal(t, "Bitcoin", sent.lastName)
	assert.Equal(t, 3, cc.Sentiment.Positive)
}

func TestAnalyzeDegradesMissingSubSignals(t *testing.T) {
	// Only the primary kline series exists: no book, no daily bars, no cap
	// entry, so every dependent signal falls back to neutral.
	market := &sources.FakeExchange{
		Series: map[string]domain.CandleSeries{
			"NEWUSDT|4h": uptrendSeries("NEWUSDT", "4h", 60),
		},
	}
	sent := &sentimentStub{record: domain.SocialSentimentRecord{Stale: true}}

	a := New(market, &capStub{err: domain.ErrUpstreamUnavailable}, sent)
	cc, err := a.Analyze(context.Background(), candidate("NEWUSDT", "NEW", 160, 1e6), "4h")
	require.NoError(t, err)

	assert.True(t, math.IsInf(cc.SpreadPct, 1))
	assert.Zero(t, cc.DayVolumeRatio)
	assert.False(t, cc.CapKnown)
	assert.Zero(t, cc.MarketCap)
	assert.True(t, cc.Sentiment.Stale)
	assert.Empty(t, sent.lastName, "no listing name without a cap entry")
}

func TestAnalyzeShortHistoryKeepsNeutralDefaults(t *testing.T) {
	market := &sources.FakeExchange{
		Series: map[string]domain.CandleSeries{
			"YOUNGUSDT|4h": uptrendSeries("YOUNGUSDT", "4h", 5),
		},
	}
	a := New(market, &capStub{}, &sentimentStub{})

	cc, err := a.Analyze(context.Background(), candidate("YOUNGUSDT", "YOUNG", 104, 1e6), "4h")
	require.NoError(t, err)

	// Too few bars for RSI, MACD, or ADX.
	assert.Equal(t, 50.0, cc.RSI)
	assert.False(t, cc.RSIRising)
	assert.Zero(t, cc.MACDHistogram)
	assert.Zero(t, cc.ADX)
	// EMAs still compute from whatever exists.
	assert.Greater(t, cc.EMA20, 0.0)
}
