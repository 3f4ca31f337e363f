// Package analyze orchestrates the per-symbol fetch+compute pass that
// turns a surviving universe candidate into a scoring feature context.
package analyze

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/coinscout/coinscout/internal/domain"
	"github.com/coinscout/coinscout/internal/indicators"
	"github.com/coinscout/coinscout/internal/universe"
)

// ErrExcluded marks a candidate dropped for an unusable price or volume.
// It is the only analyzer outcome that is not a degraded neutral signal.
var ErrExcluded = errors.New("candidate excluded")

// KlineLimit is how many bars are requested per candidate. 250 bars keeps
// EMA200 meaningful on every supported timeframe.
const KlineLimit = 250

// dailyBars covers the 7-day volume average plus the current day.
const dailyBars = 8

// MarketData supplies per-symbol series and best bid/ask.
type MarketData interface {
	Klines(ctx context.Context, symbol, interval string, limit int) (domain.CandleSeries, error)
	BookTicker(ctx context.Context, symbol string) (domain.BookTicker, error)
}

// CapTable supplies the market-capitalization snapshot.
type CapTable interface {
	Snapshot(ctx context.Context) (map[string]domain.MarketCapRecord, error)
}

// SentimentProvider supplies aggregated social sentiment.
type SentimentProvider interface {
	Sentiment(ctx context.Context, ticker, name, timeframe string) domain.SocialSentimentRecord
}

// Analyzer assembles CandidateContexts from indicators and source clients.
type Analyzer struct {
	market    MarketData
	caps      CapTable
	sentiment SentimentProvider
}

// New creates a candidate analyzer.
func New(market MarketData, caps CapTable, sentiment SentimentProvider) *Analyzer {
	return &Analyzer{market: market, caps: caps, sentiment: sentiment}
}

// Analyze builds the feature context for one candidate. A non-finite or
// non-positive price or 24h volume returns ErrExcluded; an unreachable
// kline endpoint returns a wrapped ErrUpstreamUnavailable so the caller
// can skip the candidate and flag staleness. Every other missing
// sub-signal degrades to a neutral default.
func (a *Analyzer) Analyze(ctx context.Context, cand universe.Candidate, timeframe string) (domain.CandidateContext, error) {
	price := cand.Ticker.Price
	vol := cand.Ticker.QuoteVolume24h
	if !isUsable(price) || !isUsable(vol) {
		return domain.CandidateContext{}, fmt.Errorf("%w: %s price=%v vol=%v", ErrExcluded, cand.Symbol.Symbol, price, vol)
	}

	cc := domain.CandidateContext{
		Symbol:       cand.Symbol.Symbol,
		BaseAsset:    cand.Symbol.BaseAsset,
		Price:        price,
		ChangePct24h: cand.Ticker.ChangePct24h,
		QuoteVol24h:  vol,
		RSI:          50, // neutral until computed
		SpreadPct:    math.Inf(1),
	}

	series, err := a.market.Klines(ctx, cand.Symbol.Symbol, timeframe, KlineLimit)
	if err != nil {
		return domain.CandidateContext{}, fmt.Errorf("klines %s: %w", cand.Symbol.Symbol, err)
	}
	a.applyIndicators(&cc, series)
	a.applyDailyVolume(ctx, &cc)

	if book, err := a.market.BookTicker(ctx, cand.Symbol.Symbol); err == nil {
		cc.SpreadPct = spreadPct(book)
	} else {
		log.Debug().Err(err).Str("symbol", cand.Symbol.Symbol).Msg("book ticker unavailable")
	}

	if table, err := a.caps.Snapshot(ctx); err == nil {
		if rec, ok := table[strings.ToUpper(cand.Symbol.BaseAsset)]; ok {
			cc.MarketCap = rec.MarketCap
			cc.MarketCapRank = rec.Rank
			cc.CapKnown = true
			cc.Sentiment = a.sentiment.Sentiment(ctx, cand.Symbol.BaseAsset, rec.Name, timeframe)
			return cc, nil
		}
	} else {
		log.Debug().Err(err).Msg("market cap snapshot unavailable")
	}

	cc.Sentiment = a.sentiment.Sentiment(ctx, cand.Symbol.BaseAsset, "", timeframe)
	return cc, nil
}

// applyIndicators runs the indicator battery over the candle series.
// Insufficient history leaves the affected fields at their neutral values.
func (a *Analyzer) applyIndicators(cc *domain.CandidateContext, series domain.CandleSeries) {
	closes := series.Closes()
	volumes := series.Volumes()

	if rsi := indicators.RSI(closes, 14); len(rsi) > 0 {
		cc.RSI = rsi[len(rsi)-1]
		if back := indicators.RSIRisingLookback; len(rsi) > back {
			cc.RSIRising = cc.RSI > rsi[len(rsi)-1-back]
		}
	}

	if macd := indicators.MACD(closes, 12, 26, 9); macd != nil && len(macd.Histogram) > 0 {
		cc.MACDHistogram = macd.Histogram[len(macd.Histogram)-1]
		cc.MACDCrossed = crossedAbove(macd.Line, macd.Signal, indicators.MACDCrossLookback)
	}

	if adx := indicators.ADX(series.Highs(), series.Lows(), closes, 14); adx != nil && len(adx.ADX) > 0 {
		last := len(adx.ADX) - 1
		cc.ADX = adx.ADX[last]
		cc.PlusDI = adx.PlusDI[last]
		cc.MinusDI = adx.MinusDI[last]
	}

	if len(closes) > 0 {
		ema20 := indicators.EMA(closes, 20)
		ema50 := indicators.EMA(closes, 50)
		ema200 := indicators.EMA(closes, 200)
		cc.EMA20 = ema20[len(ema20)-1]
		cc.EMA50 = ema50[len(ema50)-1]
		cc.EMA200 = ema200[len(ema200)-1]
		cc.EMACrossedUp = crossedAbove(ema20, ema50, indicators.EMACrossLookback)
	}

	if res := indicators.Resistance(closes, indicators.ResistanceLookback); res > 0 {
		cc.BreakoutPct = indicators.BreakoutPct(cc.Price, res)
	} else {
		cc.BreakoutPct = math.Inf(1)
	}

	cc.VolumeRatio = indicators.VolumeRatio(volumes, indicators.IntraVolWindow)
}

// applyDailyVolume computes the day-vs-7-day-average volume ratio from the
// daily kline series. Failure leaves the ratio at its neutral zero.
func (a *Analyzer) applyDailyVolume(ctx context.Context, cc *domain.CandidateContext) {
	daily, err := a.market.Klines(ctx, cc.Symbol, "1d", dailyBars)
	if err != nil || len(daily.Candles) == 0 {
		return
	}
	vols := daily.Volumes()
	current := vols[len(vols)-1]
	if current <= 0 {
		return
	}
	avg := indicators.SevenDayAvgVolume(vols[:len(vols)-1], current)
	if avg > 0 {
		cc.DayVolumeRatio = current / avg
	}
}

// crossedAbove reports whether fast crossed above slow within the trailing
// lookback window. Both series must share index alignment.
func crossedAbove(fast, slow []float64, lookback int) bool {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	if n < 2 {
		return false
	}
	start := n - lookback
	if start < 1 {
		start = 1
	}
	for i := start; i < n; i++ {
		if fast[i-1] <= slow[i-1] && fast[i] > slow[i] {
			return true
		}
	}
	return false
}

func spreadPct(book domain.BookTicker) float64 {
	if book.Bid <= 0 || book.Ask <= 0 || book.Ask < book.Bid {
		return math.Inf(1)
	}
	mid := (book.Bid + book.Ask) / 2
	return (book.Ask - book.Bid) / mid * 100
}

func isUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
