// Package universe narrows the full exchange symbol list to a bounded
// analysis set through ordered, deterministic filter stages. Every stage's
// output is a subset of its input.
package universe

import (
	"sort"
	"strings"

	"github.com/coinscout/coinscout/internal/domain"
)

// MaxCandidates caps how many symbols are subjected to expensive
// per-symbol network calls.
const MaxCandidates = 60

// Stage reason tags attached to debug exclusions.
const (
	ReasonQuoteAsset    = "quote-asset"
	ReasonNotTrading    = "not-trading"
	ReasonStablecoin    = "stablecoin"
	ReasonLeveraged     = "leveraged"
	ReasonLowVolume     = "low-volume"
	ReasonVolumeCap     = "volume-cap"
	ReasonCapOutOfRange = "cap-out-of-range"
)

// stablecoinBases is the fixed deny-set of stablecoin base assets. Scanning
// a stable pair for momentum is never useful.
var stablecoinBases = map[string]bool{
	"USDT": true, "USDC": true, "BUSD": true, "TUSD": true,
	"DAI": true, "FDUSD": true, "USDP": true, "UST": true,
	"USDD": true, "GUSD": true, "EURS": true,
}

// Candidate pairs a tradable symbol with its 24h ticker for filtering.
type Candidate struct {
	Symbol domain.TradableSymbol
	Ticker domain.TickerSnapshot
}

// Pipeline holds the static narrowing configuration.
type Pipeline struct {
	QuoteAsset    string
	MaxCandidates int
}

// NewPipeline creates a pipeline for one quote asset.
func NewPipeline(quoteAsset string) *Pipeline {
	if quoteAsset == "" {
		quoteAsset = "USDT"
	}
	return &Pipeline{QuoteAsset: strings.ToUpper(quoteAsset), MaxCandidates: MaxCandidates}
}

// Narrow runs the ordered filter stages over the full symbol list. The
// market-cap range stage runs separately after analysis (FilterByCap)
// because caps are only attached there.
func (p *Pipeline) Narrow(symbols []domain.TradableSymbol, tickers []domain.TickerSnapshot, f domain.Filters, rec *Recorder) []Candidate {
	bySymbol := make(map[string]domain.TickerSnapshot, len(tickers))
	for _, t := range tickers {
		bySymbol[t.Symbol] = t
	}

	rec.Count("universe", len(symbols))

	// Stage 1: quote asset + tradable status.
	stage := make([]Candidate, 0, len(symbols))
	for _, s := range symbols {
		if !strings.EqualFold(s.QuoteAsset, p.QuoteAsset) {
			rec.Exclude(s.Symbol, "quote", ReasonQuoteAsset)
			continue
		}
		if !s.Trading {
			rec.Exclude(s.Symbol, "quote", ReasonNotTrading)
			continue
		}
		stage = append(stage, Candidate{Symbol: s, Ticker: bySymbol[s.Symbol]})
	}
	rec.Count("quote", len(stage))

	// Stage 2: stablecoin-base exclusion.
	next := stage[:0]
	for _, c := range stage {
		if stablecoinBases[strings.ToUpper(c.Symbol.BaseAsset)] {
			rec.Exclude(c.Symbol.Symbol, "stablecoin", ReasonStablecoin)
			continue
		}
		next = append(next, c)
	}
	stage = next
	rec.Count("stablecoin", len(stage))

	// Stage 3: leveraged-token exclusion, optional.
	if f.ExcludeLeveraged {
		next = stage[:0]
		for _, c := range stage {
			if c.Symbol.Leveraged {
				rec.Exclude(c.Symbol.Symbol, "leveraged", ReasonLeveraged)
				continue
			}
			next = append(next, c)
		}
		stage = next
	}
	rec.Count("leveraged", len(stage))

	// Stage 4: minimum 24h quote volume.
	next = stage[:0]
	for _, c := range stage {
		if c.Ticker.QuoteVolume24h < f.MinVolUSD {
			rec.Exclude(c.Symbol.Symbol, "volume", ReasonLowVolume)
			continue
		}
		next = append(next, c)
	}
	stage = next
	rec.Count("volume", len(stage))

	// Stage 5: top-N by volume. Stable order so scans are deterministic.
	sort.SliceStable(stage, func(i, j int) bool {
		if stage[i].Ticker.QuoteVolume24h != stage[j].Ticker.QuoteVolume24h {
			return stage[i].Ticker.QuoteVolume24h > stage[j].Ticker.QuoteVolume24h
		}
		return stage[i].Symbol.Symbol < stage[j].Symbol.Symbol
	})
	max := p.MaxCandidates
	if max <= 0 {
		max = MaxCandidates
	}
	if len(stage) > max {
		for _, c := range stage[max:] {
			rec.Exclude(c.Symbol.Symbol, "top-n", ReasonVolumeCap)
		}
		stage = stage[:max]
	}
	rec.Count("top-n", len(stage))

	return stage
}

// FilterByCap applies the market-cap range stage after per-candidate
// analysis. A candidate with an unknown cap always passes: only a known
// out-of-range cap excludes.
func FilterByCap(contexts []domain.CandidateContext, f domain.Filters, rec *Recorder) []domain.CandidateContext {
	out := make([]domain.CandidateContext, 0, len(contexts))
	for _, c := range contexts {
		if !f.InCapRange(c.MarketCap, c.CapKnown) {
			rec.Exclude(c.Symbol, "cap-range", ReasonCapOutOfRange)
			continue
		}
		out = append(out, c)
	}
	rec.Count("cap-range", len(out))
	return out
}
