// Package scan drives the full opportunity-scan pipeline: universe
// narrowing, per-candidate analysis, scoring, ranking, and the top-level
// result cache with stale fallback.
package scan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/coinscout/coinscout/internal/analyze"
	"github.com/coinscout/coinscout/internal/cache"
	"github.com/coinscout/coinscout/internal/domain"
	"github.com/coinscout/coinscout/internal/ratelimit"
	"github.com/coinscout/coinscout/internal/score"
	"github.com/coinscout/coinscout/internal/telemetry"
	"github.com/coinscout/coinscout/internal/universe"
)

// ResultTTL is how long a computed scan result serves subsequent requests
// for the same normalized filter set.
const ResultTTL = 10 * time.Minute

// CandidateDelay is the soft self-throttle between per-candidate analyses.
// It spaces calls against per-symbol endpoints; it is not a correctness bound.
var CandidateDelay = 120 * time.Millisecond

// TopN is the size of the ranked head of a scan result.
const TopN = 10

// MarketSource supplies the bulk universe inputs.
type MarketSource interface {
	Symbols(ctx context.Context) ([]domain.TradableSymbol, error)
	Tickers24h(ctx context.Context) ([]domain.TickerSnapshot, error)
}

// CandidateAnalyzer produces the per-symbol feature context.
type CandidateAnalyzer interface {
	Analyze(ctx context.Context, cand universe.Candidate, timeframe string) (domain.CandidateContext, error)
}

// Scanner owns one result cache and coordinates scans against it.
type Scanner struct {
	market   MarketSource
	analyzer CandidateAnalyzer
	pipeline *universe.Pipeline
	results  *cache.TTL[domain.ScanResult]
	metrics  *telemetry.Metrics
	delay    time.Duration
}

// New creates a scanner. metrics may be nil.
func New(market MarketSource, analyzer CandidateAnalyzer, pipeline *universe.Pipeline, metrics *telemetry.Metrics) *Scanner {
	return &Scanner{
		market:   market,
		analyzer: analyzer,
		pipeline: pipeline,
		results:  cache.NewTTL[domain.ScanResult](ResultTTL),
		metrics:  metrics,
		delay:    CandidateDelay,
	}
}

// SetCandidateDelay overrides the inter-candidate pacing. Test hook.
func (s *Scanner) SetCandidateDelay(d time.Duration) {
	s.delay = d
}

// Scan returns the ranked result for one filter set. Results are cached per
// normalized filter key; debug requests bypass the cache in both directions.
// When a fresh scan fails and a previous result exists, that result is
// returned with DataStale forced true; with no previous result the error
// propagates.
func (s *Scanner) Scan(ctx context.Context, filters domain.Filters, debug bool) (domain.ScanResult, error) {
	f, err := filters.Normalize()
	if err != nil {
		return domain.ScanResult{}, err
	}
	key := f.Key()

	if !debug {
		if cached, ok := s.results.Get(key); ok {
			return cached, nil
		}
	}

	started := time.Now()
	result, err := s.run(ctx, f, debug)
	if err != nil {
		s.metrics.ObserveScan(f.Timeframe, "error", time.Since(started), 0)
		if prev, age, ok := s.results.Peek(key); ok {
			log.Warn().Err(err).Dur("age", age).Str("filters", key).Msg("scan failed, serving stale result")
			prev.DataStale = true
			s.metrics.RecordStaleServe()
			return prev, nil
		}
		return domain.ScanResult{}, fmt.Errorf("scan %s: %w: %w", key, domain.ErrNoData, err)
	}

	s.metrics.ObserveScan(f.Timeframe, "ok", time.Since(started), len(result.Top))
	if !debug {
		s.results.Set(key, result)
	}
	return result, nil
}

// run executes one full scan pass.
func (s *Scanner) run(ctx context.Context, f domain.Filters, debug bool) (domain.ScanResult, error) {
	var rec *universe.Recorder
	if debug {
		rec = universe.NewRecorder()
	}
	started := time.Now()

	symbols, err := s.market.Symbols(ctx)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("symbol universe: %w", err)
	}
	tickers, err := s.market.Tickers24h(ctx)
	if err != nil {
		return domain.ScanResult{}, fmt.Errorf("ticker snapshot: %w", err)
	}

	candidates := s.pipeline.Narrow(symbols, tickers, f, rec)
	log.Info().Str("tf", f.Timeframe).Int("universe", len(symbols)).Int("candidates", len(candidates)).Msg("universe narrowed")

	pacer := ratelimit.NewPacer(s.delay)
	contexts := make([]domain.CandidateContext, 0, len(candidates))
	dataStale := false

	for _, cand := range candidates {
		if err := pacer.Wait(ctx); err != nil {
			return domain.ScanResult{}, fmt.Errorf("scan cancelled: %w", err)
		}
		cc, err := s.analyzer.Analyze(ctx, cand, f.Timeframe)
		if err != nil {
			if errors.Is(err, analyze.ErrExcluded) {
				rec.Exclude(cand.Symbol.Symbol, "analysis", "unusable-ticker")
				continue
			}
			// One symbol's upstream failure never aborts the batch; the
			// result is flagged stale instead.
			log.Warn().Err(err).Str("symbol", cand.Symbol.Symbol).Msg("candidate analysis failed")
			s.metrics.RecordUpstreamError("analysis")
			dataStale = true
			continue
		}
		contexts = append(contexts, cc)
	}
	rec.Count("analysis", len(contexts))

	contexts = universe.FilterByCap(contexts, f, rec)

	scored := make([]domain.ScoredCoin, 0, len(contexts))
	for _, cc := range contexts {
		res := score.Score(cc)
		scored = append(scored, toScoredCoin(cc, res))
	}

	// Stable, deterministic ranking: score descending, symbol ascending.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Symbol < scored[j].Symbol
	})

	result := domain.ScanResult{
		DataStale: dataStale,
		Timeframe: f.Timeframe,
		Filters:   f,
		Top:       topN(scored, TopN),
		Buckets:   collectBuckets(scored),
		ScannedAt: time.Now(),
	}
	if debug {
		result.Debug = &domain.DebugInfo{
			ScanID:      uuid.NewString(),
			StageCounts: rec.StageCounts(),
			Excluded:    rec.Excluded(),
			Duration:    time.Since(started),
		}
	}
	return result, nil
}

func topN(scored []domain.ScoredCoin, n int) []domain.ScoredCoin {
	if len(scored) > n {
		scored = scored[:n]
	}
	out := make([]domain.ScoredCoin, len(scored))
	copy(out, scored)
	return out
}

func collectBuckets(scored []domain.ScoredCoin) domain.Buckets {
	var b domain.Buckets
	for _, coin := range scored {
		switch coin.Bucket {
		case domain.BucketBreakoutZone:
			b.BreakoutZone = append(b.BreakoutZone, coin)
		case domain.BucketOversoldRecovery:
			b.OversoldRecovery = append(b.OversoldRecovery, coin)
		case domain.BucketStrongMomentum:
			b.StrongMomentum = append(b.StrongMomentum, coin)
		}
	}
	return b
}

func toScoredCoin(cc domain.CandidateContext, res score.Result) domain.ScoredCoin {
	coin := domain.ScoredCoin{
		Symbol:       cc.Symbol,
		BaseAsset:    cc.BaseAsset,
		Score:        res.Score,
		Confidence:   res.Confidence,
		Bucket:       res.Bucket,
		Price:        cc.Price,
		ChangePct24h: cc.ChangePct24h,
		QuoteVol24h:  cc.QuoteVol24h,
		RSI:          cc.RSI,
		BreakoutPct:  cc.BreakoutPct,
		SentimentNet: cc.Sentiment.Positive - cc.Sentiment.Negative,
		DataStale:    cc.Sentiment.Stale,
	}
	if cc.CapKnown {
		coin.MarketCap = cc.MarketCap
	}
	// Unavailable resistance surfaces as +Inf internally; keep the wire
	// shape JSON-encodable.
	if math.IsInf(coin.BreakoutPct, 0) || math.IsNaN(coin.BreakoutPct) {
		coin.BreakoutPct = 0
	}
	return coin
}
