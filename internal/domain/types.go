package domain

import "time"

// TradableSymbol is one exchange listing from the symbol universe.
type TradableSymbol struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
	Trading    bool   `json:"trading"`
	Leveraged  bool   `json:"leveraged"`
}

// TickerSnapshot is a bulk-refreshed 24h ticker row.
type TickerSnapshot struct {
	Symbol         string  `json:"symbol"`
	Price          float64 `json:"price"`
	ChangePct24h   float64 `json:"change_pct_24h"`
	QuoteVolume24h float64 `json:"quote_volume_24h"`
}

// Candle is one OHLCV bar.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// CandleSeries is an ordered, bounded-length bar sequence for one symbol+interval.
type CandleSeries struct {
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"`
	Candles  []Candle `json:"candles"`
}

// Closes returns the close column in bar order.
func (s CandleSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}

// Highs returns the high column in bar order.
func (s CandleSeries) Highs() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.High
	}
	return out
}

// Lows returns the low column in bar order.
func (s CandleSeries) Lows() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Low
	}
	return out
}

// Volumes returns the volume column in bar order.
func (s CandleSeries) Volumes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Volume
	}
	return out
}

// MarketCapRecord is one row of the paged market-capitalization listing,
// keyed by uppercase base symbol. Duplicate symbols across pages resolve
// to the highest cap.
type MarketCapRecord struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	MarketCap float64 `json:"market_cap"`
	Rank      int     `json:"rank"`
}

// SocialSentimentRecord aggregates headline sentiment for one (symbol, timeframe).
// Stale marks a record produced without a live upstream (missing credential or
// fetch failure); counts are zeroed in that case.
type SocialSentimentRecord struct {
	Symbol       string  `json:"symbol"`
	Timeframe    string  `json:"timeframe"`
	Positive     int     `json:"positive"`
	Negative     int     `json:"negative"`
	Neutral      int     `json:"neutral"`
	AvgVoteDelta float64 `json:"avg_vote_delta"`
	Stale        bool    `json:"stale"`
}

// BookTicker is the best bid/ask for one symbol.
type BookTicker struct {
	Symbol string  `json:"symbol"`
	Bid    float64 `json:"bid"`
	Ask    float64 `json:"ask"`
}

// CandidateContext is the ephemeral per-scan feature aggregate for one symbol.
// It is rebuilt on every analysis pass and never persisted.
type CandidateContext struct {
	Symbol       string
	BaseAsset    string
	Price        float64
	ChangePct24h float64
	QuoteVol24h  float64

	RSI       float64
	RSIRising bool

	MACDHistogram float64
	MACDCrossed   bool // bullish signal cross within the recent lookback

	ADX     float64
	PlusDI  float64
	MinusDI float64

	EMA20        float64
	EMA50        float64
	EMA200       float64
	EMACrossedUp bool // EMA20 crossed above EMA50 within the recent lookback

	BreakoutPct float64 // distance to lookback resistance; <=0 means at/above

	VolumeRatio    float64 // latest bar vs trailing-window average
	DayVolumeRatio float64 // 24h volume vs 7-day daily average

	SpreadPct float64 // +Inf when the book ticker is unavailable

	MarketCap     float64 // 0 when unknown
	MarketCapRank int
	CapKnown      bool

	Sentiment SocialSentimentRecord
}

// Confidence tiers for a scored candidate.
const (
	ConfidenceHigh   = "High"
	ConfidenceMedium = "Medium"
	ConfidenceWatch  = "Watch"
	ConfidenceLow    = "Low"
)

// Bucket tags. A candidate carries at most one, decided by first-match priority.
const (
	BucketBreakoutZone     = "Breakout Zone"
	BucketOversoldRecovery = "Oversold Recovery"
	BucketStrongMomentum   = "Strong Momentum"
	BucketNone             = ""
)

// ScoredCoin is one ranked scan candidate. Score is always clamped to [0,100].
type ScoredCoin struct {
	Symbol       string  `json:"symbol"`
	BaseAsset    string  `json:"base_asset"`
	Score        float64 `json:"score"`
	Confidence   string  `json:"confidence"`
	Bucket       string  `json:"bucket,omitempty"`
	Price        float64 `json:"price"`
	ChangePct24h float64 `json:"change_pct_24h"`
	QuoteVol24h  float64 `json:"quote_vol_24h"`
	RSI          float64 `json:"rsi"`
	BreakoutPct  float64 `json:"breakout_pct"`
	MarketCap    float64 `json:"market_cap,omitempty"`
	SentimentNet int     `json:"sentiment_net"`
	DataStale    bool    `json:"data_stale"`
}

// ExclusionExample is one debug-mode record of a symbol dropped by a
// pipeline stage, capped in number to bound memory.
type ExclusionExample struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// DebugInfo carries optional scan telemetry. Debug responses are always
// recomputed and never written into the long-lived result cache.
type DebugInfo struct {
	ScanID      string             `json:"scan_id"`
	StageCounts map[string]int     `json:"stage_counts"`
	Excluded    []ExclusionExample `json:"excluded,omitempty"`
	Duration    time.Duration      `json:"duration"`
}

// Buckets groups the three named classification lists of a scan result.
type Buckets struct {
	BreakoutZone     []ScoredCoin `json:"breakout_zone"`
	OversoldRecovery []ScoredCoin `json:"oversold_recovery"`
	StrongMomentum   []ScoredCoin `json:"strong_momentum"`
}

// ScanResult is the ranked output for one normalized filter set.
type ScanResult struct {
	DataStale bool         `json:"data_stale"`
	Timeframe string       `json:"tf"`
	Filters   Filters      `json:"filters"`
	Top       []ScoredCoin `json:"top"`
	Buckets   Buckets      `json:"buckets"`
	Debug     *DebugInfo   `json:"debug,omitempty"`
	ScannedAt time.Time    `json:"scanned_at"`
}
