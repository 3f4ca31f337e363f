// Package score combines the heterogeneous candidate signals into one
// bounded composite score plus a confidence tier and bucket tag.
package score

import (
	"math"

	"github.com/coinscout/coinscout/internal/domain"
)

// Per-factor ceilings. The composite is their sum clamped to [0,100].
const (
	MaxMomentum  = 22.0
	MaxVolume    = 25.0
	MaxBreakout  = 20.0
	MaxMarketCap = 10.0
	MaxSocial    = 10.0
	MaxQuality   = 5.0
)

// Result is one scored candidate with its factor breakdown.
type Result struct {
	Score      float64
	Confidence string
	Bucket     string
	Breakdown  map[string]float64
}

// Score computes the composite for one candidate context.
func Score(cc domain.CandidateContext) Result {
	parts := map[string]float64{
		"momentum": momentumScore(cc),
		"volume":   volumeScore(cc),
		"breakout": breakoutScore(cc),
		"cap":      capScore(cc),
		"social":   socialScore(cc),
		"quality":  qualityScore(cc),
	}

	total := 0.0
	for _, v := range parts {
		total += v
	}
	total = clamp(total, 0, 100)

	return Result{
		Score:      total,
		Confidence: confidence(total),
		Bucket:     bucket(cc),
		Breakdown:  parts,
	}
}

// momentumScore rewards a rising RSI in a healthy band, a recent bullish
// MACD cross or positive histogram, and trend strength when +DI leads.
func momentumScore(cc domain.CandidateContext) float64 {
	s := 0.0

	if cc.RSIRising {
		switch {
		case cc.RSI >= 50 && cc.RSI <= 70:
			s += 8
		case cc.RSI >= 40:
			s += 5
		default:
			s += 3
		}
	}

	if cc.MACDCrossed {
		s += 7
	} else if cc.MACDHistogram > 0 {
		s += 4
	}

	if cc.PlusDI > cc.MinusDI {
		switch {
		case cc.ADX >= 30:
			s += 7
		case cc.ADX >= 25:
			s += 5
		case cc.ADX >= 20:
			s += 3
		}
	}

	return clamp(s, 0, MaxMomentum)
}

// volumeScore grants independent tiered bonuses for the day-vs-7-day ratio
// and the intraperiod ratio.
func volumeScore(cc domain.CandidateContext) float64 {
	s := 0.0

	switch {
	case cc.DayVolumeRatio >= 3:
		s += 13
	case cc.DayVolumeRatio >= 2:
		s += 10
	case cc.DayVolumeRatio >= 1.5:
		s += 7
	case cc.DayVolumeRatio >= 1.2:
		s += 4
	}

	switch {
	case cc.VolumeRatio >= 3:
		s += 12
	case cc.VolumeRatio >= 2:
		s += 9
	case cc.VolumeRatio >= 1.5:
		s += 6
	case cc.VolumeRatio >= 1.2:
		s += 3
	}

	return clamp(s, 0, MaxVolume)
}

// breakoutScore rewards proximity to the lookback resistance plus a bullish
// EMA alignment.
func breakoutScore(cc domain.CandidateContext) float64 {
	s := 0.0

	switch {
	case cc.BreakoutPct <= 0: // at or above resistance
		s += 12
	case cc.BreakoutPct <= 1.5:
		s += 10
	case cc.BreakoutPct <= 2.5:
		s += 8
	case cc.BreakoutPct <= 5:
		s += 5
	case cc.BreakoutPct <= 10:
		s += 2
	}

	if cc.Price > cc.EMA20 && cc.EMA20 > cc.EMA50 && cc.EMA50 > cc.EMA200 {
		s += 8
	} else if cc.EMA20 > cc.EMA50 || cc.EMACrossedUp {
		s += 4
	}

	return clamp(s, 0, MaxBreakout)
}

// capScore is inverse-tiered: smaller caps score higher, unknown caps zero.
func capScore(cc domain.CandidateContext) float64 {
	if !cc.CapKnown || cc.MarketCap <= 0 {
		return 0
	}
	switch {
	case cc.MarketCap < 50e6:
		return 10
	case cc.MarketCap < 150e6:
		return 8
	case cc.MarketCap < 500e6:
		return 6
	case cc.MarketCap < 1e9:
		return 4
	case cc.MarketCap < 5e9:
		return 2
	default:
		return 1
	}
}

// socialScore rewards the positive-minus-negative headline delta plus a
// small bonus from the average positive-post vote delta.
func socialScore(cc domain.CandidateContext) float64 {
	s := 0.0

	delta := cc.Sentiment.Positive - cc.Sentiment.Negative
	switch {
	case delta >= 5:
		s += 6
	case delta >= 3:
		s += 4
	case delta >= 1:
		s += 2
	}

	switch {
	case cc.Sentiment.AvgVoteDelta >= 10:
		s += 4
	case cc.Sentiment.AvgVoteDelta >= 5:
		s += 3
	case cc.Sentiment.AvgVoteDelta >= 2:
		s += 2
	case cc.Sentiment.AvgVoteDelta > 0:
		s += 1
	}

	return clamp(s, 0, MaxSocial)
}

// qualityScore grants fixed bonuses for adequate volume and a tight spread,
// plus a constant clean-pair credit.
func qualityScore(cc domain.CandidateContext) float64 {
	s := 1.0 // clean pair: survived every universe stage

	if cc.QuoteVol24h >= 1e6 {
		s += 2
	}
	if cc.SpreadPct <= 0.3 { // +Inf spread never qualifies
		s += 2
	}

	return clamp(s, 0, MaxQuality)
}

// confidence maps a composite score to its tier.
func confidence(score float64) string {
	switch {
	case score >= 75:
		return domain.ConfidenceHigh
	case score >= 60:
		return domain.ConfidenceMedium
	case score >= 50:
		return domain.ConfidenceWatch
	default:
		return domain.ConfidenceLow
	}
}

// bucket assigns at most one qualitative tag, first match wins.
func bucket(cc domain.CandidateContext) string {
	switch {
	case cc.BreakoutPct <= 2.5 && cc.DayVolumeRatio >= 1.5:
		return domain.BucketBreakoutZone
	case cc.RSI >= 30 && cc.RSI <= 45 && cc.RSIRising && cc.DayVolumeRatio >= 1.3:
		return domain.BucketOversoldRecovery
	case cc.RSI >= 50 && cc.RSI <= 65 && cc.RSIRising && cc.MACDHistogram > 0 && cc.ADX >= 18:
		return domain.BucketStrongMomentum
	default:
		return domain.BucketNone
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
