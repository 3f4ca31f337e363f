// Package indicators provides pure, side-effect-free functions over ordered
// price/volume series. Insufficient history returns nil; callers treat that
// as "indicator unavailable" and degrade the sub-signal to neutral.
package indicators

import "math"

// Tuning windows used by the candidate analyzer. Kept as variables so tests
// and config can override them without touching the math.
var (
	RSIRisingLookback  = 3  // bars back for the RSI "rising" comparison
	MACDCrossLookback  = 5  // recent bars checked for a bullish signal cross
	EMACrossLookback   = 10 // recent bars checked for EMA20 crossing above EMA50
	ResistanceLookback = 20 // bars of closes scanned for the resistance level
	IntraVolWindow     = 30 // trailing bars for the intraperiod volume average
)

// EMA computes an exponential moving average seeded with the first raw value,
// so the output length always matches the input length.
func EMA(values []float64, period int) []float64 {
	if len(values) == 0 || period <= 0 {
		return nil
	}
	k := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// RSI computes a Wilder-smoothed relative strength index. It requires
// len(values) > period; shorter input returns nil. A window with zero
// average loss yields exactly 100.
func RSI(values []float64, period int) []float64 {
	if period <= 0 || len(values) <= period {
		return nil
	}

	gains := make([]float64, len(values)-1)
	losses := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diff := values[i] - values[i-1]
		if diff > 0 {
			gains[i-1] = diff
		} else {
			losses[i-1] = -diff
		}
	}

	var avgGain, avgLoss float64
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	out := make([]float64, 0, len(values)-period)
	out = append(out, rsiValue(avgGain, avgLoss))
	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*float64(period-1) + gains[i]) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + losses[i]) / float64(period)
		out = append(out, rsiValue(avgGain, avgLoss))
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the three aligned MACD output series.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes the fast/slow EMA difference, its signal EMA, and the
// histogram, aligned to the slow-EMA-derived length.
func MACD(values []float64, fast, slow, signal int) *MACDResult {
	if len(values) < slow || fast <= 0 || slow <= fast || signal <= 0 {
		return nil
	}
	fastEMA := EMA(values, fast)
	slowEMA := EMA(values, slow)

	line := make([]float64, len(values)-slow+1)
	for i := range line {
		idx := i + slow - 1
		line[i] = fastEMA[idx] - slowEMA[idx]
	}

	sig := EMA(line, signal)
	hist := make([]float64, len(line))
	for i := range line {
		hist[i] = line[i] - sig[i]
	}
	return &MACDResult{Line: line, Signal: sig, Histogram: hist}
}

// ADXResult holds the aligned directional movement output series.
type ADXResult struct {
	ADX     []float64
	PlusDI  []float64
	MinusDI []float64
}

// ADX computes Wilder-smoothed true range and directional movement. It
// requires at least period+1 bars; shorter input returns nil. The three
// output series share one length and index alignment.
func ADX(highs, lows, closes []float64, period int) *ADXResult {
	n := len(closes)
	if period <= 0 || n < period+1 || len(highs) != n || len(lows) != n {
		return nil
	}

	trs := make([]float64, n-1)
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	for i := 1; i < n; i++ {
		tr := math.Max(highs[i]-lows[i], math.Max(
			math.Abs(highs[i]-closes[i-1]),
			math.Abs(lows[i]-closes[i-1])))
		trs[i-1] = tr

		upMove := highs[i] - highs[i-1]
		downMove := lows[i-1] - lows[i]
		if upMove > downMove && upMove > 0 {
			plusDM[i-1] = upMove
		}
		if downMove > upMove && downMove > 0 {
			minusDM[i-1] = downMove
		}
	}

	var smTR, smPlus, smMinus float64
	for i := 0; i < period; i++ {
		smTR += trs[i]
		smPlus += plusDM[i]
		smMinus += minusDM[i]
	}

	count := len(trs) - period + 1
	plusDI := make([]float64, 0, count)
	minusDI := make([]float64, 0, count)
	adx := make([]float64, 0, count)
	var prevADX float64

	for i := period - 1; i < len(trs); i++ {
		if i >= period {
			// Wilder smoothing: drop 1/period of the prior sum, add the new bar.
			smTR = smTR - smTR/float64(period) + trs[i]
			smPlus = smPlus - smPlus/float64(period) + plusDM[i]
			smMinus = smMinus - smMinus/float64(period) + minusDM[i]
		}

		var pdi, mdi float64
		if smTR > 0 {
			pdi = 100 * smPlus / smTR
			mdi = 100 * smMinus / smTR
		}
		plusDI = append(plusDI, pdi)
		minusDI = append(minusDI, mdi)

		var dx float64
		if pdi+mdi > 0 {
			dx = 100 * math.Abs(pdi-mdi) / (pdi + mdi)
		}
		if len(adx) == 0 {
			prevADX = dx
		} else {
			prevADX = (prevADX*float64(period-1) + dx) / float64(period)
		}
		adx = append(adx, prevADX)
	}

	return &ADXResult{ADX: adx, PlusDI: plusDI, MinusDI: minusDI}
}

// Resistance returns the highest close over the lookback window preceding
// the latest bar. Returns 0 when fewer than two bars exist.
func Resistance(closes []float64, lookback int) float64 {
	if len(closes) < 2 || lookback <= 0 {
		return 0
	}
	start := len(closes) - 1 - lookback
	if start < 0 {
		start = 0
	}
	highest := 0.0
	for _, c := range closes[start : len(closes)-1] {
		if c > highest {
			highest = c
		}
	}
	return highest
}

// BreakoutPct returns the percent distance from price to resistance:
// (resistance - price) / resistance * 100. A value <= 0 means the price is
// at or above resistance. Returns +Inf when resistance is unavailable.
func BreakoutPct(price, resistance float64) float64 {
	if resistance <= 0 {
		return math.Inf(1)
	}
	return (resistance - price) / resistance * 100
}

// VolumeRatio compares the latest bar's volume to the average of the
// trailing window preceding it. Returns 0 when history is insufficient.
func VolumeRatio(volumes []float64, window int) float64 {
	if len(volumes) < 2 || window <= 0 {
		return 0
	}
	start := len(volumes) - 1 - window
	if start < 0 {
		start = 0
	}
	trailing := volumes[start : len(volumes)-1]
	var sum float64
	for _, v := range trailing {
		sum += v
	}
	avg := sum / float64(len(trailing))
	if avg <= 0 {
		return 0
	}
	return volumes[len(volumes)-1] / avg
}

// SevenDayAvgVolume averages the last seven daily volumes. When fewer than
// seven daily bars exist, the missing days are assumed equal to the current
// 24h volume so a young listing is not penalized.
func SevenDayAvgVolume(dailyVolumes []float64, current24h float64) float64 {
	n := len(dailyVolumes)
	if n > 7 {
		dailyVolumes = dailyVolumes[n-7:]
		n = 7
	}
	var sum float64
	for _, v := range dailyVolumes {
		sum += v
	}
	sum += float64(7-n) * current24h
	return sum / 7
}
