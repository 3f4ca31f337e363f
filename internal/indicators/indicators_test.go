package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rising(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func falling(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(n - i)
	}
	return out
}

func TestEMASeededWithFirstValue(t *testing.T) {
	out := EMA([]float64{2, 4, 6}, 2)
	require.Len(t, out, 3)
	assert.Equal(t, 2.0, out[0])
	assert.InDelta(t, 3.3333, out[1], 1e-3)
	assert.InDelta(t, 5.1111, out[2], 1e-3)
}

func TestEMALengthMatchesInput(t *testing.T) {
	for _, n := range []int{1, 5, 50, 250} {
		assert.Len(t, EMA(rising(n), 20), n)
	}
	assert.Nil(t, EMA(nil, 20))
	assert.Nil(t, EMA(rising(10), 0))
}

func TestRSIAllGainsIsExactly100(t *testing.T) {
	out := RSI(rising(20), 14)
	require.Len(t, out, 6)
	for _, v := range out {
		assert.Equal(t, 100.0, v)
	}
}

func TestRSIAllLossesIsZero(t *testing.T) {
	out := RSI(falling(20), 14)
	require.NotEmpty(t, out)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestRSIRequiresMoreThanPeriodBars(t *testing.T) {
	assert.Nil(t, RSI(rising(14), 14))
	assert.NotNil(t, RSI(rising(15), 14))
}

func TestRSIStaysInBounds(t *testing.T) {
	values := []float64{44, 44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10,
		45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03,
		46.41, 46.22, 45.64}
	out := RSI(values, 14)
	require.NotEmpty(t, out)
	for _, v := range out {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestMACDAlignment(t *testing.T) {
	values := rising(30)
	res := MACD(values, 12, 26, 9)
	require.NotNil(t, res)
	want := len(values) - 26 + 1
	assert.Len(t, res.Line, want)
	assert.Len(t, res.Signal, want)
	assert.Len(t, res.Histogram, want)
	for i := range res.Line {
		assert.InDelta(t, res.Line[i]-res.Signal[i], res.Histogram[i], 1e-9)
	}
	// Fast EMA leads in a steady uptrend.
	assert.Greater(t, res.Line[len(res.Line)-1], 0.0)
}

func TestMACDInsufficientHistory(t *testing.T) {
	assert.Nil(t, MACD(rising(25), 12, 26, 9))
	assert.NotNil(t, MACD(rising(26), 12, 26, 9))
}

func TestADXUptrend(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = float64(i) + 1
		lows[i] = float64(i)
		closes[i] = float64(i) + 0.5
	}
	res := ADX(highs, lows, closes, 14)
	require.NotNil(t, res)
	require.Len(t, res.ADX, n-14)
	assert.Len(t, res.PlusDI, len(res.ADX))
	assert.Len(t, res.MinusDI, len(res.ADX))

	last := len(res.ADX) - 1
	assert.Greater(t, res.PlusDI[last], res.MinusDI[last])
	assert.Greater(t, res.ADX[last], 25.0)
}

func TestADXInsufficientHistory(t *testing.T) {
	h := rising(14)
	assert.Nil(t, ADX(h, h, h, 14))
	assert.Nil(t, ADX(rising(20), rising(19), rising(20), 14))
}

func TestResistanceExcludesLatestBar(t *testing.T) {
	assert.Equal(t, 4.0, Resistance([]float64{1, 2, 3, 4, 5}, 3))
	// The latest close never counts as its own resistance.
	assert.Equal(t, 5.0, Resistance([]float64{1, 5, 2, 9}, 2))
	assert.Equal(t, 0.0, Resistance([]float64{1}, 20))
}

func TestBreakoutPct(t *testing.T) {
	assert.InDelta(t, 2.5, BreakoutPct(3.9, 4), 1e-9)
	assert.LessOrEqual(t, BreakoutPct(4.2, 4), 0.0)
	assert.True(t, math.IsInf(BreakoutPct(1, 0), 1))
}

func TestVolumeRatio(t *testing.T) {
	assert.InDelta(t, 2.0, VolumeRatio([]float64{1, 1, 1, 2}, 3), 1e-9)
	assert.Equal(t, 0.0, VolumeRatio([]float64{5}, 3))
	assert.Equal(t, 0.0, VolumeRatio([]float64{0, 0, 0, 4}, 3))
}

func TestSevenDayAvgVolumePadsYoungListings(t *testing.T) {
	// Full week: current volume does not enter the average.
	full := []float64{10, 10, 10, 10, 10, 10, 10}
	assert.InDelta(t, 10.0, SevenDayAvgVolume(full, 99), 1e-9)

	// Three real days plus four padded at the current 24h volume.
	assert.InDelta(t, 12.0, SevenDayAvgVolume([]float64{20, 20, 20}, 6), 1e-9)

	// No history at all degrades to the current volume.
	assert.InDelta(t, 5.0, SevenDayAvgVolume(nil, 5), 1e-9)

	// Longer history uses only the last seven days.
	long := []float64{100, 100, 100, 7, 7, 7, 7, 7, 7, 7}
	assert.InDelta(t, 7.0, SevenDayAvgVolume(long, 99), 1e-9)
}
