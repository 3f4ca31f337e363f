package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	f, err := Filters{}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeframe, f.Timeframe)
	assert.Zero(t, f.MinVolUSD)
}

func TestNormalizeIdempotent(t *testing.T) {
	cases := []Filters{
		{},
		{Timeframe: "1h"},
		{Timeframe: " 4H ", MinVolUSD: 250000},
		{Timeframe: "1d", ExcludeLeveraged: true, CapRange: CapRange{Min: 1e6, Max: 2e9}},
	}
	for _, in := range cases {
		once, err := in.Normalize()
		require.NoError(t, err)
		twice, err := once.Normalize()
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeRejectsBadInput(t *testing.T) {
	cases := []Filters{
		{Timeframe: "15m"},
		{Timeframe: "4h", MinVolUSD: -1},
		{Timeframe: "4h", CapRange: CapRange{Min: 5e9, Max: 1e9}},
		{Timeframe: "4h", CapRange: CapRange{Min: -1}},
	}
	for _, in := range cases {
		_, err := in.Normalize()
		assert.ErrorIs(t, err, ErrInvalidFilters)
	}
}

func TestParseFiltersRejectsLegacyTimeframeKey(t *testing.T) {
	payloads := []string{
		`{"timeframe":"4h"}`,
		`{"timeframe":"4h","min_vol_usd":100000}`,
		`{"tf":"1h","timeframe":"1h"}`,
	}
	for _, p := range payloads {
		_, err := ParseFilters([]byte(p))
		assert.ErrorIs(t, err, ErrInvalidFilters, "payload %s", p)
	}
}

func TestParseFiltersRejectsUnknownKeys(t *testing.T) {
	_, err := ParseFilters([]byte(`{"tf":"4h","interval":"4h"}`))
	assert.ErrorIs(t, err, ErrInvalidFilters)
}

func TestParseFiltersRoundTrip(t *testing.T) {
	f, err := ParseFilters([]byte(`{"tf":"1h","min_vol_usd":500000,"exclude_leveraged":true,"cap_range":{"min":0,"max":2000000000}}`))
	require.NoError(t, err)
	assert.Equal(t, "1h", f.Timeframe)
	assert.Equal(t, 500000.0, f.MinVolUSD)
	assert.True(t, f.ExcludeLeveraged)
	assert.Equal(t, 2e9, f.CapRange.Max)
}

func TestKeyIsCanonical(t *testing.T) {
	a, err := Filters{Timeframe: "4h", MinVolUSD: 100000}.Normalize()
	require.NoError(t, err)
	b, err := Filters{Timeframe: " 4H", MinVolUSD: 100000}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, a.Key(), b.Key())
}

func TestInCapRangePassThroughOnUnknown(t *testing.T) {
	f := Filters{CapRange: CapRange{Min: 1e8, Max: 2e9}}

	// Unknown cap always passes, whatever the configured range.
	assert.True(t, f.InCapRange(0, false))
	assert.True(t, f.InCapRange(5e12, false))

	// Known caps follow the range.
	assert.True(t, f.InCapRange(1e9, true))
	assert.False(t, f.InCapRange(3e9, true))
	assert.False(t, f.InCapRange(1e6, true))
}

func TestInCapRangeUnboundedMax(t *testing.T) {
	f := Filters{CapRange: CapRange{Min: 1e8}}
	assert.True(t, f.InCapRange(5e12, true))
	assert.False(t, f.InCapRange(1e6, true))
}
