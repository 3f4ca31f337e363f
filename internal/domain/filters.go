package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Timeframes accepted by the scanner.
var validTimeframes = map[string]bool{
	"1h": true,
	"4h": true,
	"1d": true,
}

// DefaultTimeframe is used when a request omits tf.
const DefaultTimeframe = "4h"

// CapRange bounds candidate market caps in USD. Zero Max means unbounded.
type CapRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Filters is the normalized scan input. The timeframe travels under the
// short key "tf"; the legacy "timeframe" key is rejected outright.
type Filters struct {
	Timeframe        string   `json:"tf" yaml:"tf"`
	MinVolUSD        float64  `json:"min_vol_usd" yaml:"min_vol_usd"`
	ExcludeLeveraged bool     `json:"exclude_leveraged" yaml:"exclude_leveraged"`
	CapRange         CapRange `json:"cap_range" yaml:"cap_range"`
}

// ParseFilters decodes and validates a raw JSON filter payload. Legacy or
// unknown fields fail with ErrInvalidFilters, never silent coercion.
func ParseFilters(raw []byte) (Filters, error) {
	if len(raw) == 0 {
		f := Filters{}
		return f.Normalize()
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Filters{}, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	if _, ok := probe["timeframe"]; ok {
		return Filters{}, fmt.Errorf("%w: legacy key %q is not supported, use %q", ErrInvalidFilters, "timeframe", "tf")
	}
	known := map[string]bool{"tf": true, "min_vol_usd": true, "exclude_leveraged": true, "cap_range": true}
	for key := range probe {
		if !known[key] {
			return Filters{}, fmt.Errorf("%w: unknown key %q", ErrInvalidFilters, key)
		}
	}

	var f Filters
	if err := json.Unmarshal(raw, &f); err != nil {
		return Filters{}, fmt.Errorf("%w: %v", ErrInvalidFilters, err)
	}
	return f.Normalize()
}

// Normalize validates and canonicalizes the filter set. Normalize is
// idempotent: Normalize(Normalize(f)) == Normalize(f).
func (f Filters) Normalize() (Filters, error) {
	out := f
	out.Timeframe = strings.ToLower(strings.TrimSpace(out.Timeframe))
	if out.Timeframe == "" {
		out.Timeframe = DefaultTimeframe
	}
	if !validTimeframes[out.Timeframe] {
		return Filters{}, fmt.Errorf("%w: unsupported timeframe %q", ErrInvalidFilters, out.Timeframe)
	}
	if out.MinVolUSD < 0 || math.IsNaN(out.MinVolUSD) || math.IsInf(out.MinVolUSD, 0) {
		return Filters{}, fmt.Errorf("%w: min_vol_usd must be a finite value >= 0", ErrInvalidFilters)
	}
	if out.CapRange.Min < 0 || out.CapRange.Max < 0 {
		return Filters{}, fmt.Errorf("%w: cap_range bounds must be >= 0", ErrInvalidFilters)
	}
	if out.CapRange.Max > 0 && out.CapRange.Min > out.CapRange.Max {
		return Filters{}, fmt.Errorf("%w: cap_range min %v exceeds max %v", ErrInvalidFilters, out.CapRange.Min, out.CapRange.Max)
	}
	return out, nil
}

// Key returns the canonical cache key for a normalized filter set.
func (f Filters) Key() string {
	return fmt.Sprintf("tf=%s|vol=%.0f|lev=%t|cap=%.0f-%.0f",
		f.Timeframe, f.MinVolUSD, f.ExcludeLeveraged, f.CapRange.Min, f.CapRange.Max)
}

// InCapRange reports whether a known market cap falls inside the range.
// An unknown cap (known == false) always passes: only a known out-of-range
// cap excludes a candidate.
func (f Filters) InCapRange(cap float64, known bool) bool {
	if !known {
		return true
	}
	if f.CapRange.Min > 0 && cap < f.CapRange.Min {
		return false
	}
	if f.CapRange.Max > 0 && cap > f.CapRange.Max {
		return false
	}
	return true
}
