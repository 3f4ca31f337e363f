package domain

import "errors"

// Typed error classes. Callers branch with errors.Is; everything else is
// wrapped context via fmt.Errorf("...: %w", ...).
var (
	// ErrInvalidFilters marks malformed or legacy-shaped scan input.
	// It is a client error and is never coerced into a best-effort scan.
	ErrInvalidFilters = errors.New("invalid filters")

	// ErrUpstreamUnavailable marks an external fetch failure. Recovery is
	// per-candidate (skip + stale flag) or per-source (cached/neutral data).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNoData marks a scan that failed with no cached result to fall back on.
	ErrNoData = errors.New("no scan data available")
)
