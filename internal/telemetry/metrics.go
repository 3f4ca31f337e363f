// Package telemetry exposes the scanner's Prometheus metrics and the
// monitor HTTP endpoints.
package telemetry

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Metrics holds the scanner's Prometheus instruments.
type Metrics struct {
	ScanDuration   *prometheus.HistogramVec
	ScansTotal     *prometheus.CounterVec
	CandidateCount prometheus.Gauge
	CacheHits      *prometheus.CounterVec
	CacheMisses    *prometheus.CounterVec
	UpstreamErrors *prometheus.CounterVec
	StaleServes    prometheus.Counter
}

// NewMetrics creates and registers the instrument set on its own registry
// so tests can construct it repeatedly.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coinscout_scan_duration_seconds",
				Help:    "Duration of a full scan pass in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"tf", "result"},
		),
		ScansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_scans_total",
				Help: "Total scans by outcome",
			},
			[]string{"result"},
		),
		CandidateCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "coinscout_candidates",
				Help: "Candidates surviving the filter pipeline in the last scan",
			},
		),
		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_cache_hits_total",
				Help: "Cache hits by cache type",
			},
			[]string{"cache"},
		),
		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_cache_misses_total",
				Help: "Cache misses by cache type",
			},
			[]string{"cache"},
		),
		UpstreamErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coinscout_upstream_errors_total",
				Help: "Upstream fetch failures by source",
			},
			[]string{"source"},
		),
		StaleServes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "coinscout_stale_serves_total",
				Help: "Scan results served from the stale fallback",
			},
		),
	}

	reg.MustRegister(
		m.ScanDuration, m.ScansTotal, m.CandidateCount,
		m.CacheHits, m.CacheMisses, m.UpstreamErrors, m.StaleServes,
	)
	return m
}

// ObserveScan records one scan pass.
func (m *Metrics) ObserveScan(tf, result string, d time.Duration, candidates int) {
	if m == nil {
		return
	}
	m.ScanDuration.WithLabelValues(tf, result).Observe(d.Seconds())
	m.ScansTotal.WithLabelValues(result).Inc()
	m.CandidateCount.Set(float64(candidates))
}

// RecordUpstreamError counts one source failure.
func (m *Metrics) RecordUpstreamError(source string) {
	if m == nil {
		return
	}
	m.UpstreamErrors.WithLabelValues(source).Inc()
}

// RecordStaleServe counts one stale-fallback response.
func (m *Metrics) RecordStaleServe() {
	if m == nil {
		return
	}
	m.StaleServes.Inc()
}

// Router returns the monitor HTTP router with /health and /metrics.
func Router(gatherer prometheus.Gatherer) *mux.Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)
	return r
}

// Serve runs the monitor server until the listener fails.
func Serve(addr string, gatherer prometheus.Gatherer) error {
	log.Info().Str("addr", addr).Msg("monitor server listening")
	return http.ListenAndServe(addr, Router(gatherer))
}
