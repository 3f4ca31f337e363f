package telemetry

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	m.ObserveScan("4h", "ok", time.Second, 10)
	m.RecordUpstreamError("binance")
	m.RecordStaleServe()
}

func TestObserveScan(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveScan("4h", "ok", 2*time.Second, 12)
	m.ObserveScan("4h", "error", time.Second, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScansTotal.WithLabelValues("error")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.CandidateCount))
}

func TestRecordCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordUpstreamError("binance")
	m.RecordUpstreamError("binance")
	m.RecordStaleServe()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamErrors.WithLabelValues("binance")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StaleServes))
}

func TestRouterEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveScan("4h", "ok", time.Second, 3)
	router := Router(reg)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", nil))
	require.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rr.Code)
	assert.Contains(t, rr.Body.String(), "coinscout_scans_total")
}

func TestHealthRejectsNonGet(t *testing.T) {
	router := Router(prometheus.NewRegistry())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/health", nil))
	assert.Equal(t, 405, rr.Code)
}
