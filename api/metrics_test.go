package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest(TransportTCP, StatusOK)
	m.RecordConversion(1, 1, time.Millisecond)
	m.inFlight(1)
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("frame", reg)

	m.RecordRequest(TransportTCP, StatusOK)
	m.RecordRequest(TransportTCP, StatusOK)
	m.RecordRequest(TransportZMQ, StatusRejected)
	m.RecordConversion(2, 10, 5*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(TransportTCP, StatusOK)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues(TransportZMQ, StatusRejected)))
	require.Equal(t, 2.0, testutil.ToFloat64(m.BatchesTotal))
	require.Equal(t, 10.0, testutil.ToFloat64(m.RowsTotal))

	expected := `
# HELP frame_frames_converted_total Total number of data frames produced
# TYPE frame_frames_converted_total counter
frame_frames_converted_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "frame_frames_converted_total"))
}

func TestMetricsServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("frame", reg)
	m.RecordRequest(TransportTCP, StatusOK)

	srv := NewMetricsServer("127.0.0.1:0", reg)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "OK", rec.Body.String())

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `frame_requests_total{status="ok",transport="tcp"} 1`)
}
