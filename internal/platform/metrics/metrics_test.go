package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposedThroughHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg, "v1.2.3", "test")
	m.IncAuditDropped()
	m.AddSeeded(4)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditDropped))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.SeededRecords))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `censusdesk_build_info{environment="test",version="v1.2.3"} 1`)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.IncAuditDropped()
	m.AddSeeded(1)
}
