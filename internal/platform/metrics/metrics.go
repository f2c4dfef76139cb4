package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds process-wide series that no single bounded context owns.
type Metrics struct {
	BuildInfo     *prometheus.GaugeVec
	AuditDropped  prometheus.Counter
	SeededRecords prometheus.Counter
}

// New registers the process metrics on reg.
func New(reg prometheus.Registerer, version, environment string) *Metrics {
	m := &Metrics{
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "censusdesk_build_info",
			Help: "Always 1, labeled with the running version and environment",
		}, []string{"version", "environment"}),
		AuditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "censusdesk_audit_events_dropped_total",
			Help: "Audit events that could not be persisted",
		}),
		SeededRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "censusdesk_seeded_records_total",
			Help: "Demo census records written at startup",
		}),
	}
	reg.MustRegister(m.BuildInfo, m.AuditDropped, m.SeededRecords)
	m.BuildInfo.WithLabelValues(version, environment).Set(1)
	return m
}

func (m *Metrics) IncAuditDropped() {
	if m != nil {
		m.AuditDropped.Inc()
	}
}

func (m *Metrics) AddSeeded(n int) {
	if m != nil {
		m.SeededRecords.Add(float64(n))
	}
}

// Handler exposes g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
