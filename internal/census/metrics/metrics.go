package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons used as the "reason" label.
const (
	ReasonValidation = "validation"
	ReasonConflict   = "conflict"
	ReasonForbidden  = "forbidden"
	ReasonStore      = "store"
)

// Metrics holds Prometheus collectors for census record operations.
type Metrics struct {
	RecordsCreated  *prometheus.CounterVec
	RecordsUpdated  prometheus.Counter
	RecordsDeleted  prometheus.Counter
	Rejections      *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	RecordsListed   prometheus.Histogram
	ReportsExported prometheus.Counter
}

// New registers census collectors on reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		RecordsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "censusdesk_records_created_total",
			Help: "Total number of census records created",
		}, []string{"territory"}),
		RecordsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "censusdesk_records_updated_total",
			Help: "Total number of census records updated",
		}),
		RecordsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "censusdesk_records_deleted_total",
			Help: "Total number of census records deleted",
		}),
		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "censusdesk_record_rejections_total",
			Help: "Census mutations rejected, by operation and reason",
		}, []string{"operation", "reason"}),
		StoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "censusdesk_record_store_duration_seconds",
			Help:    "Duration of census record store round trips",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		RecordsListed: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "censusdesk_records_listed",
			Help:    "Number of records returned per list request",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
		ReportsExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "censusdesk_reports_exported_total",
			Help: "Total number of census reports exported",
		}),
	}
}

func (m *Metrics) IncCreated(territory string) {
	m.RecordsCreated.WithLabelValues(territory).Inc()
}

func (m *Metrics) IncUpdated() { m.RecordsUpdated.Inc() }
func (m *Metrics) IncDeleted() { m.RecordsDeleted.Inc() }

func (m *Metrics) IncRejected(operation, reason string) {
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) ObserveStore(operation string, start time.Time) {
	m.StoreDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveListed(n int) { m.RecordsListed.Observe(float64(n)) }

func (m *Metrics) IncExported() { m.ReportsExported.Inc() }
