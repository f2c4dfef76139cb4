package request

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// unmatchedRoute labels requests no route pattern matched, keeping raw paths
// (and the record IDs inside them) out of label values.
const unmatchedRoute = "unmatched"

type Metrics struct {
	Duration *prometheus.HistogramVec
	Requests *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "censusdesk_http_request_duration_seconds",
			Help:    "HTTP handler latency by method and route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "censusdesk_http_requests_total",
			Help: "HTTP requests by method, route pattern and status class.",
		}, []string{"method", "route", "class"}),
	}
}

func (m *Metrics) observe(method, route string, status int, elapsed time.Duration) {
	m.Duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	m.Requests.WithLabelValues(method, route, statusClass(status)).Inc()
}

// statusClass maps 404 to "4xx".
func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "other"
	}
	return strconv.Itoa(status/100) + "xx"
}

// LatencyMiddleware records latency and status class per route pattern.
// route returns "" when no pattern matched.
func LatencyMiddleware(m *Metrics, route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			pattern := unmatchedRoute
			if route != nil {
				if p := route(r); p != "" {
					pattern = p
				}
			}
			m.observe(r.Method, pattern, wrapped.statusCode, time.Since(start))
		})
	}
}
