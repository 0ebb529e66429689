package graphql

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client's collectors.  The zero value is not usable; use
// NewMetrics.
type Metrics struct {
	latency        *prometheus.HistogramVec
	requests       *prometheus.CounterVec
	responseErrors *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gql_latency_seconds",
			Help:    "Duration histogram for GQL client",
			Buckets: []float64{0.2, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation", "code", "method"}),

		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gql_requests_total",
			Help: "Number of HTTP requests, partitioned by operation, code, method.",
		}, []string{"operation", "code", "method"}),

		responseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gql_errors_total",
			Help: "Number of Graphql error, partitioned by operation, code, method.",
		}, []string{"operation", "code", "method"}),

		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gql_cache_lookups_total",
			Help: "Number of cache lookups, partitioned by operation and result.",
		}, []string{"operation", "result"}),
	}
}

// RegisterMetrics registers m's collectors with reg.  Registering the same
// Metrics twice is not an error.
func RegisterMetrics(reg prometheus.Registerer, m *Metrics) error {
	for _, c := range []prometheus.Collector{m.latency, m.requests, m.responseErrors, m.cacheLookups} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

func (m *Metrics) observeCache(operation string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) observeRequest(operation, code, method string, seconds float64, gqlErrors int) {
	if m == nil {
		return
	}
	m.latency.WithLabelValues(operation, code, method).Observe(seconds)
	m.requests.WithLabelValues(operation, code, method).Inc()
	if gqlErrors > 0 {
		m.responseErrors.WithLabelValues(operation, code, method).Add(float64(gqlErrors))
	}
}
