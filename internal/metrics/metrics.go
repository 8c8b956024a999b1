// Package metrics holds the Prometheus collectors for the journal server.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the server's collectors.
//
//   - journal_http_requests_total{route,method,code}
//   - journal_http_request_duration_seconds{route}
//   - journal_store_writes_total{op,result}
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	StoreWrites     *prometheus.CounterVec
}

// New returns the process-wide collectors, registering them on first use.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "journal_http_requests_total",
					Help: "HTTP requests by route, method and status code",
				},
				[]string{"route", "method", "code"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "journal_http_request_duration_seconds",
					Help:    "HTTP request latency by route",
					Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
				},
				[]string{"route"},
			),
			StoreWrites: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "journal_store_writes_total",
					Help: "Reflection store mutations by operation and result",
				},
				[]string{"op", "result"},
			),
		}
	})
	return globalMetrics
}

// RecordWrite counts one store mutation
func (m *Metrics) RecordWrite(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.StoreWrites.WithLabelValues(op, result).Inc()
}
