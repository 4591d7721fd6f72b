package transport

import (
	"context"
	"strconv"
	"time"

	"github.com/ggoodman/payments-go/internal/logctx"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts exchanges and their latency per API operation.
type Metrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "payments",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Total number of API requests by operation and outcome.",
	}, []string{"operation", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "payments",
		Subsystem: "client",
		Name:      "request_duration_ms",
		Help:      "API request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"operation"})

	reg.MustRegister(requests, latency)
	return &Metrics{Requests: requests, LatencyMS: latency}
}

// observe records one exchange. A status of 0 means no response arrived.
func (m *Metrics) observe(ctx context.Context, status int, d time.Duration) {
	if m == nil {
		return
	}
	op := logctx.Operation(ctx)
	if op == "" {
		op = "unknown"
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(op, label).Inc()
	m.LatencyMS.WithLabelValues(op).Observe(float64(d) / float64(time.Millisecond))
}
