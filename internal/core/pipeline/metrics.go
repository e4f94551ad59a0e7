package pipeline

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Requests processed, by request name, kind, and outcome.",
		}, []string{"request", "kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "pipeline",
			Name:      "request_duration_seconds",
			Help:      "Request processing time in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request", "kind"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "relay",
			Subsystem: "pipeline",
			Name:      "inflight_requests",
			Help:      "Requests currently being processed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.inflight)
	}
	return m
}

// WithMetrics records request counts and latency. Like logging, it sits
// outside the translation stage and therefore observes the same outcome
// the caller receives.
func WithMetrics(m *Metrics) Middleware {
	return func(next Stage) Stage {
		return func(ctx context.Context, req Request) Result {
			if m == nil {
				return next(ctx, req)
			}
			start := time.Now()
			m.inflight.Inc()
			defer m.inflight.Dec()

			res := next(ctx, req)

			outcome := "success"
			if !res.OK() {
				outcome = res.Err.Kind.String()
			}
			name, kind := req.RequestName(), req.RequestKind().String()
			m.requests.WithLabelValues(name, kind, outcome).Inc()
			m.duration.WithLabelValues(name, kind).Observe(time.Since(start).Seconds())
			return res
		}
	}
}
