package beamgo

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/beamgo/stack"
)

const metricsNamespace = "beamgo"

// PrometheusCollector exports decoder metrics through client_golang.
type PrometheusCollector struct {
	admissions      *prometheus.CounterVec
	admitErrors     prometheus.Counter
	sessions        prometheus.Counter
	sessionDuration prometheus.Histogram
	sessionSlots    prometheus.Histogram
	batches         *prometheus.CounterVec
	batchDuration   prometheus.Histogram
}

// NewPrometheusCollector creates the collector and registers its metrics on reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusCollector{
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "stack",
			Name:      "admissions_total",
			Help:      "Hypotheses admitted into stacks, by outcome.",
		}, []string{"outcome"}),
		admitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "stack",
			Name:      "admission_errors_total",
			Help:      "Admissions rejected as contract violations.",
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "session",
			Name:      "closed_total",
			Help:      "Decoding sessions closed.",
		}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "session",
			Name:      "duration_seconds",
			Help:      "Lifetime of decoding sessions.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		sessionSlots: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "session",
			Name:      "arena_slots",
			Help:      "Arena slots handed out per session.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "sessions_total",
			Help:      "Sessions run by DecodeBatch, by result.",
		}, []string{"result"}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "batch",
			Name:      "duration_seconds",
			Help:      "Wall time of DecodeBatch calls.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		p.admissions, p.admitErrors, p.sessions, p.sessionDuration,
		p.sessionSlots, p.batches, p.batchDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// RecordAdmit implements MetricsCollector.
func (p *PrometheusCollector) RecordAdmit(outcome stack.Outcome, err error) {
	if err != nil {
		p.admitErrors.Inc()
		return
	}
	p.admissions.WithLabelValues(outcome.String()).Inc()
}

// RecordSession implements MetricsCollector.
func (p *PrometheusCollector) RecordSession(duration time.Duration, stats SessionStats) {
	p.sessions.Inc()
	p.sessionDuration.Observe(duration.Seconds())
	p.sessionSlots.Observe(float64(stats.Arena.Slots))
}

// RecordBatch implements MetricsCollector.
func (p *PrometheusCollector) RecordBatch(count, failed int, duration time.Duration) {
	p.batches.WithLabelValues("ok").Add(float64(count - failed))
	p.batches.WithLabelValues("failed").Add(float64(failed))
	p.batchDuration.Observe(duration.Seconds())
}
