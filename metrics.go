package beamgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/beamgo/stack"
)

// MetricsCollector defines an interface for collecting decoder metrics.
// Implement this interface to integrate with monitoring systems;
// PrometheusCollector is provided for client_golang.
type MetricsCollector interface {
	// RecordAdmit is called after each admission.
	// outcome is only meaningful when err is nil.
	RecordAdmit(outcome stack.Outcome, err error)

	// RecordSession is called when a session is closed.
	// duration is the session lifetime, stats its final counters.
	RecordSession(duration time.Duration, stats SessionStats)

	// RecordBatch is called after each DecodeBatch.
	// count is the number of sessions attempted, failed the number that failed.
	RecordBatch(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdmit(stack.Outcome, error)          {}
func (NoopMetricsCollector) RecordSession(time.Duration, SessionStats) {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	Admitted          atomic.Int64
	AdmitErrors       atomic.Int64
	NewBest           atomic.Int64
	Added             atomic.Int64
	Recombined        atomic.Int64
	Discarded         atomic.Int64
	SessionCount      atomic.Int64
	SessionTotalNanos atomic.Int64
	SessionSlots      atomic.Int64
	BatchCount        atomic.Int64
	BatchSessions     atomic.Int64
	BatchFailed       atomic.Int64
}

// RecordAdmit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdmit(outcome stack.Outcome, err error) {
	if err != nil {
		b.AdmitErrors.Add(1)
		return
	}
	b.Admitted.Add(1)
	switch outcome {
	case stack.NewBest:
		b.NewBest.Add(1)
	case stack.Added:
		b.Added.Add(1)
	case stack.Recombined:
		b.Recombined.Add(1)
	case stack.Discarded:
		b.Discarded.Add(1)
	}
}

// RecordSession implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSession(duration time.Duration, stats SessionStats) {
	b.SessionCount.Add(1)
	b.SessionTotalNanos.Add(duration.Nanoseconds())
	b.SessionSlots.Add(int64(stats.Arena.Slots))
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchSessions.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		Admitted:        b.Admitted.Load(),
		AdmitErrors:     b.AdmitErrors.Load(),
		NewBest:         b.NewBest.Load(),
		Added:           b.Added.Load(),
		Recombined:      b.Recombined.Load(),
		Discarded:       b.Discarded.Load(),
		SessionCount:    b.SessionCount.Load(),
		SessionAvgNanos: b.getAvgSessionNanos(),
		SessionSlots:    b.SessionSlots.Load(),
		BatchCount:      b.BatchCount.Load(),
		BatchSessions:   b.BatchSessions.Load(),
		BatchFailed:     b.BatchFailed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSessionNanos() int64 {
	count := b.SessionCount.Load()
	if count == 0 {
		return 0
	}
	return b.SessionTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	Admitted        int64
	AdmitErrors     int64
	NewBest         int64
	Added           int64
	Recombined      int64
	Discarded       int64
	SessionCount    int64
	SessionAvgNanos int64
	SessionSlots    int64
	BatchCount      int64
	BatchSessions   int64
	BatchFailed     int64
}
