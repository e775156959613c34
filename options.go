package beamgo

import (
	"log/slog"

	"github.com/hupe1980/beamgo/arc"
	"github.com/hupe1980/beamgo/hypo"
	"github.com/hupe1980/beamgo/stack"
)

const (
	// DefaultRecyclerCap bounds the per-session free-slot list.
	DefaultRecyclerCap = 1 << 16
)

type options struct {
	policy           stack.Policy
	equivalence      hypo.Equivalence
	metricsCollector MetricsCollector
	logger           *Logger
	memoryLimit      int64
	maxWorkers       int
	arcLogging       bool
	sharedArcs       *arc.ConcurrentLog
	recyclerCap      int
	chunkSlots       int
}

// Option configures Decoder constructor behavior.
type Option func(*options)

// WithPolicy configures the per-bucket beam policy of every stack.
func WithPolicy(p stack.Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithCapacity configures the per-bucket beam size. <= 0 means unbounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.policy.Capacity = n
	}
}

// WithThreshold configures the per-bucket score threshold.
// Pass nil (or stack.NoThreshold()) to keep every hypothesis within capacity.
//
// Example:
//
//	dec, _ := beamgo.New(beamgo.WithThreshold(stack.Margin(5)))
func WithThreshold(t stack.Threshold) Option {
	return func(o *options) {
		o.policy.Threshold = t
	}
}

// WithEquivalence configures the exact-state equivalence used for
// recombination. If nil is passed, hypo.StateEquivalence is used.
func WithEquivalence(eq hypo.Equivalence) Option {
	return func(o *options) {
		o.equivalence = eq
	}
}

// WithMemoryLimit caps the arena memory reserved by open sessions.
// 0 tracks usage without a limit.
//
// The limit covers reservations, not resident memory: a closed session
// returns its reservation, but its arena keeps its chunks in the decoder's
// pool for reuse until the garbage collector drops the pooled arena.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxWorkers bounds the sessions DecodeBatch runs concurrently.
func WithMaxWorkers(n int) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithArcLogging toggles alternative recording.
//
// When disabled, hypotheses that lose recombination are freed immediately
// and AlternativesOf always returns nothing.
func WithArcLogging(enabled bool) Option {
	return func(o *options) {
		o.arcLogging = enabled
	}
}

// WithSharedArcLog makes sessions record their arcs into l, each through a
// scope of its own, instead of a private arc.Log. A session's scope is
// cleared when the session is closed. Ignored when arc logging is disabled.
func WithSharedArcLog(l *arc.ConcurrentLog) Option {
	return func(o *options) {
		o.sharedArcs = l
	}
}

// WithRecyclerCap bounds the per-session free-slot list.
func WithRecyclerCap(n int) Option {
	return func(o *options) {
		o.recyclerCap = n
	}
}

// WithChunkSlots configures the number of hypotheses per arena chunk.
func WithChunkSlots(n int) Option {
	return func(o *options) {
		o.chunkSlots = n
	}
}

// WithConfig applies a Config. Zero fields keep their current value.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		if cfg.StackCapacity != 0 {
			o.policy.Capacity = cfg.StackCapacity
		}
		if cfg.BeamMargin > 0 {
			o.policy.Threshold = stack.Margin(cfg.BeamMargin)
		}
		if cfg.MemoryLimitBytes > 0 {
			o.memoryLimit = cfg.MemoryLimitBytes
		}
		if cfg.MaxWorkers > 0 {
			o.maxWorkers = cfg.MaxWorkers
		}
		if cfg.ArcLogging != nil {
			o.arcLogging = *cfg.ArcLogging
		}
		if cfg.RecyclerCap > 0 {
			o.recyclerCap = cfg.RecyclerCap
		}
		if cfg.ChunkSlots > 0 {
			o.chunkSlots = cfg.ChunkSlots
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring sessions.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &beamgo.BasicMetricsCollector{}
//	dec, _ := beamgo.New(beamgo.WithMetricsCollector(metrics))
//	// ... decode ...
//	stats := metrics.GetStats()
//	fmt.Printf("Admitted: %d, Recombined: %d\n", stats.Admitted, stats.Recombined)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for sessions and batches.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := beamgo.NewJSONLogger(slog.LevelInfo)
//	dec, _ := beamgo.New(beamgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		policy:           stack.DefaultPolicy(),
		equivalence:      hypo.StateEquivalence{},
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		maxWorkers:       1,
		arcLogging:       true,
		recyclerCap:      DefaultRecyclerCap,
		chunkSlots:       hypo.DefaultChunkSlots,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.equivalence == nil {
		o.equivalence = hypo.StateEquivalence{}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}

func (o options) validate() error {
	return Config{
		MemoryLimitBytes: o.memoryLimit,
		MaxWorkers:       o.maxWorkers,
		RecyclerCap:      o.recyclerCap,
		ChunkSlots:       o.chunkSlots,
	}.Validate()
}
