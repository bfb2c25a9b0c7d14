package nodestore

import (
	"log/slog"

	"github.com/hupe1980/nodestore/internal/gc"
)

type options struct {
	capacity                 int
	maxSlots                 int64
	compactionThreshold      float64
	maxConcurrentCollections int64
	collectionsPerSecond     float64
	collectionBurst          int
	arenaName                string
	metricsCollector         MetricsCollector
	logger                   *Logger
}

// Option configures Store construction.
type Option func(*options)

// WithCapacity reserves storage for at least n slots up front.
// Values <= 0 start with an empty arena.
func WithCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithMaxSlots bounds the number of slots the arena may grow to.
// Allocations that would add a slot beyond the limit fail with an error
// wrapping ErrResourceExhausted. Reusing freed slots is always allowed.
// If n <= 0, the arena is unbounded.
func WithMaxSlots(n int64) Option {
	return func(o *options) {
		o.maxSlots = n
	}
}

// WithCompactionThreshold sets the fragmentation above which Collect compacts
// (default 0.5). Values outside [0, 1] are ignored.
func WithCompactionThreshold(threshold float64) Option {
	return func(o *options) {
		if threshold >= 0 && threshold <= 1 {
			o.compactionThreshold = threshold
		}
	}
}

// WithMaxConcurrentCollections sets how many collections may run at once
// (default 1).
func WithMaxConcurrentCollections(n int64) Option {
	return func(o *options) {
		o.maxConcurrentCollections = n
	}
}

// WithCollectionRateLimit limits how often collections may start.
// Collect waits for a token; TryCollect fails with ErrCollectionThrottled.
//
// Example:
//
//	s := nodestore.New[*Node](nodestore.WithCollectionRateLimit(10, 2))
func WithCollectionRateLimit(perSecond float64, burst int) Option {
	return func(o *options) {
		o.collectionsPerSecond = perSecond
		o.collectionBurst = burst
	}
}

// WithArenaName tags every log record of the store with an arena field.
func WithArenaName(name string) Option {
	return func(o *options) {
		o.arenaName = name
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &nodestore.BasicMetricsCollector{}
//	s := nodestore.New[string](nodestore.WithMetricsCollector(metrics))
//	// ... use s ...
//	stats := metrics.GetStats()
//	fmt.Printf("Allocs: %d, Avg latency: %dns\n", stats.AllocateCount, stats.AllocateAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := nodestore.NewJSONLogger(slog.LevelInfo)
//	s := nodestore.New[string](nodestore.WithLogger(logger))
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
		compactionThreshold: gc.DefaultCompactionThreshold,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.arenaName != "" {
		o.logger = o.logger.WithArena(o.arenaName)
	}
	return o
}
