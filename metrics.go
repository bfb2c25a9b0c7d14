package nodestore

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordAllocate is called after each allocation.
	// err is non-nil only when a slot budget is exhausted.
	RecordAllocate(duration time.Duration, err error)

	// RecordDeallocate is called after each deallocation.
	// freed is false for stale or unknown handles.
	RecordDeallocate(freed bool)

	// RecordCollection is called after each collection cycle.
	RecordCollection(report CollectionReport, err error)

	// RecordCompaction is called after each compaction with the number of
	// trailing slots released.
	RecordCompaction(trimmed int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocate(time.Duration, error)      {}
func (NoopMetricsCollector) RecordDeallocate(bool)                    {}
func (NoopMetricsCollector) RecordCollection(CollectionReport, error) {}
func (NoopMetricsCollector) RecordCompaction(int)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocateCount        atomic.Int64
	AllocateErrors       atomic.Int64
	AllocateTotalNanos   atomic.Int64
	DeallocateCount      atomic.Int64
	DeallocateMisses     atomic.Int64
	CollectionCount      atomic.Int64
	CollectionErrors     atomic.Int64
	CollectionTotalNanos atomic.Int64
	NodesCollected       atomic.Int64
	CompactionCount      atomic.Int64
	SlotsTrimmed         atomic.Int64
}

// RecordAllocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocate(duration time.Duration, err error) {
	b.AllocateCount.Add(1)
	b.AllocateTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AllocateErrors.Add(1)
	}
}

// RecordDeallocate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDeallocate(freed bool) {
	if freed {
		b.DeallocateCount.Add(1)
	} else {
		b.DeallocateMisses.Add(1)
	}
}

// RecordCollection implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCollection(report CollectionReport, err error) {
	b.CollectionCount.Add(1)
	if err != nil {
		b.CollectionErrors.Add(1)
		return
	}
	b.CollectionTotalNanos.Add(report.Duration.Nanoseconds())
	b.NodesCollected.Add(int64(report.NodesCollected))
}

// RecordCompaction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompaction(trimmed int) {
	b.CompactionCount.Add(1)
	b.SlotsTrimmed.Add(int64(trimmed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocateCount:      b.AllocateCount.Load(),
		AllocateErrors:     b.AllocateErrors.Load(),
		AllocateAvgNanos:   avg(b.AllocateTotalNanos.Load(), b.AllocateCount.Load()),
		DeallocateCount:    b.DeallocateCount.Load(),
		DeallocateMisses:   b.DeallocateMisses.Load(),
		CollectionCount:    b.CollectionCount.Load(),
		CollectionErrors:   b.CollectionErrors.Load(),
		CollectionAvgNanos: avg(b.CollectionTotalNanos.Load(), b.CollectionCount.Load()-b.CollectionErrors.Load()),
		NodesCollected:     b.NodesCollected.Load(),
		CompactionCount:    b.CompactionCount.Load(),
		SlotsTrimmed:       b.SlotsTrimmed.Load(),
	}
}

func avg(total, count int64) int64 {
	if count <= 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of metrics from BasicMetricsCollector.
type BasicMetricsStats struct {
	AllocateCount      int64
	AllocateErrors     int64
	AllocateAvgNanos   int64
	DeallocateCount    int64
	DeallocateMisses   int64
	CollectionCount    int64
	CollectionErrors   int64
	CollectionAvgNanos int64
	NodesCollected     int64
	CompactionCount    int64
	SlotsTrimmed       int64
}
