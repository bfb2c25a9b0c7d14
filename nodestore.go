package nodestore

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/nodestore/internal/arena"
	"github.com/hupe1980/nodestore/internal/gc"
	"github.com/hupe1980/nodestore/internal/resource"
)

// NodeID is a generational handle to a node in a Store.
type NodeID = arena.NodeID

// WeakHandle is a non-owning reference that does not keep its target alive.
type WeakHandle[T any] = arena.Weak[T]

// EdgeFunc lists the handles a node structurally references.
type EdgeFunc = gc.EdgeFunc

// CollectionReport describes one collection cycle.
type CollectionReport = gc.Report

// Stats is a snapshot of arena counters.
type Stats = arena.Stats

// NoEdges is an EdgeFunc for payloads without references.
func NoEdges(id NodeID) []NodeID { return gc.NoEdges(id) }

// Store is a concurrent node arena with a caller-driven collector.
// All methods are safe for concurrent use.
type Store[T any] struct {
	arena     *arena.Arena[T]
	collector *gc.Collector
	rc        *resource.Controller
	logger    *Logger
	metrics   MetricsCollector
}

// New creates an empty Store.
func New[T any](optFns ...Option) *Store[T] {
	opts := applyOptions(optFns)

	rc := resource.NewController(resource.Config{
		MaxSlots:                 opts.maxSlots,
		MaxConcurrentCollections: opts.maxConcurrentCollections,
		CollectionsPerSecond:     opts.collectionsPerSecond,
		CollectionBurst:          opts.collectionBurst,
	})

	a := arena.New[T](opts.capacity, arena.WithSlotAcquirer(rc))

	return &Store[T]{
		arena: a,
		collector: gc.New(a,
			gc.WithCompactionThreshold(opts.compactionThreshold),
			gc.WithResourceController(rc),
		),
		rc:      rc,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
	}
}

// Allocate stores v and returns its handle.
func (s *Store[T]) Allocate(v T) (NodeID, error) {
	start := time.Now()
	id, err := s.arena.Allocate(v)
	s.metrics.RecordAllocate(time.Since(start), err)
	s.logger.LogAllocate(context.Background(), id, err)
	return id, err
}

// Get returns the payload for id, or false if id is stale or unknown.
func (s *Store[T]) Get(id NodeID) (T, bool) {
	return s.arena.Get(id)
}

// Update runs fn on the stored payload of id under the write lock.
// fn must not call back into the Store. Returns false for stale handles.
func (s *Store[T]) Update(id NodeID, fn func(*T)) bool {
	return s.arena.Update(id, fn)
}

// Contains reports whether id refers to a live node.
func (s *Store[T]) Contains(id NodeID) bool {
	return s.arena.Contains(id)
}

// Deallocate frees id. It returns false for stale, unknown or already freed
// handles, which is never an error.
func (s *Store[T]) Deallocate(id NodeID) bool {
	ok := s.arena.Deallocate(id)
	s.metrics.RecordDeallocate(ok)
	return ok
}

// Len returns the number of live nodes.
func (s *Store[T]) Len() int { return s.arena.Len() }

// IsEmpty reports whether the store holds no live nodes.
func (s *Store[T]) IsEmpty() bool { return s.arena.IsEmpty() }

// Slots returns the number of slots, live or free.
func (s *Store[T]) Slots() int { return s.arena.Slots() }

// Capacity returns the reserved slot capacity.
func (s *Store[T]) Capacity() int { return s.arena.Capacity() }

// Fragmentation returns the share of free slots in [0, 1].
func (s *Store[T]) Fragmentation() float64 { return s.arena.Fragmentation() }

// AllocatedIDs returns a snapshot of all live handles in index order.
func (s *Store[T]) AllocatedIDs() []NodeID { return s.arena.AllocatedIDs() }

// Compact releases trailing free slots and returns how many were trimmed.
// Live handles stay valid.
func (s *Store[T]) Compact() int {
	trimmed := s.arena.Compact()
	s.metrics.RecordCompaction(trimmed)
	s.logger.LogCompact(context.Background(), trimmed, s.arena.Fragmentation())
	return trimmed
}

// Weak returns a weak handle to id. The handle must be released with
// Release once it is no longer needed.
func (s *Store[T]) Weak(id NodeID) *WeakHandle[T] {
	return arena.NewWeak(s.arena, id)
}

// WeakCount returns the number of unreleased weak handles to id.
func (s *Store[T]) WeakCount(id NodeID) int {
	return s.arena.WeakCount(id)
}

// Collect frees every node not reachable from roots through edges and
// compacts when fragmentation ends above the threshold. It waits for a
// collection slot (and the rate limit, if configured).
func (s *Store[T]) Collect(ctx context.Context, roots []NodeID, edges EdgeFunc) (CollectionReport, error) {
	report, err := s.collector.CollectWithReport(ctx, roots, edges)
	return s.finishCollect(ctx, len(roots), report, err)
}

// TryCollect is Collect without waiting. It fails with ErrCollectionThrottled
// if a collection cannot start immediately.
func (s *Store[T]) TryCollect(ctx context.Context, roots []NodeID, edges EdgeFunc) (CollectionReport, error) {
	report, err := s.collector.TryCollectWithReport(ctx, roots, edges)
	return s.finishCollect(ctx, len(roots), report, err)
}

func (s *Store[T]) finishCollect(ctx context.Context, roots int, report CollectionReport, err error) (CollectionReport, error) {
	if err != nil {
		err = fmt.Errorf("collect: %w", err)
	}
	s.metrics.RecordCollection(report, err)
	s.logger.WithCount(roots).LogCollect(ctx, report, err)
	if err != nil {
		return CollectionReport{}, err
	}

	if report.Compacted {
		s.metrics.RecordCompaction(report.SlotsTrimmed)
		s.logger.LogCompact(ctx, report.SlotsTrimmed, report.FragmentationAfter)
	}
	return report, nil
}

// Stats returns a snapshot of arena counters.
func (s *Store[T]) Stats() Stats { return s.arena.Stats() }

// SlotUsage returns the number of slots reserved against the budget.
func (s *Store[T]) SlotUsage() int64 { return s.rc.SlotUsage() }

// Arena exposes the underlying arena for low-level access.
func (s *Store[T]) Arena() *arena.Arena[T] { return s.arena }

func (s *Store[T]) String() string {
	return s.arena.String()
}
