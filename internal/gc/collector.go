package gc

import (
	"context"
	"fmt"

	"github.com/hupe1980/nodestore/internal/arena"
	"github.com/hupe1980/nodestore/internal/resource"
)

// DefaultCompactionThreshold is the fragmentation above which Collect compacts.
const DefaultCompactionThreshold = 0.5

// ctxCheckInterval is how many marked nodes pass between context checks.
const ctxCheckInterval = 1024

// EdgeFunc returns the handles id structurally references (e.g. its children).
// It may return stale handles; they are skipped.
type EdgeFunc func(id arena.NodeID) []arena.NodeID

// NoEdges is an EdgeFunc for graphs without edges: only roots survive.
func NoEdges(arena.NodeID) []arena.NodeID { return nil }

// Heap is the arena surface the collector needs. *arena.Arena[T] satisfies it
// for every payload type.
type Heap interface {
	Contains(id arena.NodeID) bool
	AllocatedIDs() []arena.NodeID
	Deallocate(id arena.NodeID) bool
	Fragmentation() float64
	Compact() int
	Len() int
}

var _ Heap = (*arena.Arena[any])(nil)

// Result summarizes one Collect call.
type Result struct {
	Marked       int
	Swept        int
	Compacted    bool
	SlotsTrimmed int
}

// Collector runs mark-sweep-compact cycles over a Heap.
type Collector struct {
	heap      Heap
	threshold float64
	rc        *resource.Controller
}

// Option configures a Collector.
type Option func(*Collector)

// WithCompactionThreshold sets the fragmentation above which Collect compacts.
// Values outside [0, 1] are ignored.
func WithCompactionThreshold(threshold float64) Option {
	return func(c *Collector) {
		if threshold >= 0 && threshold <= 1 {
			c.threshold = threshold
		}
	}
}

// WithResourceController makes Collect acquire a collection slot from rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(c *Collector) {
		c.rc = rc
	}
}

// New creates a Collector for heap.
func New(heap Heap, opts ...Option) *Collector {
	c := &Collector{
		heap:      heap,
		threshold: DefaultCompactionThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Mark adds id and everything reachable from it through edges to set.
// Handles that are not live, and handles already in set, are not expanded.
func (c *Collector) Mark(id arena.NodeID, edges EdgeFunc, set *ReachableSet) {
	_ = c.mark(context.Background(), id, edges, set)
}

func (c *Collector) mark(ctx context.Context, root arena.NodeID, edges EdgeFunc, set *ReachableSet) error {
	if edges == nil {
		edges = NoEdges
	}

	stack := []arena.NodeID{root}
	visited := 0
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if set.Contains(id) || !c.heap.Contains(id) {
			continue
		}
		set.Add(id)

		visited++
		if visited%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		for _, child := range edges(id) {
			if !set.Contains(child) {
				stack = append(stack, child)
			}
		}
	}
	return nil
}

// Sweep deallocates every live handle for which pred returns true.
// It works on a snapshot taken at call time, so nodes allocated while it runs
// are left alone. Returns the number of nodes freed.
func (c *Collector) Sweep(pred func(arena.NodeID) bool) int {
	swept := 0
	for _, id := range c.heap.AllocatedIDs() {
		if pred(id) && c.heap.Deallocate(id) {
			swept++
		}
	}
	return swept
}

// Collect frees every node not reachable from roots and compacts the heap if
// fragmentation ends up above the threshold.
//
// Invalid and duplicate roots are harmless; no roots frees everything. If ctx
// is cancelled while marking, Collect returns before sweeping anything.
func (c *Collector) Collect(ctx context.Context, roots []arena.NodeID, edges EdgeFunc) (Result, error) {
	if err := c.rc.AcquireCollection(ctx); err != nil {
		return Result{}, fmt.Errorf("acquire collection: %w", err)
	}
	defer c.rc.ReleaseCollection()

	return c.collect(ctx, roots, edges)
}

func (c *Collector) collect(ctx context.Context, roots []arena.NodeID, edges EdgeFunc) (Result, error) {
	set := acquireReachableSet()
	defer releaseReachableSet(set)

	for _, root := range roots {
		if err := c.mark(ctx, root, edges, set); err != nil {
			return Result{}, fmt.Errorf("mark: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("mark: %w", err)
	}

	res := Result{Marked: set.Len()}
	res.Swept = c.Sweep(func(id arena.NodeID) bool {
		return !set.Contains(id)
	})

	if c.heap.Fragmentation() > c.threshold {
		res.SlotsTrimmed = c.heap.Compact()
		res.Compacted = true
	}

	return res, nil
}
