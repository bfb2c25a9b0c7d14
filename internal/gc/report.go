package gc

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/nodestore/internal/arena"
	"github.com/hupe1980/nodestore/internal/resource"
)

// Report describes one measured collection cycle.
type Report struct {
	NodesBefore         int
	NodesAfter          int
	NodesCollected      int
	FragmentationBefore float64
	FragmentationAfter  float64
	Duration            time.Duration

	Marked       int
	Compacted    bool
	SlotsTrimmed int
}

// CollectionRate returns the percentage of nodes collected (0 for an empty heap).
func (r Report) CollectionRate() float64 {
	if r.NodesBefore == 0 {
		return 0
	}
	return float64(r.NodesCollected) / float64(r.NodesBefore) * 100
}

func (r Report) String() string {
	return fmt.Sprintf(
		"Collection{before: %d, after: %d, collected: %d (%.1f%%), fragmentation: %.2f -> %.2f, compacted: %t, duration: %s}",
		r.NodesBefore,
		r.NodesAfter,
		r.NodesCollected,
		r.CollectionRate(),
		r.FragmentationBefore,
		r.FragmentationAfter,
		r.Compacted,
		r.Duration,
	)
}

// CollectWithReport runs Collect and measures the heap around it.
// The before snapshot is taken after the collection slot is acquired, so
// time spent waiting on the resource controller is not counted.
func (c *Collector) CollectWithReport(ctx context.Context, roots []arena.NodeID, edges EdgeFunc) (Report, error) {
	if err := c.rc.AcquireCollection(ctx); err != nil {
		return Report{}, fmt.Errorf("acquire collection: %w", err)
	}
	defer c.rc.ReleaseCollection()

	return c.measure(ctx, roots, edges)
}

func (c *Collector) measure(ctx context.Context, roots []arena.NodeID, edges EdgeFunc) (Report, error) {
	before := c.heap.Len()
	fragBefore := c.heap.Fragmentation()

	start := time.Now()
	res, err := c.collect(ctx, roots, edges)
	elapsed := time.Since(start)
	if err != nil {
		return Report{}, err
	}

	after := c.heap.Len()
	return Report{
		NodesBefore:         before,
		NodesAfter:          after,
		NodesCollected:      max(before-after, 0),
		FragmentationBefore: fragBefore,
		FragmentationAfter:  c.heap.Fragmentation(),
		Duration:            elapsed,
		Marked:              res.Marked,
		Compacted:           res.Compacted,
		SlotsTrimmed:        res.SlotsTrimmed,
	}, nil
}

// TryCollectWithReport is CollectWithReport without waiting: it returns
// resource.ErrCollectionThrottled when another collection is running or the
// rate limit is exhausted.
func (c *Collector) TryCollectWithReport(ctx context.Context, roots []arena.NodeID, edges EdgeFunc) (Report, error) {
	if !c.rc.TryAcquireCollection() {
		return Report{}, resource.ErrCollectionThrottled
	}
	defer c.rc.ReleaseCollection()

	return c.measure(ctx, roots, edges)
}
