// Package gc implements mark-sweep-compact collection over a node arena.
//
// The arena knows nothing about tree shape, so every Collect call takes an
// EdgeFunc that lists the handles a node references. Marking walks those edges
// from the roots with an explicit stack; sweeping frees every live handle in
// an AllocatedIDs snapshot that was not marked; compaction runs when the
// remaining fragmentation is above the threshold (0.5 by default).
//
//	c := gc.New(a, gc.WithResourceController(rc))
//	report, err := c.CollectWithReport(ctx, []arena.NodeID{root}, doc.Children)
//
// Concurrent allocation during a cycle is allowed. Nodes allocated after the
// sweep snapshot are never touched; nodes allocated between marking and the
// snapshot are treated as unreachable.
package gc
