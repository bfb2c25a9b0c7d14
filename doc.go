// Package nodestore provides a concurrent generational node arena with weak
// handles and a caller-driven mark-and-sweep collector.
//
// Nodes are stored behind NodeID handles: a slot index plus a generation.
// When a node is freed its slot is reused, but the generation changes, so
// old handles stop resolving instead of aliasing the new occupant.
//
// # Quick Start
//
//	s := nodestore.New[*Node]()
//	root, _ := s.Allocate(&Node{Name: "root"})
//	child, _ := s.Allocate(&Node{Name: "child"})
//
//	n, ok := s.Get(child) // live
//	s.Deallocate(child)
//	_, ok = s.Get(child)  // false: stale handle
//
// # Weak Handles
//
// A weak handle refers to a node without keeping it alive:
//
//	w := s.Weak(root)
//	defer w.Release()
//	if n, ok := w.Upgrade(); ok {
//	    fmt.Println(n.Name)
//	}
//
// # Collection
//
// The store does not know how nodes reference each other; Collect takes the
// roots and an EdgeFunc:
//
//	report, err := s.Collect(ctx, []nodestore.NodeID{root}, func(id nodestore.NodeID) []nodestore.NodeID {
//	    n, _ := s.Get(id)
//	    return n.Children
//	})
//	fmt.Println(report) // Collection{before: ..., after: ..., collected: ...}
//
// Collections are serialized by default (WithMaxConcurrentCollections) and can
// be rate limited (WithCollectionRateLimit). Collect compacts the arena when
// fragmentation ends above the threshold (WithCompactionThreshold).
//
// # Bounded Mode
//
// WithMaxSlots caps arena growth. Allocations beyond the budget fail fast:
//
//	s := nodestore.New[int](nodestore.WithMaxSlots(1024))
//	if _, err := s.Allocate(1); errors.Is(err, nodestore.ErrResourceExhausted) {
//	    // collect and retry
//	}
//
// # Observability
//
//	metrics := &nodestore.BasicMetricsCollector{}
//	s := nodestore.New[int](
//	    nodestore.WithLogger(nodestore.NewJSONLogger(slog.LevelInfo)),
//	    nodestore.WithMetricsCollector(metrics),
//	    nodestore.WithArenaName("dom"),
//	)
//
// See the dom package for a small document model built on Store.
package nodestore
