// Package testutil provides testing utilities for nodestore.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded RNG, a thread-safe adjacency graph whose Edges method
// can be passed straight to a collector, and a random forest builder.
//
// # Random Forests
//
//	rng := testutil.NewRNG(seed)
//	a := arena.New[int](0)
//	f, _ := testutil.BuildForest(rng, a, testutil.ForestOptions{Nodes: 10_000, RootRate: 0.01},
//	    func(i int) int { return i })
//
// # Ground Truth
//
//	want := f.Reachable(f.Roots[:3]...)
package testutil
