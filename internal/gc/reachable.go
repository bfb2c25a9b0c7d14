package gc

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/nodestore/internal/arena"
)

// ReachableSet is the set of handles marked during one collection cycle.
// Handles are stored by their packed Key, so two generations of the same
// index are distinct members. It is not safe for concurrent use.
type ReachableSet struct {
	rb *roaring64.Bitmap
}

// NewReachableSet creates an empty set.
func NewReachableSet() *ReachableSet {
	return &ReachableSet{rb: roaring64.New()}
}

// Add inserts id and reports whether it was newly added.
func (s *ReachableSet) Add(id arena.NodeID) bool {
	return s.rb.CheckedAdd(id.Key())
}

// Contains reports whether id was marked.
func (s *ReachableSet) Contains(id arena.NodeID) bool {
	return s.rb.Contains(id.Key())
}

// Len returns the number of marked handles.
func (s *ReachableSet) Len() int {
	return int(s.rb.GetCardinality()) //nolint:gosec // bounded by arena.MaxSlots
}

// Clear empties the set for reuse in another cycle.
func (s *ReachableSet) Clear() {
	s.rb.Clear()
}

var reachablePool = sync.Pool{
	New: func() any { return NewReachableSet() },
}

func acquireReachableSet() *ReachableSet {
	return reachablePool.Get().(*ReachableSet)
}

func releaseReachableSet(s *ReachableSet) {
	s.Clear()
	reachablePool.Put(s)
}
