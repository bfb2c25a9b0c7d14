package arena

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

var (
	// ErrResourceExhausted is returned by Allocate when a bounded arena cannot grow.
	ErrResourceExhausted = errors.New("arena: resource exhausted")
	// ErrIndexSpaceExhausted is returned when the 32-bit index space is used up.
	ErrIndexSpaceExhausted = fmt.Errorf("%w: index space exhausted", ErrResourceExhausted)
)

// MaxSlots is the largest number of slots an arena can address.
const MaxSlots = math.MaxUint32

// SlotAcquirer reserves slot budget for arena growth.
// AcquireSlots must not block; it returns an error when the budget is exhausted.
type SlotAcquirer interface {
	AcquireSlots(n int64) error
	ReleaseSlots(n int64)
}

// NodeID is a generational handle to a slot.
type NodeID struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether id is the zero handle, which never resolves.
func (id NodeID) IsZero() bool {
	return id.Generation == 0
}

// Key packs the handle into a single uint64 (index in the high bits).
func (id NodeID) Key() uint64 {
	return uint64(id.Index)<<32 | uint64(id.Generation)
}

func (id NodeID) String() string {
	return fmt.Sprintf("NodeID(%d@%d)", id.Index, id.Generation)
}

// Stats is a point-in-time view of arena activity.
//
// Note on semantics:
//   - TotalAllocs, TotalFrees, Reuses, StaleLookups, Compactions, SlotsTrimmed: cumulative
//   - Live, Slots, Capacity, FreeSlots, RetiredSlots: current
//   - PeakSlots: high-water mark of Slots
type Stats struct {
	TotalAllocs  uint64
	TotalFrees   uint64
	Reuses       uint64
	StaleLookups uint64
	Compactions  uint64
	SlotsTrimmed uint64
	PeakSlots    uint64

	Live         int
	Slots        int
	Capacity     int
	FreeSlots    int
	RetiredSlots int
}

// atomicStats keeps the write-path counters apart from the lookup counter so
// concurrent readers bumping StaleLookups do not share a line with Allocate.
type atomicStats struct {
	TotalAllocs  atomic.Uint64
	TotalFrees   atomic.Uint64
	Reuses       atomic.Uint64
	Compactions  atomic.Uint64
	SlotsTrimmed atomic.Uint64
	PeakSlots    atomic.Uint64
	_            cpu.CacheLinePad
	StaleLookups atomic.Uint64
	_            cpu.CacheLinePad
}

type slot[T any] struct {
	payload    T
	generation uint32
	occupied   bool
	retired    bool  // generation exhausted; never reissued
	weak       int32 // accessed atomically under the read lock
}

// Arena is a thread-safe generational slot arena.
type Arena[T any] struct {
	mu       sync.RWMutex
	slots    []slot[T]
	free     []uint32
	genFloor uint32 // highest generation ever issued from a slot trimmed by Compact
	retired  int
	live     atomic.Int64
	stats    atomicStats
	acquirer SlotAcquirer
}

type config struct {
	acquirer SlotAcquirer
}

// Option is a configuration option for Arena.
type Option func(*config)

// WithSlotAcquirer bounds arena growth by the given acquirer.
// Every newly appended slot is acquired; slots trimmed by Compact are released.
func WithSlotAcquirer(acquirer SlotAcquirer) Option {
	return func(c *config) {
		c.acquirer = acquirer
	}
}

// New creates an arena. A positive capacity pre-reserves storage for that many
// slots without allocating any payloads.
func New[T any](capacity int, opts ...Option) *Arena[T] {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	a := &Arena[T]{acquirer: cfg.acquirer}
	if capacity > 0 {
		a.slots = make([]slot[T], 0, capacity)
	}
	return a
}

// Allocate stores v and returns its handle.
// It reuses the most recently freed slot if there is one.
func (a *Arena[T]) Allocate(v T) (NodeID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]

		s := &a.slots[idx]
		s.payload = v
		s.occupied = true

		a.live.Add(1)
		a.stats.TotalAllocs.Add(1)
		a.stats.Reuses.Add(1)
		return NodeID{Index: idx, Generation: s.generation}, nil
	}

	if uint64(len(a.slots)) >= MaxSlots {
		return NodeID{}, ErrIndexSpaceExhausted
	}

	if a.acquirer != nil {
		if err := a.acquirer.AcquireSlots(1); err != nil {
			return NodeID{}, fmt.Errorf("%w: %w", ErrResourceExhausted, err)
		}
	}

	idx := uint32(len(a.slots)) //nolint:gosec // bounded by MaxSlots above
	gen := a.genFloor + 1
	a.slots = append(a.slots, slot[T]{payload: v, generation: gen, occupied: true})

	a.live.Add(1)
	a.stats.TotalAllocs.Add(1)
	if n := uint64(len(a.slots)); n > a.stats.PeakSlots.Load() {
		a.stats.PeakSlots.Store(n)
	}
	return NodeID{Index: idx, Generation: gen}, nil
}

// Get returns the payload for id.
// It returns false if id is stale, zero or was never issued by this arena.
func (a *Arena[T]) Get(id NodeID) (T, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if s := a.lookupLocked(id); s != nil {
		return s.payload, true
	}
	a.stats.StaleLookups.Add(1)
	var zero T
	return zero, false
}

// Contains reports whether id refers to a live payload.
func (a *Arena[T]) Contains(id NodeID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lookupLocked(id) != nil
}

// Update runs fn on the stored payload if id is live and reports whether it ran.
// fn runs under the arena's write lock and must not call back into the arena.
func (a *Arena[T]) Update(id NodeID, fn func(*T)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.lookupLocked(id)
	if s == nil {
		return false
	}
	fn(&s.payload)
	return true
}

// Deallocate frees the payload for id and reports whether anything was freed.
// Stale and unknown handles are ignored, so repeated calls are harmless.
//
// A slot whose generation has reached math.MaxUint32 is retired instead of
// returned to the free-list: its index is never handed out again.
func (a *Arena[T]) Deallocate(id NodeID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := a.lookupLocked(id)
	if s == nil {
		return false
	}

	var zero T
	s.payload = zero
	s.occupied = false
	s.weak = 0
	if s.generation == math.MaxUint32 {
		s.retired = true
		a.retired++
	} else {
		s.generation++
		a.free = append(a.free, id.Index)
	}

	a.live.Add(-1)
	a.stats.TotalFrees.Add(1)
	return true
}

func (a *Arena[T]) lookupLocked(id NodeID) *slot[T] {
	if id.IsZero() || uint64(id.Index) >= uint64(len(a.slots)) {
		return nil
	}
	s := &a.slots[id.Index]
	if !s.occupied || s.generation != id.Generation {
		return nil
	}
	return s
}

// Len returns the number of live payloads.
func (a *Arena[T]) Len() int {
	return int(a.live.Load())
}

// IsEmpty reports whether the arena holds no live payloads.
func (a *Arena[T]) IsEmpty() bool {
	return a.Len() == 0
}

// Slots returns the number of slots in the table, free ones included.
func (a *Arena[T]) Slots() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.slots)
}

// Capacity returns the reserved slot capacity. It is never below Slots.
func (a *Arena[T]) Capacity() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cap(a.slots)
}

// Fragmentation returns the share of slots that are currently free, in [0, 1].
func (a *Arena[T]) Fragmentation() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.fragmentationLocked()
}

func (a *Arena[T]) fragmentationLocked() float64 {
	total := len(a.slots)
	if total == 0 {
		return 0
	}
	free := total - int(a.live.Load())
	return float64(free) / float64(total)
}

// AllocatedIDs returns a snapshot of all live handles in index order.
func (a *Arena[T]) AllocatedIDs() []NodeID {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]NodeID, 0, a.live.Load())
	for i := range a.slots {
		s := &a.slots[i]
		if s.occupied {
			ids = append(ids, NodeID{Index: uint32(i), Generation: s.generation}) //nolint:gosec // i < MaxSlots
		}
	}
	return ids
}

// Compact trims trailing free slots and shrinks the backing storage.
// Live slots never move, so every live handle stays valid. Trimming stops at
// a retired slot. Returns the number of slots trimmed.
func (a *Arena[T]) Compact() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	end := len(a.slots)
	for end > 0 {
		s := &a.slots[end-1]
		if s.occupied || s.retired {
			break
		}
		end--
		// A free slot holds the generation it will issue next.
		if g := s.generation - 1; g > a.genFloor {
			a.genFloor = g
		}
	}
	trimmed := len(a.slots) - end

	if trimmed > 0 {
		kept := a.free[:0]
		for _, idx := range a.free {
			if uint64(idx) < uint64(end) {
				kept = append(kept, idx)
			}
		}
		a.free = append(make([]uint32, 0, len(kept)), kept...)
	}

	if trimmed > 0 || cap(a.slots) > end {
		slots := make([]slot[T], end)
		copy(slots, a.slots[:end])
		a.slots = slots
	}

	if trimmed > 0 && a.acquirer != nil {
		a.acquirer.ReleaseSlots(int64(trimmed))
	}

	a.stats.Compactions.Add(1)
	a.stats.SlotsTrimmed.Add(uint64(trimmed)) //nolint:gosec // trimmed >= 0
	return trimmed
}

// IncrementWeak registers a weak reference on id. It reports false if id is not live.
func (a *Arena[T]) IncrementWeak(id NodeID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.lookupLocked(id)
	if s == nil {
		return false
	}
	atomic.AddInt32(&s.weak, 1)
	return true
}

// DecrementWeak drops a weak reference on id. The count never goes below zero.
// It reports false if id is not live or had no weak references.
func (a *Arena[T]) DecrementWeak(id NodeID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s := a.lookupLocked(id)
	if s == nil {
		return false
	}
	for {
		n := atomic.LoadInt32(&s.weak)
		if n <= 0 {
			return false
		}
		if atomic.CompareAndSwapInt32(&s.weak, n, n-1) {
			return true
		}
	}
}

// WeakCount returns the number of weak references registered on id, or 0 if
// id is not live.
func (a *Arena[T]) WeakCount(id NodeID) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if s := a.lookupLocked(id); s != nil {
		return int(atomic.LoadInt32(&s.weak))
	}
	return 0
}

// Stats returns the current arena statistics.
func (a *Arena[T]) Stats() Stats {
	a.mu.RLock()
	slots, capacity, retired := len(a.slots), cap(a.slots), a.retired
	a.mu.RUnlock()

	live := a.Len()
	return Stats{
		TotalAllocs:  a.stats.TotalAllocs.Load(),
		TotalFrees:   a.stats.TotalFrees.Load(),
		Reuses:       a.stats.Reuses.Load(),
		StaleLookups: a.stats.StaleLookups.Load(),
		Compactions:  a.stats.Compactions.Load(),
		SlotsTrimmed: a.stats.SlotsTrimmed.Load(),
		PeakSlots:    a.stats.PeakSlots.Load(),
		Live:         live,
		Slots:        slots,
		Capacity:     capacity,
		FreeSlots:    max(slots-live-retired, 0),
		RetiredSlots: retired,
	}
}

func (a *Arena[T]) String() string {
	stats := a.Stats()
	frag := 0.0
	if stats.Slots > 0 {
		frag = float64(stats.FreeSlots) / float64(stats.Slots) * 100
	}
	return fmt.Sprintf(
		"Arena{live: %d, slots: %d, capacity: %d, fragmentation: %.1f%%, allocs: %d, frees: %d}",
		stats.Live,
		stats.Slots,
		stats.Capacity,
		frag,
		stats.TotalAllocs,
		stats.TotalFrees,
	)
}
