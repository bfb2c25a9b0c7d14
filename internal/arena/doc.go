// Package arena provides a generational slot arena for document node payloads.
//
// The arena hands out NodeID handles (index + generation) instead of pointers.
// When a slot is freed its generation is bumped, so handles held by other
// goroutines go stale instead of aliasing the next occupant.
//
// # Features
//
//   - Amortized O(1) allocation with LIFO slot reuse
//   - Generation-checked lookups (stale handles resolve to "absent")
//   - Weak handles that observe liveness without keeping payloads alive
//   - Compaction of trailing free slots
//   - Optional bounded mode via a SlotAcquirer
//
// # Concurrency Model
//
// All operations are safe for concurrent use. The slot table and free-list are
// guarded by a single RWMutex: Get, Contains, AllocatedIDs and the weak-count
// helpers take the read lock, Allocate, Deallocate, Update and Compact take the
// write lock. Counters are atomics so Len and Stats never block.
//
// # Generations
//
// Generation 0 is never issued, so the zero NodeID is always invalid. A freed
// slot's generation is bumped immediately; compaction records the highest
// generation it trimmed so a re-appended index never repeats a generation.
// Generations never wrap. A slot freed at math.MaxUint32 is retired and stays
// in the table as a tombstone; Compact does not trim past it.
//
// # Safety
//
// No method panics on foreign, stale or zero handles. Get returns false,
// Deallocate is a no-op.
package arena
