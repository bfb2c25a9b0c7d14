// Package resource implements the Controller for arena limits and collection governance.
//
// The Controller manages two resource types:
//
//   - Slots: Track and optionally cap arena slot growth (non-blocking, fail-fast)
//   - Collections: Limit concurrent collections and how often they may start
//
// # Architecture
//
//	┌───────────────────────────────────────────────┐
//	│                  Controller                   │
//	├──────────────────────┬────────────────────────┤
//	│  Slot Limit          │  Collections           │
//	│  (fail-fast)         │  (sem + token bucket)  │
//	├──────────────────────┼────────────────────────┤
//	│  AcquireSlots        │  AcquireCollection     │
//	│  ReleaseSlots        │  TryAcquireCollection  │
//	│  SlotUsage           │  ReleaseCollection     │
//	└──────────────────────┴────────────────────────┘
//
// # Slot Budget
//
// Slot tracking uses a weighted semaphore for hard limits and an atomic counter
// for usage. AcquireSlots never blocks; it returns ErrSlotLimitExceeded at once
// so the arena can surface a recoverable ResourceExhausted error:
//
//	rc := resource.NewController(resource.Config{
//	    MaxSlots: 1 << 20,
//	})
//	a := arena.New[dom.Node](0, arena.WithSlotAcquirer(rc))
//
// # Collection Limits
//
// A collector cycle needs one collection slot and one rate token. Blocking
// callers (Store.Collect) wait for both; opportunistic callers (Store.TryCollect)
// give up at once when the collector is busy or the bucket is empty:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentCollections: 1,
//	    CollectionsPerSecond:     10,
//	})
//
//	if !rc.TryAcquireCollection() {
//	    return resource.ErrCollectionThrottled
//	}
//	defer rc.ReleaseCollection()
//
// # Nil Safety
//
// A nil *Controller imposes no limits. Every method is a no-op on it and
// TryAcquireCollection always succeeds.
package resource
