package resource

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var (
	// ErrSlotLimitExceeded is returned when the slot budget would be exceeded.
	ErrSlotLimitExceeded = errors.New("slot limit exceeded")
	// ErrCollectionThrottled is returned by TryAcquireCollection callers that
	// want to surface a rejected collection as an error.
	ErrCollectionThrottled = errors.New("collection throttled")
)

// Config holds resource limits.
type Config struct {
	// MaxSlots is the hard limit on arena slots.
	// If 0, no hard limit is enforced (only tracking).
	MaxSlots int64

	// MaxConcurrentCollections is the maximum number of collections running at once.
	// If 0, defaults to 1.
	MaxConcurrentCollections int64

	// CollectionsPerSecond limits how often collections may start.
	// If 0, unlimited.
	CollectionsPerSecond float64

	// CollectionBurst is the token bucket size for CollectionsPerSecond.
	// If 0, defaults to 1.
	CollectionBurst int
}

// Controller manages arena-wide resources (slots, collections).
type Controller struct {
	cfg Config

	// Slots
	slotSem   *semaphore.Weighted // nil if unlimited
	slotsUsed atomic.Int64

	// Collections
	collectSem     *semaphore.Weighted
	collectLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentCollections <= 0 {
		cfg.MaxConcurrentCollections = 1
	}
	if cfg.CollectionBurst <= 0 {
		cfg.CollectionBurst = 1
	}

	c := &Controller{
		cfg:        cfg,
		collectSem: semaphore.NewWeighted(cfg.MaxConcurrentCollections),
	}

	if cfg.MaxSlots > 0 {
		c.slotSem = semaphore.NewWeighted(cfg.MaxSlots)
	}

	if cfg.CollectionsPerSecond > 0 {
		c.collectLimiter = rate.NewLimiter(rate.Limit(cfg.CollectionsPerSecond), cfg.CollectionBurst)
	}

	return c
}

// AcquireSlots attempts to reserve n slots.
// Returns ErrSlotLimitExceeded if the limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireSlots(n int64) error {
	if c == nil {
		return nil
	}
	if n <= 0 {
		return nil
	}

	if c.slotSem != nil {
		if !c.slotSem.TryAcquire(n) {
			return ErrSlotLimitExceeded
		}
	}

	c.slotsUsed.Add(n)
	return nil
}

// ReleaseSlots releases n reserved slots.
func (c *Controller) ReleaseSlots(n int64) {
	if c == nil {
		return
	}
	if n <= 0 {
		return
	}

	if c.slotSem != nil {
		c.slotSem.Release(n)
	}
	c.slotsUsed.Add(-n)
}

// SlotUsage returns the number of reserved slots.
func (c *Controller) SlotUsage() int64 {
	if c == nil {
		return 0
	}
	return c.slotsUsed.Load()
}

// SlotLimit returns the configured slot limit (0 if unlimited).
func (c *Controller) SlotLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MaxSlots
}
