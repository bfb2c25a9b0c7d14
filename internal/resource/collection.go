package resource

import (
	"context"
	"time"
)

// Collections are gated twice: collectSem bounds how many cycles run at once
// and collectLimiter bounds how often a cycle may start. A rate token is only
// spent by a caller that already holds a collection slot.

// AcquireCollection blocks until a collection slot is free and the rate
// limiter grants a token, or ctx is done. On error nothing is held.
func (c *Controller) AcquireCollection(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.collectSem.Acquire(ctx, 1); err != nil {
		return err
	}
	if c.collectLimiter != nil {
		if err := c.collectLimiter.Wait(ctx); err != nil {
			c.collectSem.Release(1)
			return err
		}
	}
	return nil
}

// TryAcquireCollection is the non-blocking form of AcquireCollection.
// It reports whether the caller now holds a collection slot.
func (c *Controller) TryAcquireCollection() bool {
	if c == nil {
		return true
	}
	if !c.collectSem.TryAcquire(1) {
		return false
	}
	if c.collectLimiter != nil && !c.collectLimiter.AllowN(time.Now(), 1) {
		c.collectSem.Release(1)
		return false
	}
	return true
}

// ReleaseCollection ends a collection started by AcquireCollection or a
// successful TryAcquireCollection.
func (c *Controller) ReleaseCollection() {
	if c == nil {
		return
	}
	c.collectSem.Release(1)
}
