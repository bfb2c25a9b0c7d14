package resource

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneShot allows a single collection and then refills far slower than any
// test runs.
func oneShot(concurrent int64) *Controller {
	return NewController(Config{
		MaxConcurrentCollections: concurrent,
		CollectionsPerSecond:     0.001,
		CollectionBurst:          1,
	})
}

func TestCollection_SerializedByDefault(t *testing.T) {
	c := NewController(Config{})

	require.True(t, c.TryAcquireCollection())
	assert.False(t, c.TryAcquireCollection())

	c.ReleaseCollection()
	assert.True(t, c.TryAcquireCollection())
	c.ReleaseCollection()
}

func TestCollection_ConcurrencyLimit(t *testing.T) {
	c := NewController(Config{MaxConcurrentCollections: 2})

	require.NoError(t, c.AcquireCollection(t.Context()))
	require.NoError(t, c.AcquireCollection(t.Context()))
	assert.False(t, c.TryAcquireCollection())

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireCollection(ctx), context.DeadlineExceeded)

	c.ReleaseCollection()
	assert.True(t, c.TryAcquireCollection())
}

func TestCollection_TryDoesNotWaitForToken(t *testing.T) {
	c := oneShot(4)

	require.True(t, c.TryAcquireCollection())
	c.ReleaseCollection()

	start := time.Now()
	assert.False(t, c.TryAcquireCollection())
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	// The failed attempt left the collection slot free.
	for range 4 {
		require.NoError(t, c.collectSem.Acquire(t.Context(), 1))
	}
}

func TestCollection_BusyCollectorKeepsToken(t *testing.T) {
	c := oneShot(1)

	// Hold the only slot without touching the limiter.
	require.True(t, c.collectSem.TryAcquire(1))

	for range 3 {
		assert.False(t, c.TryAcquireCollection())
	}
	c.collectSem.Release(1)

	assert.True(t, c.TryAcquireCollection(), "rejections while busy must not spend the token")
	c.ReleaseCollection()
	assert.False(t, c.TryAcquireCollection())
}

func TestCollection_AcquireHonorsContext(t *testing.T) {
	c := oneShot(1)

	require.NoError(t, c.AcquireCollection(t.Context()))
	c.ReleaseCollection()

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	require.Error(t, c.AcquireCollection(ctx))

	// Nothing is held after a failed wait.
	assert.True(t, c.collectSem.TryAcquire(1))
}

func TestCollection_AcquireCanceledWhileBusy(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireCollection(t.Context()))

	ctx, cancel := context.WithCancel(t.Context())
	var (
		wg  sync.WaitGroup
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		err = c.AcquireCollection(ctx)
	}()

	cancel()
	wg.Wait()
	assert.ErrorIs(t, err, context.Canceled)

	c.ReleaseCollection()
	assert.True(t, c.TryAcquireCollection())
}
