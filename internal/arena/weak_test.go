package arena

import (
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeak_Upgrade(t *testing.T) {
	a := New[string](0)
	id := mustAllocate(t, a, "test")

	w := NewWeak(a, id)
	defer w.Release()

	got, ok := w.Upgrade()
	require.True(t, ok)
	assert.Equal(t, "test", got)
	assert.True(t, w.IsValid())
	assert.Equal(t, id, w.NodeID())

	a.Deallocate(id)
	_, ok = w.Upgrade()
	assert.False(t, ok)
	assert.False(t, w.IsValid())
}

func TestWeak_DoesNotSurviveReuse(t *testing.T) {
	a := New[string](0)
	id := mustAllocate(t, a, "old")

	w := NewWeak(a, id)
	defer w.Release()

	a.Deallocate(id)
	reused := mustAllocate(t, a, "new")
	require.Equal(t, id.Index, reused.Index)

	_, ok := w.Upgrade()
	assert.False(t, ok, "a weak handle must not observe the slot's next occupant")
}

func TestWeak_DoesNotKeepAlive(t *testing.T) {
	a := New[string](0)
	id := mustAllocate(t, a, "test")

	w := NewWeak(a, id)
	defer w.Release()
	require.Equal(t, 1, a.WeakCount(id))

	assert.True(t, a.Deallocate(id), "weak count must not block deallocation")
	assert.False(t, w.IsValid())
}

func TestWeak_ToMissingTarget(t *testing.T) {
	a := New[string](0)

	w := NewWeak(a, NodeID{Index: 42, Generation: 7})
	assert.False(t, w.IsValid())
	assert.NotPanics(t, w.Release)
}

func TestWeak_CloneAndRelease(t *testing.T) {
	a := New[string](0)
	id := mustAllocate(t, a, "test")

	w1 := NewWeak(a, id)
	w2 := w1.Clone()
	w3 := w2.Clone()
	assert.Equal(t, 3, a.WeakCount(id))

	assert.True(t, w1.Equal(w2))
	assert.True(t, w2.Equal(w3))

	w2.Release()
	w2.Release()
	assert.True(t, w2.Released())
	assert.Equal(t, 2, a.WeakCount(id), "release is idempotent")

	w1.Release()
	w3.Release()
	assert.Equal(t, 0, a.WeakCount(id))
	assert.True(t, a.Contains(id))
}

func TestWeak_ReleaseAfterTargetFreed(t *testing.T) {
	a := New[string](0)
	id := mustAllocate(t, a, "test")

	w := NewWeak(a, id)
	a.Deallocate(id)
	reused := mustAllocate(t, a, "other")
	other := NewWeak(a, reused)
	defer other.Release()

	w.Release()
	assert.Equal(t, 1, a.WeakCount(reused), "stale release must not touch the new occupant")
}

func TestWeak_Equality(t *testing.T) {
	a := New[int](0)
	id1 := mustAllocate(t, a, 1)
	id2 := mustAllocate(t, a, 2)

	w1 := NewWeak(a, id1)
	w2 := NewWeak(a, id1)
	w3 := NewWeak(a, id2)
	defer w1.Release()
	defer w2.Release()
	defer w3.Release()

	assert.True(t, w1.Equal(w2))
	assert.False(t, w1.Equal(w3))
	assert.False(t, w1.Equal(nil))
}

func TestWeak_String(t *testing.T) {
	a := New[int](0)
	id := mustAllocate(t, a, 1)
	w := NewWeak(a, id)

	s := w.String()
	assert.Contains(t, s, "Weak")
	assert.Contains(t, s, "valid: true")

	w.Release()
	assert.Equal(t, "Weak{id: NodeID(0@1), released}", w.String())
}

func TestWeak_CleanupReleasesDroppedHandle(t *testing.T) {
	a := New[int](0)
	id := mustAllocate(t, a, 1)

	func() {
		_ = NewWeak(a, id)
	}()
	require.Equal(t, 1, a.WeakCount(id))

	assert.Eventually(t, func() bool {
		runtime.GC()
		return a.WeakCount(id) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWeak_Concurrent(t *testing.T) {
	a := New[int](0)
	id := mustAllocate(t, a, 1)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				w := NewWeak(a, id)
				c := w.Clone()
				w.Release()
				c.Release()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, a.WeakCount(id))
}
