package arena

import (
	"fmt"
	"runtime"
	"sync/atomic"
)

// weakRegistration is the part of a Weak handle the cleanup needs.
// It must not point back at the Weak, or the cleanup would never run.
type weakRegistration[T any] struct {
	arena      *Arena[T]
	id         NodeID
	registered bool
	released   atomic.Bool
}

func (r *weakRegistration[T]) release() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	if r.registered {
		r.arena.DecrementWeak(r.id)
	}
}

// Weak is a non-owning reference to a payload in an Arena.
//
// A Weak handle never keeps its target alive: Upgrade fails as soon as the
// slot is freed or reused, whatever the weak count says. Call Release when the
// handle goes out of scope (typically via defer). Handles dropped without
// Release are released by a runtime cleanup once they become unreachable.
type Weak[T any] struct {
	reg     *weakRegistration[T]
	cleanup runtime.Cleanup
}

// NewWeak creates a weak handle to id. It never fails; if id is already gone
// the handle is simply invalid from the start.
func NewWeak[T any](a *Arena[T], id NodeID) *Weak[T] {
	reg := &weakRegistration[T]{
		arena:      a,
		id:         id,
		registered: a.IncrementWeak(id),
	}
	w := &Weak[T]{reg: reg}
	if reg.registered {
		w.cleanup = runtime.AddCleanup(w, func(r *weakRegistration[T]) { r.release() }, reg)
	}
	return w
}

// NodeID returns the handle this reference observes.
func (w *Weak[T]) NodeID() NodeID {
	return w.reg.id
}

// Upgrade returns the payload if the target is still live.
func (w *Weak[T]) Upgrade() (T, bool) {
	return w.reg.arena.Get(w.reg.id)
}

// IsValid reports whether Upgrade would succeed.
func (w *Weak[T]) IsValid() bool {
	return w.reg.arena.Contains(w.reg.id)
}

// Equal reports whether both handles observe the same NodeID.
func (w *Weak[T]) Equal(other *Weak[T]) bool {
	if w == nil || other == nil {
		return w == other
	}
	return w.reg.id == other.reg.id
}

// Clone returns an independent handle to the same target with its own registration.
func (w *Weak[T]) Clone() *Weak[T] {
	return NewWeak(w.reg.arena, w.reg.id)
}

// Release drops the handle's registration. It is safe to call more than once.
func (w *Weak[T]) Release() {
	if w == nil {
		return
	}
	w.cleanup.Stop()
	w.reg.release()
}

// Released reports whether Release has been called.
func (w *Weak[T]) Released() bool {
	return w.reg.released.Load()
}

func (w *Weak[T]) String() string {
	if w.Released() {
		return fmt.Sprintf("Weak{id: %s, released}", w.reg.id)
	}
	return fmt.Sprintf("Weak{id: %s, valid: %t}", w.reg.id, w.IsValid())
}
