package nodestore

import (
	"github.com/hupe1980/nodestore/internal/arena"
	"github.com/hupe1980/nodestore/internal/resource"
)

var (
	// ErrResourceExhausted is returned by Allocate when no new slot can be
	// added. Match with errors.Is.
	ErrResourceExhausted = arena.ErrResourceExhausted

	// ErrIndexSpaceExhausted is returned when the 32-bit index space is used up.
	// It wraps ErrResourceExhausted.
	ErrIndexSpaceExhausted = arena.ErrIndexSpaceExhausted

	// ErrSlotLimitExceeded is returned (wrapped in ErrResourceExhausted) when
	// WithMaxSlots is set and the budget is used up.
	ErrSlotLimitExceeded = resource.ErrSlotLimitExceeded

	// ErrCollectionThrottled is returned by TryCollect when a collection is
	// already running or the collection rate limit is exhausted.
	ErrCollectionThrottled = resource.ErrCollectionThrottled
)
