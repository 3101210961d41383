package memkit

import (
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Budget enforces a hard byte limit across the allocators that share it.
//
// Acquire is non-blocking and fail-fast: callers decide retry/backoff
// policy. All methods handle a nil Budget gracefully, so an allocator
// without a budget needs no nil checks.
type Budget struct {
	sem   *semaphore.Weighted // nil if unlimited
	limit int64
	used  atomic.Int64
}

// NewBudget creates a Budget with the given hard limit in bytes.
// limitBytes <= 0 means tracking only, no enforcement.
func NewBudget(limitBytes int64) *Budget {
	b := &Budget{limit: limitBytes}
	if limitBytes > 0 {
		b.sem = semaphore.NewWeighted(limitBytes)
	}
	return b
}

// Acquire reserves bytes against the budget.
// Returns ErrBudgetExceeded if the limit would be exceeded.
func (b *Budget) Acquire(bytes int64) error {
	if b == nil || bytes <= 0 {
		return nil
	}

	if b.sem != nil && !b.sem.TryAcquire(bytes) {
		return ErrBudgetExceeded
	}

	b.used.Add(bytes)
	return nil
}

// Release returns reserved bytes to the budget.
func (b *Budget) Release(bytes int64) {
	if b == nil || bytes <= 0 {
		return
	}

	if b.sem != nil {
		b.sem.Release(bytes)
	}
	b.used.Add(-bytes)
}

// Used returns the bytes currently reserved.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Limit returns the configured hard limit, or 0 if tracking only.
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}
