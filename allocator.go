package memkit

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/hupe1980/memkit/internal/conv"
)

// DefaultAlignment is the default byte alignment (AVX-512 friendly).
const DefaultAlignment = 64

// Strategy obtains raw memory regions from the operating environment.
//
// Reserve returns a region of at least byteLen bytes. len(region) is the
// exact byte count reserved and may exceed byteLen (e.g. size-class
// rounding). free returns the region to the strategy; a nil free means the
// region is reclaimed by the garbage collector. zeroed reports whether the
// region is already zero-filled, letting the allocator skip redundant
// clearing of fresh mappings.
type Strategy interface {
	Reserve(byteLen int) (region []byte, free func([]byte) error, zeroed bool, err error)
}

// Stats is a point-in-time snapshot of an allocator's counters.
//
// Allocs and Bytes are updated with independent atomics; a reader may
// observe one updated before the other. Both are monotonically
// non-decreasing for the allocator's lifetime and reflect only successful
// allocations.
type Stats struct {
	Allocs int64 // cumulative successful allocations
	Bytes  int64 // cumulative bytes reserved, alignment slack included
}

// Allocator produces aligned, lifecycle-tracked buffers from a pluggable
// Strategy. Validation, zero-initialization and statistics accounting live
// here once; strategies only hand out raw regions.
//
// Safe for concurrent use.
type Allocator struct {
	strategy Strategy
	budget   *Budget
	logger   *Logger

	allocs atomic.Int64
	bytes  atomic.Int64
}

// NewAllocator creates an Allocator backed by the given strategy.
func NewAllocator(strategy Strategy, opts ...Option) *Allocator {
	a := &Allocator{
		strategy: strategy,
		logger:   NoopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats returns the allocator's counters.
func (a *Allocator) Stats() Stats {
	return Stats{
		Allocs: a.allocs.Load(),
		Bytes:  a.bytes.Load(),
	}
}

// Allocate obtains an aligned buffer for length elements of type T from a.
// A nil allocator uses the process default.
//
// length == 0 returns a well-defined empty buffer without touching the
// strategy or the statistics. length < 0 fails. Unless WithoutZeroing is
// given, every byte of the buffer reads as zero before first use.
func Allocate[T Scalar](a *Allocator, length int, opts ...AllocOption) (*Buffer[T], error) {
	if a == nil {
		a = Default()
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLength, length)
	}

	cfg := allocConfig{alignment: DefaultAlignment}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.alignment <= 0 || cfg.alignment&(cfg.alignment-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAlignment, cfg.alignment)
	}

	if length == 0 {
		return &Buffer[T]{block: emptyBlock()}, nil
	}

	elemSize := int(unsafe.Sizeof(*new(T)))

	// Required raw bytes = length*sizeof(T) + alignment. On a 32-bit address
	// space the total must fit the signed 32-bit range.
	byteLen64, err := conv.MulInt64(int64(length), int64(elemSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrAddressSpace, length, elemSize)
	}
	rawLen64, err := conv.AddInt64(byteLen64, int64(cfg.alignment))
	if err != nil {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrAddressSpace, length, elemSize)
	}
	rawLen, err := conv.Int64ToInt(rawLen64)
	if err != nil {
		return nil, fmt.Errorf("%w: %d elements of %d bytes", ErrAddressSpace, length, elemSize)
	}

	block, err := a.reserve(rawLen, int(byteLen64), cfg.alignment, cfg.skipZero)
	if err != nil {
		return nil, err
	}

	return &Buffer[T]{block: block, length: length}, nil
}

// reserve pulls a raw region from the strategy, applies budget and zeroing
// policy, and wraps it in a Block. Statistics are updated only on success.
func (a *Allocator) reserve(rawLen, byteLen, alignment int, skipZero bool) (*Block, error) {
	region, free, zeroed, err := a.strategy.Reserve(rawLen)
	if err != nil {
		return nil, err
	}
	reserved := int64(len(region))

	if err := a.budget.Acquire(reserved); err != nil {
		if free != nil {
			_ = free(region)
		}
		a.logger.Debug("allocation denied by budget",
			"bytes", reserved,
			"used", a.budget.Used(),
			"limit", a.budget.Limit(),
		)
		return nil, err
	}
	if a.budget != nil {
		inner := free
		free = func(raw []byte) error {
			a.budget.Release(int64(len(raw)))
			if inner != nil {
				return inner(raw)
			}
			return nil
		}
	}

	// The whole raw region is cleared, not just the aligned sub-range.
	if !skipZero && !zeroed {
		clear(region)
	}

	block := newBlock(region, byteLen, alignment, free)

	a.allocs.Add(1)
	a.bytes.Add(reserved)

	return block, nil
}

var (
	defaultMu        sync.Mutex
	defaultAllocator *Allocator
	defaultStrategy  Strategy
)

// Default returns the process-wide allocator, lazily built on first use and
// shared for the process lifetime.
func Default() *Allocator {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultAllocator == nil {
		strategy := defaultStrategy
		if strategy == nil {
			strategy = NewNativeStrategy()
		}
		defaultAllocator = NewAllocator(strategy)
	}
	return defaultAllocator
}

// SetDefaultStrategy selects the strategy backing the default allocator and
// reports whether the selection took effect. First access wins: once Default
// has been called the default is fixed and later selections return false.
func SetDefaultStrategy(strategy Strategy) bool {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultAllocator != nil {
		return false
	}
	defaultStrategy = strategy
	return true
}
