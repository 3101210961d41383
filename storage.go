package memkit

import (
	"fmt"
	"math"
)

// Storage is a growable typed buffer built atop an Allocator.
//
// A Storage either owns one Buffer or holds a caller-supplied non-owning
// view, never both. Growth always allocates a new buffer and copies; there
// is no in-place resize. A storage that held a view becomes an owner after
// growth.
//
// Not safe for concurrent mutation; callers coordinate access.
type Storage[T Scalar] struct {
	buf  *Buffer[T] // non-nil when owned
	view []T        // the non-owning alternative
}

// Build allocates a Storage of the given capacity via the allocator
// (the process default when a is nil).
func Build[T Scalar](capacity int, a *Allocator, opts ...AllocOption) (*Storage[T], error) {
	buf, err := Allocate[T](a, capacity, opts...)
	if err != nil {
		return nil, err
	}
	return &Storage[T]{buf: buf}, nil
}

// View wraps caller-supplied memory without taking ownership. Releasing a
// view-backed storage is a no-op.
func View[T Scalar](data []T) *Storage[T] {
	return &Storage[T]{view: data}
}

// Span returns the storage contents as a typed slice of Cap() elements.
func (s *Storage[T]) Span() []T {
	if s.buf != nil {
		return s.buf.Span()
	}
	return s.view
}

// Cap returns the current element capacity. A storage whose buffer has been
// released reports zero, keeping Cap consistent with Span.
func (s *Storage[T]) Cap() int {
	if s.buf != nil {
		return len(s.buf.Span())
	}
	return len(s.view)
}

// Owned reports whether the storage owns its buffer.
func (s *Storage[T]) Owned() bool {
	return s.buf != nil
}

// EnsureCapacity grows the storage to at least capacity elements, preserving
// existing values at their indices. Capacity is rounded up by doubling to
// amortize repeated growth. A no-op when capacity <= Cap().
func (s *Storage[T]) EnsureCapacity(capacity int, a *Allocator) error {
	if capacity < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeLength, capacity)
	}
	if capacity <= s.Cap() {
		return nil
	}

	buf, err := Allocate[T](a, growCapacity(s.Cap(), capacity))
	if err != nil {
		return err
	}

	copy(buf.Span(), s.Span())

	if s.buf != nil {
		s.buf.Release()
	}
	s.buf = buf
	s.view = nil

	return nil
}

// Clone deep-copies the first min(maxElements, Cap()) elements into a newly
// built storage. The source is left unmodified and shares no memory with
// the clone.
func (s *Storage[T]) Clone(maxElements int, a *Allocator) (*Storage[T], error) {
	if maxElements < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLength, maxElements)
	}

	n := min(maxElements, s.Cap())

	clone, err := Build[T](n, a)
	if err != nil {
		return nil, err
	}

	copy(clone.Span(), s.Span()[:n])

	return clone, nil
}

// Fill assigns value to every element in [start, min(end, Cap())). start
// must be non-negative and end > start; a range that clamps to nothing is a
// valid no-op.
func (s *Storage[T]) Fill(value T, start, end int) error {
	if start < 0 || end <= start {
		return fmt.Errorf("%w: [%d, %d)", ErrFillRange, start, end)
	}

	span := s.Span()
	if start >= len(span) {
		return nil
	}
	end = min(end, len(span))

	for i := start; i < end; i++ {
		span[i] = value
	}
	return nil
}

// Release returns the owned buffer's memory, if any. A view-backed storage
// has no ownership to release.
func (s *Storage[T]) Release() {
	if s.buf != nil {
		s.buf.Release()
	}
}

// growCapacity doubles cur until it covers want, falling back to want
// exactly when doubling would overflow.
func growCapacity(cur, want int) int {
	if cur <= 0 {
		return want
	}
	next := cur
	for next < want {
		if next > math.MaxInt/2 {
			return want
		}
		next *= 2
	}
	return next
}
