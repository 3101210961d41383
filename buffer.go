package memkit

import (
	"unsafe"
)

// Scalar constrains buffer element types to fixed-size numeric scalars.
type Scalar interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Buffer is an exclusively owned, aligned block of Len() elements of type T.
//
// The typed view returned by Span aliases the block's aligned range; it must
// not be used after Release. Pin/Unpin extend the block's lifetime across
// unsafe low-level access (e.g. handing the address to SIMD kernels).
type Buffer[T Scalar] struct {
	block  *Block
	length int
}

// Len returns the logical element count.
func (b *Buffer[T]) Len() int {
	return b.length
}

// AllocatedBytes returns the bytes physically reserved for this buffer,
// alignment slack included. Always >= Len()*sizeof(T).
func (b *Buffer[T]) AllocatedBytes() int64 {
	return b.block.AllocatedBytes()
}

// Span returns the aligned contents as a typed slice of Len() elements.
// Returns nil for empty or released buffers.
func (b *Buffer[T]) Span() []T {
	data := b.block.bytes()
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), b.length)
}

// Pin borrows the address of the element at index, incrementing the retain
// count. index may equal Len(): the one-past-end address supports empty-view
// handling by callers; accessing memory through it is the caller's
// responsibility.
func (b *Buffer[T]) Pin(index int) (*Pin, error) {
	if index < 0 || index > b.length {
		return nil, &ErrIndexOutOfRange{Index: index, Length: b.length}
	}
	elemSize := int(unsafe.Sizeof(*new(T)))
	return b.block.pin(index * elemSize)
}

// Release returns the buffer's memory to its strategy. Idempotent; deferred
// while any pin is outstanding.
func (b *Buffer[T]) Release() {
	b.block.Release()
}

// Retained reports whether any pin is outstanding.
func (b *Buffer[T]) Retained() bool {
	return b.block.Retained()
}

// Disposed reports whether the buffer has been released and no pin remains.
func (b *Buffer[T]) Disposed() bool {
	return b.block.Disposed()
}
