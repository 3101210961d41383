// Package memkit provides aligned, lifecycle-tracked memory buffers for
// performance-sensitive numeric and columnar workloads.
//
// Buffers start at a configurable power-of-two byte boundary (64 by
// default, AVX-512 friendly), so SIMD kernels can load them without
// unaligned-access penalties. Ownership is explicit: every buffer is
// released exactly once, and transient borrows of the raw address are
// tracked with pin/unpin reference counting so the memory outlives every
// borrow.
//
// # Quick Start
//
//	a := memkit.NewAllocator(memkit.NewNativeStrategy())
//
//	buf, _ := memkit.Allocate[float32](a, 1024)
//	defer buf.Release()
//
//	vec := buf.Span() // 1024 zeroed float32s, 64-byte aligned
//
//	pin, _ := buf.Pin(0) // borrow the raw address for a SIMD kernel
//	kernel(pin.Addr(), buf.Len())
//	pin.Unpin()
//
// # Allocation Strategies
//
// Two strategies satisfy the one-method Strategy contract:
//
//   - NativeStrategy: each buffer is a dedicated anonymous memory mapping,
//     off the Go heap. Releasing unmaps immediately.
//   - PooledStrategy: heap regions recycled through power-of-two size
//     classes, for allocation-heavy workloads.
//
// The process-wide default allocator is built lazily on first use of
// Default(); SetDefaultStrategy before that first access selects its
// backing strategy.
//
// # Resizable Storage
//
// Storage wraps a buffer (or caller-supplied view) with growth, clone and
// fill operations:
//
//	st, _ := memkit.Build[float32](10, a)
//	st.Fill(5, 2, 6)
//	st.EnsureCapacity(20, a) // new buffer, contents preserved
//	cp, _ := st.Clone(5, a)
//
// # Ownership Model
//
// Exactly one exclusive owner exists per raw region. Release is idempotent
// and deferred while pins are outstanding; the actual free runs once, when
// the last pin is unpinned. A finalizer backstops owners that never call
// Release, without ever double-freeing.
package memkit
