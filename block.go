package memkit

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
)

// Block owns one raw memory region and exposes an aligned sub-range of it.
//
// A Block tracks outstanding pins with a retain count. Release is idempotent
// and, while pins are outstanding, deferred: the raw region is returned to
// the operating environment exactly once, when the last pin is unpinned
// after a release request. All lifecycle state (retain count, released flag,
// raw region) is guarded by a single mutex; blocks never contend with each
// other.
type Block struct {
	mu       sync.Mutex
	raw      []byte // full reserved region; nil once freed
	data     []byte // aligned sub-range of raw
	free     func([]byte) error
	reserved int64 // exact bytes the strategy reserved
	retain   int
	released bool
	done     bool // the actual free has run
}

// newBlock wraps a raw region, carving out a byteLen-sized sub-range aligned
// to the given boundary. len(raw) must be at least byteLen+alignment.
func newBlock(raw []byte, byteLen, alignment int, free func([]byte) error) *Block {
	addr := uintptr(unsafe.Pointer(&raw[0]))
	// The aligned range begins strictly inside the raw region: the offset is
	// taken from (0, alignment], so the slack always sits in front even when
	// the raw start is itself aligned.
	offset := alignment - int(addr&uintptr(alignment-1))

	b := &Block{
		raw:      raw,
		data:     raw[offset : offset+byteLen : offset+byteLen],
		free:     free,
		reserved: int64(len(raw)),
	}

	// Last-resort release if the owner never calls Release explicitly.
	// freeLocked's once-guard keeps the two paths from double-freeing.
	runtime.SetFinalizer(b, (*Block).Release)

	return b
}

// emptyBlock backs zero-length buffers. It owns no memory but carries the
// same lifecycle state machine.
func emptyBlock() *Block {
	return &Block{}
}

// pin increments the retain count and returns a handle bound to the address
// byteOffset bytes past the aligned start.
func (b *Block) pin(byteOffset int) (*Pin, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.done {
		return nil, ErrReleased
	}

	b.retain++

	var base uintptr
	if len(b.data) > 0 {
		base = uintptr(unsafe.Pointer(&b.data[0]))
	}

	return &Pin{
		addr:  base + uintptr(byteOffset),
		block: b,
	}, nil
}

func (b *Block) unpin() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.retain--
	if b.retain == 0 && b.released {
		b.freeLocked()
	}
}

// Release requests that the raw region be returned to the operating
// environment. It is idempotent. If pins are outstanding the release is
// deferred until the last Unpin.
func (b *Block) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.released = true
	if b.retain == 0 {
		b.freeLocked()
	}
}

// freeLocked performs the actual free at most once. The raw slice is nilled
// so any later release attempt observes nothing to free.
func (b *Block) freeLocked() {
	if b.done {
		return
	}
	b.done = true

	if b.raw != nil && b.free != nil {
		// Release is infallible by contract once the region is valid.
		_ = b.free(b.raw)
	}
	b.raw = nil
	b.data = nil
}

// Retained reports whether any pin is outstanding.
func (b *Block) Retained() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.retain > 0
}

// Disposed reports whether the block has been released and no pin remains.
func (b *Block) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.released && b.retain == 0
}

// AllocatedBytes returns the exact byte count the strategy reserved,
// including alignment slack.
func (b *Block) AllocatedBytes() int64 {
	return b.reserved
}

// bytes returns the aligned range, or nil once the block has been freed.
func (b *Block) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Pin is a transient borrow of a block's raw address. It extends the backing
// region's lifetime until Unpin; it never transfers ownership.
type Pin struct {
	addr  uintptr
	block *Block
	done  atomic.Bool
}

// Addr returns the pinned address. The address stays valid until Unpin.
func (p *Pin) Addr() uintptr {
	return p.addr
}

// Unpin releases the borrow. It decrements the retain count exactly once;
// further calls are no-ops.
func (p *Pin) Unpin() {
	if p.block == nil || p.done.Swap(true) {
		return
	}
	p.block.unpin()
}
