package memkit

import (
	"github.com/hupe1980/memkit/internal/mmap"
)

// NativeStrategy reserves each region as a dedicated anonymous memory
// mapping, outside the Go garbage collector's control. Freeing unmaps the
// region, so the Block's exactly-once release guarantee is load-bearing
// here: a second munmap of the same region would fault.
//
// Fresh mappings are zero-filled by the operating system, so the allocator
// never needs a clearing pass for this strategy.
type NativeStrategy struct{}

// NewNativeStrategy creates a NativeStrategy.
func NewNativeStrategy() *NativeStrategy {
	return &NativeStrategy{}
}

// Reserve maps an anonymous region of exactly byteLen bytes.
func (*NativeStrategy) Reserve(byteLen int) ([]byte, func([]byte) error, bool, error) {
	m, err := mmap.MapAnon(byteLen)
	if err != nil {
		return nil, nil, false, err
	}
	return m.Bytes(), func([]byte) error { return m.Close() }, true, nil
}
