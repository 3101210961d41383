package memkit

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateAlignment(t *testing.T) {
	alignments := []int{32, 64, 128}
	lengths := []int{1, 7, 64, 100, 1024}

	for _, alignment := range alignments {
		for _, length := range lengths {
			t.Run(fmt.Sprintf("align=%d/len=%d", alignment, length), func(t *testing.T) {
				a := NewAllocator(NewNativeStrategy())

				buf, err := Allocate[float32](a, length, WithAlignment(alignment))
				require.NoError(t, err)
				defer buf.Release()

				span := buf.Span()
				require.Len(t, span, length)

				addr := uintptr(unsafe.Pointer(&span[0]))
				assert.Zerof(t, addr%uintptr(alignment), "address %#x should be aligned to %d", addr, alignment)
			})
		}
	}
}

func TestAllocateZeroInit(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[int64](a, 513)
	require.NoError(t, err)
	defer buf.Release()

	for i, v := range buf.Span() {
		require.Zerof(t, v, "element %d should be zero", i)
	}
}

func TestAllocatedBytes(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	lengths := []int{1, 10, 63, 64, 1000}
	for _, length := range lengths {
		t.Run(fmt.Sprintf("len=%d", length), func(t *testing.T) {
			buf, err := Allocate[float64](a, length)
			require.NoError(t, err)
			defer buf.Release()

			byteLen := int64(length) * 8
			assert.GreaterOrEqual(t, buf.AllocatedBytes(), byteLen)
			assert.LessOrEqual(t, buf.AllocatedBytes(), byteLen+DefaultAlignment)
		})
	}
}

func TestPinUnpinBalance(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[float32](a, 16)
	require.NoError(t, err)

	pins := make([]*Pin, 0, 8)
	for i := 0; i < 8; i++ {
		p, err := buf.Pin(i)
		require.NoError(t, err)
		pins = append(pins, p)
	}
	assert.True(t, buf.Retained())

	for _, p := range pins {
		p.Unpin()
	}
	assert.False(t, buf.Retained())

	buf.Release()
	assert.True(t, buf.Disposed())
}

func TestPinAddresses(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[float32](a, 10)
	require.NoError(t, err)
	defer buf.Release()

	base, err := buf.Pin(0)
	require.NoError(t, err)
	defer base.Unpin()

	assert.Zero(t, base.Addr()%DefaultAlignment)

	t.Run("offset by element size", func(t *testing.T) {
		p, err := buf.Pin(3)
		require.NoError(t, err)
		defer p.Unpin()

		assert.Equal(t, base.Addr()+3*4, p.Addr())
	})

	t.Run("one past end", func(t *testing.T) {
		p, err := buf.Pin(10)
		require.NoError(t, err)
		defer p.Unpin()

		assert.Equal(t, base.Addr()+10*4, p.Addr())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := buf.Pin(-1)
		var oor *ErrIndexOutOfRange
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, -1, oor.Index)

		_, err = buf.Pin(11)
		require.ErrorAs(t, err, &oor)
		assert.Equal(t, 11, oor.Index)
		assert.Equal(t, 10, oor.Length)
	})
}

func TestDeferredRelease(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[int32](a, 100)
	require.NoError(t, err)

	p1, err := buf.Pin(0)
	require.NoError(t, err)
	p2, err := buf.Pin(50)
	require.NoError(t, err)

	buf.Release()
	assert.False(t, buf.Disposed(), "release must be deferred while pinned")
	assert.True(t, buf.Retained())

	p1.Unpin()
	assert.False(t, buf.Disposed())

	p2.Unpin()
	assert.True(t, buf.Disposed(), "last unpin performs the deferred release")
	assert.False(t, buf.Retained())
}

func TestReleaseIdempotent(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[byte](a, 4096)
	require.NoError(t, err)

	buf.Release()
	buf.Release()
	buf.Release()
	assert.True(t, buf.Disposed())

	// The finalizer fallback path runs Release again; it must observe
	// nothing to free.
	buf.block.Release()
	assert.True(t, buf.Disposed())
}

func TestReleaseFreesExactlyOnce(t *testing.T) {
	var frees int
	strategy := &countingStrategy{onFree: func() { frees++ }}
	a := NewAllocator(strategy)

	buf, err := Allocate[uint64](a, 32)
	require.NoError(t, err)

	p, err := buf.Pin(0)
	require.NoError(t, err)

	buf.Release()
	buf.Release()
	assert.Zero(t, frees, "free must wait for the outstanding pin")

	p.Unpin()
	assert.Equal(t, 1, frees)

	buf.Release()
	p.Unpin()
	assert.Equal(t, 1, frees)
}

func TestUnpinTwiceDecrementsOnce(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[float32](a, 8)
	require.NoError(t, err)
	defer buf.Release()

	p1, err := buf.Pin(0)
	require.NoError(t, err)
	p2, err := buf.Pin(0)
	require.NoError(t, err)

	p1.Unpin()
	p1.Unpin()
	p1.Unpin()
	assert.True(t, buf.Retained(), "repeated unpin of one handle releases one retain")

	p2.Unpin()
	assert.False(t, buf.Retained())
}

func TestPinAfterDispose(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[float32](a, 8)
	require.NoError(t, err)

	buf.Release()

	_, err = buf.Pin(0)
	assert.ErrorIs(t, err, ErrReleased)
}

func TestEmptyBuffer(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[float32](a, 0)
	require.NoError(t, err)

	assert.Zero(t, buf.Len())
	assert.Nil(t, buf.Span())
	assert.Zero(t, buf.AllocatedBytes())

	p, err := buf.Pin(0)
	require.NoError(t, err)
	assert.True(t, buf.Retained())
	p.Unpin()

	buf.Release()
	assert.True(t, buf.Disposed())
}

func TestConcurrentPinUnpin(t *testing.T) {
	a := NewAllocator(NewNativeStrategy())

	buf, err := Allocate[float64](a, 1024)
	require.NoError(t, err)

	const goroutines = 16
	const iterations = 500

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				p, err := buf.Pin((g + i) % 1024)
				if err != nil {
					t.Error(err)
					return
				}
				p.Unpin()
			}
		}(g)
	}
	wg.Wait()

	assert.False(t, buf.Retained())
	buf.Release()
	assert.True(t, buf.Disposed())
}

// countingStrategy hands out heap regions and counts frees.
type countingStrategy struct {
	onFree func()
}

func (s *countingStrategy) Reserve(byteLen int) ([]byte, func([]byte) error, bool, error) {
	return make([]byte, byteLen), func([]byte) error {
		s.onFree()
		return nil
	}, true, nil
}

func BenchmarkAllocate(b *testing.B) {
	strategies := map[string]Strategy{
		"native": NewNativeStrategy(),
		"pooled": NewPooledStrategy(),
	}
	sizes := []int{64, 1024, 65536}

	for name, strategy := range strategies {
		a := NewAllocator(strategy)
		for _, size := range sizes {
			b.Run(fmt.Sprintf("%s/size=%d", name, size), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					buf, err := Allocate[float32](a, size)
					if err != nil {
						b.Fatal(err)
					}
					buf.Release()
				}
			})
		}
	}
}

func BenchmarkPinUnpin(b *testing.B) {
	a := NewAllocator(NewNativeStrategy())
	buf, err := Allocate[float32](a, 1024)
	if err != nil {
		b.Fatal(err)
	}
	defer buf.Release()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p, err := buf.Pin(0)
		if err != nil {
			b.Fatal(err)
		}
		p.Unpin()
	}
}
