package memkit

import (
	"math/bits"
	"sync"

	"github.com/eapache/queue"
)

const (
	// minClassBits is the smallest size class (64 B), matching the default
	// alignment so even the smallest buffer fills its class reasonably.
	minClassBits = 6
	// maxClassBits is the largest pooled size class (64 MiB). Larger
	// requests bypass the pool entirely.
	maxClassBits = 26

	// DefaultMaxIdlePerClass bounds how many released regions each size
	// class keeps for reuse; overflow is dropped to the garbage collector.
	DefaultMaxIdlePerClass = 16
)

// PooledStrategy recycles heap regions through power-of-two size classes.
//
// Reserve rounds the request up to its class, so the reserved byte count
// regularly exceeds the request. Recycled regions keep their old contents;
// the strategy reports them as not zeroed and the allocator re-clears them
// unless zeroing was skipped.
//
// Safe for concurrent use.
type PooledStrategy struct {
	mu      sync.Mutex
	classes [maxClassBits + 1]*queue.Queue // FIFO of idle regions per class
	maxIdle int
}

// PoolOption configures a PooledStrategy.
type PoolOption func(*PooledStrategy)

// WithMaxIdlePerClass bounds the idle regions kept per size class.
func WithMaxIdlePerClass(n int) PoolOption {
	return func(p *PooledStrategy) {
		if n >= 0 {
			p.maxIdle = n
		}
	}
}

// NewPooledStrategy creates a PooledStrategy.
func NewPooledStrategy(opts ...PoolOption) *PooledStrategy {
	p := &PooledStrategy{
		maxIdle: DefaultMaxIdlePerClass,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// classFor returns the size class for byteLen, or false when the request is
// too large to pool.
func classFor(byteLen int) (int, bool) {
	class := bits.Len(uint(byteLen - 1))
	if class < minClassBits {
		class = minClassBits
	}
	if class > maxClassBits {
		return 0, false
	}
	return class, true
}

// Reserve returns a region of the next power-of-two class size, reusing an
// idle region when one is available.
func (p *PooledStrategy) Reserve(byteLen int) ([]byte, func([]byte) error, bool, error) {
	class, ok := classFor(byteLen)
	if !ok {
		// Oversized regions are never recycled; the GC reclaims them.
		return make([]byte, byteLen), nil, true, nil
	}

	p.mu.Lock()
	if q := p.classes[class]; q != nil && q.Length() > 0 {
		region := q.Remove().([]byte)
		p.mu.Unlock()
		return region, p.recycle(class), false, nil
	}
	p.mu.Unlock()

	return make([]byte, 1<<class), p.recycle(class), true, nil
}

func (p *PooledStrategy) recycle(class int) func([]byte) error {
	return func(region []byte) error {
		p.mu.Lock()
		defer p.mu.Unlock()

		q := p.classes[class]
		if q == nil {
			q = queue.New()
			p.classes[class] = q
		}
		if q.Length() < p.maxIdle {
			q.Add(region)
		}
		return nil
	}
}

// Idle returns the total number of regions currently held for reuse.
func (p *PooledStrategy) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var n int
	for _, q := range p.classes {
		if q != nil {
			n += q.Length()
		}
	}
	return n
}
