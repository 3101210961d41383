package memkit

// Option configures an Allocator.
type Option func(*Allocator)

// WithBudget enforces a hard byte budget on the allocator. Allocations that
// would exceed the budget fail with ErrBudgetExceeded; released buffers
// return their bytes to the budget.
func WithBudget(b *Budget) Option {
	return func(a *Allocator) {
		a.budget = b
	}
}

// WithLogger sets the logger used for debug-level allocation events.
//
// If nil is passed, logging stays disabled.
func WithLogger(l *Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.logger = l
		}
	}
}

type allocConfig struct {
	alignment int
	skipZero  bool
}

// AllocOption configures a single allocation.
type AllocOption func(*allocConfig)

// WithAlignment sets the byte boundary the buffer's first element is aligned
// to. Must be a positive power of two; the default is DefaultAlignment.
func WithAlignment(alignment int) AllocOption {
	return func(c *allocConfig) {
		c.alignment = alignment
	}
}

// WithoutZeroing skips zero-initialization of the returned buffer. The
// contents are unspecified; callers that fully overwrite the buffer can use
// this to avoid the clearing pass.
func WithoutZeroing() AllocOption {
	return func(c *allocConfig) {
		c.skipZero = true
	}
}
