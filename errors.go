package memkit

import (
	"errors"
	"fmt"
)

var (
	// ErrNegativeLength is returned when an allocation or build is requested
	// with a negative element count.
	ErrNegativeLength = errors.New("length must be non-negative")
	// ErrInvalidAlignment is returned when the requested alignment is not a
	// positive power of two.
	ErrInvalidAlignment = errors.New("alignment must be a positive power of two")
	// ErrFillRange is returned when a fill range is malformed (start < 0 or
	// end <= start).
	ErrFillRange = errors.New("fill range must satisfy 0 <= start < end")
	// ErrAddressSpace is returned when the required byte count does not fit
	// the platform's addressable range.
	ErrAddressSpace = errors.New("allocation size exceeds platform addressable range")
	// ErrReleased is returned when pinning a buffer whose memory has already
	// been returned to the operating environment.
	ErrReleased = errors.New("buffer has been released")
	// ErrBudgetExceeded is returned when an allocation would exceed the
	// configured memory budget.
	ErrBudgetExceeded = errors.New("memory budget exceeded")
)

// ErrIndexOutOfRange indicates a pin index outside [0, Length].
//
// Length itself is a valid index: a one-past-end pin supports empty-view
// handling by callers and grants no access rights beyond the address.
type ErrIndexOutOfRange struct {
	Index  int
	Length int
}

func (e *ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("index out of range: %d not in [0, %d]", e.Index, e.Length)
}
