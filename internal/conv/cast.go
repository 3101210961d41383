package conv

import (
	"fmt"
	"math"
)

// Int64ToInt converts int64 to int safely.
// On 32-bit platforms this rejects values beyond the 31-bit signed range.
func Int64ToInt(v int64) (int, error) {
	if v > int64(math.MaxInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too large)", v)
	}
	if v < int64(math.MinInt) {
		return 0, fmt.Errorf("integer overflow: %d cannot be converted to int (too small)", v)
	}
	return int(v), nil
}

// AddInt64 adds two non-negative int64 values, failing on overflow.
func AddInt64(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("integer overflow: negative operand in %d + %d", a, b)
	}
	if a > math.MaxInt64-b {
		return 0, fmt.Errorf("integer overflow: %d + %d exceeds int64", a, b)
	}
	return a + b, nil
}

// MulInt64 multiplies two non-negative int64 values, failing on overflow.
func MulInt64(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("integer overflow: negative operand in %d * %d", a, b)
	}
	if a == 0 || b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, fmt.Errorf("integer overflow: %d * %d exceeds int64", a, b)
	}
	return a * b, nil
}
