// Package sizing provides checked size arithmetic for on-disk lengths.
package sizing

import "math"

// ToInt converts a uint64 length to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}

// Offset applies a signed offset to an unsigned position.
// It returns false if the result would be negative or overflow.
func Offset(pos uint64, off int64) (uint64, bool) {
	if off >= 0 {
		return AddUint64(pos, uint64(off))
	}
	neg := uint64(-(off + 1)) + 1 // avoids overflow at math.MinInt64
	if neg > pos {
		return 0, false
	}
	return pos - neg, true
}

// Len returns len(p) as a uint64.
func Len(p []byte) uint64 {
	return uint64(len(p)) //nolint:gosec // len is always non-negative
}
