package tlsf

import "math/bits"

// alignUp rounds size up to the nearest multiple of alignment, which must
// be a power of two.
func alignUp(size, alignment uintptr) uintptr {
	return (size + alignment - 1) &^ (alignment - 1)
}

// alignDown rounds size down to the nearest multiple of alignment, which
// must be a power of two.
func alignDown(size, alignment uintptr) uintptr {
	return size &^ (alignment - 1)
}

// isAligned reports whether size is a multiple of alignment.
func isAligned(size, alignment uintptr) bool {
	return size&(alignment-1) == 0
}

// ilog2 returns the position of the highest set bit of a positive x.
// The result is undefined for x == 0.
func ilog2(x uint64) uint {
	return uint(bits.Len64(x)) - 1
}

// ffs returns the position of the lowest set bit of a nonzero x. Callers
// must ensure x != 0; the result is undefined otherwise.
func ffs(x uint64) uint {
	return uint(bits.TrailingZeros64(x))
}
