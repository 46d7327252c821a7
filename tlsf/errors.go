package tlsf

import "errors"

// ErrOutOfMemory is returned by shim layers built on top of an Allocator
// when Allocate's null sentinel (0, false) is produced by exhaustion. The
// core itself never returns an error on the allocation hot path; this
// exists for callers (like the malloc package) that want a real error
// value instead of a boolean.
var ErrOutOfMemory = errors.New("tlsf: out of memory")

// ErrInvalidRange is returned by shim layers when a FreeRange-style
// request straddles two distinct blocks or otherwise violates the caller
// contract that the core itself silently no-ops on.
var ErrInvalidRange = errors.New("tlsf: invalid range")
