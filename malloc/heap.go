// Package malloc is a process-wide malloc/calloc/free/realloc shim built
// on top of tlsf.General over one OS-backed mmap pool. It exists purely
// as an external collaborator demonstrating how to wrap the single-
// threaded core with a mutex for concurrent callers; the core itself
// never needs this package.
package malloc

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/joelsiks/jsmalloc/tlsf"
)

// Heap owns one mmap'd pool and serializes every call into the
// tlsf.General allocator living over it.
type Heap struct {
	mu     sync.Mutex
	region []byte
	alloc  *tlsf.General
	closed bool
}

// NewHeap mmaps a pool of size bytes and constructs a General allocator
// over it.
func NewHeap(size int) (*Heap, error) {
	region, err := mmapPool(size)
	if err != nil {
		return nil, fmt.Errorf("malloc: mmap %d bytes: %w", size, err)
	}
	return &Heap{region: region, alloc: tlsf.NewGeneral(region)}, nil
}

// Close unmaps the pool. The Heap must not be used afterward.
func (h *Heap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return munmapPool(h.region)
}

func (h *Heap) bytesAt(addr uintptr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(size))
}

// Malloc returns size uninitialized bytes, or ErrOutOfMemory if the pool
// has no sufficiently large free block.
func (h *Heap) Malloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	addr, ok := h.alloc.Allocate(uintptr(size))
	if !ok {
		return nil, tlsf.ErrOutOfMemory
	}
	return h.bytesAt(addr, uintptr(size)), nil
}

// Calloc is Malloc followed by a zero-fill.
func (h *Heap) Calloc(size int) ([]byte, error) {
	b, err := h.Malloc(size)
	if err != nil {
		return nil, err
	}
	for i := range b {
		b[i] = 0
	}
	return b, nil
}

// Free releases b, previously returned by Malloc/Calloc/Realloc. Freeing
// nil is a no-op.
func (h *Heap) Free(b []byte) {
	if len(b) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.alloc.Free(uintptr(unsafe.Pointer(&b[0])))
}

// Realloc resizes b to size bytes, preserving the overlapping prefix. A
// nil b behaves like Malloc; a size of 0 frees b and returns nil.
func (h *Heap) Realloc(b []byte, size int) ([]byte, error) {
	if len(b) == 0 {
		return h.Malloc(size)
	}
	if size == 0 {
		h.Free(b)
		return nil, nil
	}

	h.mu.Lock()
	oldSize := h.alloc.GetAllocatedSize(uintptr(unsafe.Pointer(&b[0])))
	h.mu.Unlock()

	if uintptr(size) <= oldSize {
		return h.bytesAt(uintptr(unsafe.Pointer(&b[0])), uintptr(size)), nil
	}

	nb, err := h.Malloc(size)
	if err != nil {
		return nil, err
	}
	copy(nb, b)
	h.Free(b)
	return nb, nil
}

// Stats reports the underlying allocator's bookkeeping.
func (h *Heap) Stats() tlsf.Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alloc.Stats()
}
