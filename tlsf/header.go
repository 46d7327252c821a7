package tlsf

import "unsafe"

// ptrOf returns the address of the first byte of a nonempty region. It is
// the one place this package reaches into a caller-supplied []byte's
// backing array instead of working through addresses already computed by
// a prior call.
func ptrOf(region []byte) unsafe.Pointer { return unsafe.Pointer(&region[0]) }

// The two low bits of every block's size field are repurposed as flags;
// the true payload size is the remaining bits.
const (
	blockFreeMask uintptr = 1 << 0
	blockLastMask uintptr = 1 << 1
	blockSizeMask uintptr = ^(blockFreeMask | blockLastMask)
)

func rawSize(sizeAndFlags uintptr) uintptr { return sizeAndFlags & blockSizeMask }
func rawIsFree(sizeAndFlags uintptr) bool  { return sizeAndFlags&blockFreeMask != 0 }
func rawIsLast(sizeAndFlags uintptr) bool  { return sizeAndFlags&blockLastMask != 0 }
func rawMarkFree(sizeAndFlags uintptr) uintptr {
	return sizeAndFlags | blockFreeMask
}
func rawMarkUsed(sizeAndFlags uintptr) uintptr {
	return sizeAndFlags &^ blockFreeMask
}
func rawMarkLast(sizeAndFlags uintptr) uintptr {
	return sizeAndFlags | blockLastMask
}
func rawUnmarkLast(sizeAndFlags uintptr) uintptr {
	return sizeAndFlags &^ blockLastMask
}

// generalHeader is the full block header used by the General allocator.
// Every field here is address/offset data (uintptr), never a typed Go
// pointer: the backing region may be ordinary Go-managed memory, raw
// mmap'd memory, or anything else the caller supplies, so neighbor links
// are stored the same way as in the compact header — as plain
// addresses — rather than as *generalHeader, which would hide pointers
// from the garbage collector inside memory it doesn't scan.
//
// Unlike the compact header, General's header_len spans the whole
// struct: next/prev are never reclaimed as payload, because prevPhys must
// always be valid for immediate coalescing regardless of the block's
// free/used state, and next/prev ride along at fixed cost for symmetry.
type generalHeader struct {
	sizeAndFlags uintptr
	prevPhys     uintptr // address of the previous physical block's header, or 0
	next         uintptr // free-list link, valid only while free
	prev         uintptr // free-list link, valid only while free
}

// generalHeaderLen is the fixed per-block overhead in the General
// configuration: the entire header, always.
const generalHeaderLen = unsafe.Sizeof(generalHeader{})

func generalHeaderAt(addr uintptr) *generalHeader {
	return (*generalHeader)(unsafe.Pointer(addr))
}

func (h *generalHeader) addr() uintptr { return uintptr(unsafe.Pointer(h)) }
func (h *generalHeader) size() uintptr { return rawSize(h.sizeAndFlags) }
func (h *generalHeader) isFree() bool  { return rawIsFree(h.sizeAndFlags) }
func (h *generalHeader) isLast() bool  { return rawIsLast(h.sizeAndFlags) }
func (h *generalHeader) markFree()     { h.sizeAndFlags = rawMarkFree(h.sizeAndFlags) }
func (h *generalHeader) markUsed()     { h.sizeAndFlags = rawMarkUsed(h.sizeAndFlags) }
func (h *generalHeader) markLast()     { h.sizeAndFlags = rawMarkLast(h.sizeAndFlags) }
func (h *generalHeader) unmarkLast()   { h.sizeAndFlags = rawUnmarkLast(h.sizeAndFlags) }
func (h *generalHeader) setSize(size uintptr) {
	h.sizeAndFlags = size | (h.sizeAndFlags &^ blockSizeMask)
}

// payload returns the first usable byte of the block, aligned to 8 bytes.
func (h *generalHeader) payload() uintptr {
	return alignUp(h.addr()+generalHeaderLen, 8)
}

func (h *generalHeader) prevPhysHeader() *generalHeader {
	if h.prevPhys == 0 {
		return nil
	}
	return generalHeaderAt(h.prevPhys)
}

func (h *generalHeader) nextFree() *generalHeader {
	if h.next == 0 {
		return nil
	}
	return generalHeaderAt(h.next)
}

func (h *generalHeader) prevFree() *generalHeader {
	if h.prev == 0 {
		return nil
	}
	return generalHeaderAt(h.prev)
}

// regionNull is the 32-bit offset sentinel meaning "no block", used by
// Region's compact header so that next/prev can be 4 bytes each instead
// of full pointers.
const regionNull uint32 = 0xFFFFFFFF

// regionHeader is the compact block header used by the Region allocator.
// It carries no live prevPhys link — Region defers coalescing to
// Aggregate instead of doing it per-Free — but keeps the byte-width that
// field would have occupied as a reserved gap, so that header_len (the
// offset to nextFree) lines up with where a prevPhys field would have
// ended had this been the full header. next/prev are stored as 32-bit
// offsets from the pool's block_start rather than addresses, keeping the
// header small while still addressing a region up to 4 GiB. Once the
// block is handed out, nextFree/prevFree are reclaimed as payload bytes
// (the zero-overhead free-list trick); the reserved gap is not.
type regionHeader struct {
	sizeAndFlags uintptr
	_reserved    uintptr // unused; keeps header_len consistent with the general layout's prevPhys slot
	nextFree     uint32
	prevFree     uint32
}

// regionHeaderLen is the offset to nextFree.
const regionHeaderLen = unsafe.Offsetof(regionHeader{}.nextFree)

func regionHeaderAt(addr uintptr) *regionHeader {
	return (*regionHeader)(unsafe.Pointer(addr))
}

func (h *regionHeader) addr() uintptr { return uintptr(unsafe.Pointer(h)) }
func (h *regionHeader) size() uintptr { return rawSize(h.sizeAndFlags) }
func (h *regionHeader) isFree() bool  { return rawIsFree(h.sizeAndFlags) }
func (h *regionHeader) isLast() bool  { return rawIsLast(h.sizeAndFlags) }
func (h *regionHeader) markFree()     { h.sizeAndFlags = rawMarkFree(h.sizeAndFlags) }
func (h *regionHeader) markUsed()     { h.sizeAndFlags = rawMarkUsed(h.sizeAndFlags) }
func (h *regionHeader) markLast()     { h.sizeAndFlags = rawMarkLast(h.sizeAndFlags) }
func (h *regionHeader) unmarkLast()   { h.sizeAndFlags = rawUnmarkLast(h.sizeAndFlags) }
func (h *regionHeader) setSize(size uintptr) {
	h.sizeAndFlags = size | (h.sizeAndFlags &^ blockSizeMask)
}

func (h *regionHeader) payload() uintptr {
	return alignUp(h.addr()+regionHeaderLen, 8)
}
