package tlsf

// Region is the size-optimized TLSF variant: a flat 56-class map, a
// compact header with no persistent prevPhys link, deferred coalescing
// via Aggregate, and FreeRange for releasing an arbitrary aligned
// sub-range of an already-allocated or already-free block. Intended for
// fixed-size small pools (the design's original motivation was a 2 MiB
// partition).
type Region struct {
	region     []byte
	base       uintptr
	blockStart uintptr
	poolSize   uintptr

	flatmap uint64
	heads   [regionNumClasses]uint32
}

// NewRegion constructs a Region allocator over region. See NewGeneral for
// the panic conditions on an undersized region.
func NewRegion(region []byte) *Region {
	if len(region) == 0 {
		panic("tlsf: empty region")
	}

	r := &Region{region: region}
	r.base = uintptr(ptrOf(region))
	r.blockStart = alignUp(r.base, allocAlignment)
	wasted := r.blockStart - r.base
	if uintptr(len(region)) <= wasted {
		panic("tlsf: region too small")
	}
	r.poolSize = alignDown(uintptr(len(region))-wasted, regionMBS)
	if r.poolSize < regionMBS+regionHeaderLen {
		panic("tlsf: region too small for one block")
	}

	r.Clear(false)
	return r
}

func (r *Region) offsetOf(blk *regionHeader) uint32 {
	if blk == nil {
		return regionNull
	}
	return uint32(blk.addr() - r.blockStart)
}

func (r *Region) blockAt(off uint32) *regionHeader {
	if off == regionNull {
		return nil
	}
	return regionHeaderAt(r.blockStart + uintptr(off))
}

// Clear erases all free-list and bitmap metadata and materializes a
// single block spanning the whole pool.
func (r *Region) Clear(initialBlockAllocated bool) {
	r.flatmap = 0
	for i := range r.heads {
		r.heads[i] = regionNull
	}

	blk := regionHeaderAt(r.blockStart)
	blk.sizeAndFlags = 0
	blk.setSize(r.poolSize - regionHeaderLen)
	blk.nextFree = regionNull
	blk.prevFree = regionNull
	blk.markLast()

	if !initialBlockAllocated {
		r.insertBlock(blk)
	} else {
		blk.markUsed()
	}
}

func (r *Region) PoolSize() uintptr { return r.poolSize }

// Allocate uses the flat single-level map: align the request, find the
// smallest sufficient non-empty class via one bitmap probe, remove its
// head, split off any sizeable remainder.
func (r *Region) Allocate(size uintptr) (uintptr, bool) {
	blk := r.findBlock(size)
	if blk == nil {
		return 0, false
	}
	return blk.payload(), true
}

func (r *Region) findBlock(size uintptr) *regionHeader {
	aligned := alignSize(size, regionMBS)
	idx, ok := regionTargetMapping(aligned)
	if !ok {
		return nil
	}

	m := r.flatmap & (^uint64(0) << idx)
	if m == 0 {
		return nil
	}
	idx = ffs(m)

	blk := r.removeBlock(nil, idx)

	if blk.size()-aligned >= regionMBS+regionHeaderLen {
		remainder := r.splitBlock(blk, aligned)
		r.insertBlock(remainder)
	}

	return blk
}

// splitBlock shrinks blk to exactly size bytes of payload and carves the
// remainder into a new block immediately following it. The remainder is
// returned unlinked for the caller to insert or hand out.
func (r *Region) splitBlock(blk *regionHeader, size uintptr) *regionHeader {
	remainderSize := blk.size() - regionHeaderLen - size
	wasLast := blk.isLast()
	blk.setSize(size)
	blk.unmarkLast()

	remainder := regionHeaderAt(blk.addr() + regionHeaderLen + blk.size())
	remainder.sizeAndFlags = 0
	remainder.setSize(remainderSize)
	remainder.nextFree = regionNull
	remainder.prevFree = regionNull
	if wasLast {
		remainder.markLast()
	}

	return remainder
}

// Free re-inserts the block at addr into its free list. Unlike General,
// Region never coalesces on Free: the compact header has no prevPhys
// link, so finding the physical predecessor per-Free is impossible.
// Neighbors stay fragmented until Aggregate is called.
func (r *Region) Free(addr uintptr) {
	if addr == 0 {
		return
	}
	blk := regionHeaderAt(addr - regionHeaderLen)
	r.insertBlock(blk)
}

func (r *Region) nextPhysBlock(blk *regionHeader) *regionHeader {
	if blk.isLast() {
		return nil
	}
	next := blk.addr() + regionHeaderLen + blk.size()
	poolEnd := r.blockStart + r.poolSize
	if next >= poolEnd {
		return nil
	}
	return regionHeaderAt(next)
}

// Aggregate walks the pool in physical order, merging any two adjacent
// free blocks. Calling it twice in a row is idempotent: the second pass
// finds nothing left to merge.
func (r *Region) Aggregate() {
	cur := regionHeaderAt(r.blockStart)
	next := r.nextPhysBlock(cur)

	for next != nil {
		if cur.isFree() && next.isFree() {
			cur = r.coalesceBlocks(cur, next)
			r.insertBlock(cur)
		} else {
			cur = next
		}
		next = r.nextPhysBlock(cur)
	}
}

func (r *Region) coalesceBlocks(a, b *regionHeader) *regionHeader {
	r.removeBlock(a, regionMapping(a.size()))
	r.removeBlock(b, regionMapping(b.size()))

	wasLast := b.isLast()
	a.setSize(a.size() + regionHeaderLen + b.size())
	if wasLast {
		a.markLast()
	}
	return a
}

// blockContaining returns the block whose header-to-end span contains
// address, found by a linear physical walk. This is the one O(n)
// operation in the Region configuration; it is acceptable because
// FreeRange is a cold path.
func (r *Region) blockContaining(address uintptr) *regionHeader {
	poolEnd := r.blockStart + r.poolSize
	for cur := r.blockStart; cur < poolEnd; {
		blk := regionHeaderAt(cur)
		end := blk.addr() + regionHeaderLen + blk.size()
		if address >= cur && address <= end {
			return blk
		}
		cur = end
	}
	return nil
}

// FreeRange releases an arbitrary aligned sub-range [address, address+n)
// of a single pre-existing block, which may be free or allocated. It
// handles four geometric cases: interior, touching the block's start,
// touching its end, or spanning the entire block. A range that straddles
// two distinct blocks is a caller contract violation and is a silent
// no-op.
func (r *Region) FreeRange(address uintptr, n uintptr) {
	rangeEnd := address + n

	blk := r.blockContaining(address)
	if blk != nil && address == blk.addr()+regionHeaderLen+blk.size() {
		// address is the end of blk, i.e. the start of the next block.
		blk = r.nextPhysBlock(blk)
	}
	if blk == nil || blk != r.blockContaining(rangeEnd) {
		return
	}

	blkStart := blk.addr()
	blkEnd := blkStart + regionHeaderLen + blk.size()

	// blk may already be free and linked into its class's list (the
	// doc comment above promises FreeRange works on either state). Every
	// branch below mutates blk's header in place or re-inserts a fragment
	// of it, so blk must be unlinked first — acting on a still-linked free
	// header would leave its old neighbors pointing at a node no longer in
	// the chain, corrupting or orphaning the rest of that free list.
	// An interior range whose middle fragment would be smaller than
	// MBS+headerLen is rejected before that, so it leaves blk untouched.
	if address > blkStart && rangeEnd < blkEnd && rangeEnd-address < regionMBS+regionHeaderLen {
		return
	}
	if blk.isFree() {
		blk = r.removeBlock(blk, regionMapping(blk.size()))
	}

	switch {
	case address == blkStart && rangeEnd == blkEnd:
		// Entire block.
		r.Free(blk.payload())

	case address > blkStart && rangeEnd < blkEnd:
		// Interior: split twice, only the middle fragment is freed.
		leftSize := address - blkStart - regionHeaderLen
		middle := r.splitBlock(blk, leftSize)
		right := r.splitBlock(middle, n-regionHeaderLen)
		r.insertBlock(middle)
		_ = right

	case rangeEnd == blkEnd:
		// Touches end: left stays allocated, right is freed.
		splitSize := address - blkStart - regionHeaderLen
		right := r.splitBlock(blk, splitSize)
		r.insertBlock(right)

	case address == blkStart:
		// Touches start: left is freed, right stays allocated.
		splitSize := rangeEnd - blkStart - regionHeaderLen
		right := r.splitBlock(blk, splitSize)
		r.insertBlock(blk)
		_ = right

	default:
		// Any other geometry: a silent no-op.
	}
}

// GetAllocatedSize returns the payload size of the block preceding addr.
func (r *Region) GetAllocatedSize(addr uintptr) uintptr {
	return regionHeaderAt(addr - regionHeaderLen).size()
}

// Stats walks the physical chain once, tallying block/byte counts.
func (r *Region) Stats() Stats {
	s := Stats{PoolSize: r.poolSize, HeaderLen: regionHeaderLen}
	for addr := r.blockStart; ; {
		blk := regionHeaderAt(addr)
		s.BlockCount++
		if blk.isFree() {
			s.FreeBlockCount++
			s.FreeBytes += blk.size()
		} else {
			s.UsedBytes += blk.size()
		}
		if blk.isLast() {
			break
		}
		addr = blk.addr() + regionHeaderLen + blk.size()
	}
	return s
}
