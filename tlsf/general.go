package tlsf

// General is the classic TLSF allocator: FL×SL segregated free lists,
// immediate boundary-tag coalescing on every Free. Its zero value is not
// ready for use — construct one with NewGeneral over a caller-supplied
// region.
type General struct {
	region     []byte
	base       uintptr
	blockStart uintptr
	poolSize   uintptr

	flBitmap uint32
	slBitmap [generalFL]uint32
	heads    [generalNumLists]uintptr
}

// NewGeneral constructs a General allocator over region. The region must
// be large enough to hold at least one MBS-sized block after alignment;
// passing a too-small region is a caller contract violation and panics
// rather than silently misbehaving.
func NewGeneral(region []byte) *General {
	if len(region) == 0 {
		panic("tlsf: empty region")
	}

	g := &General{region: region}
	g.base = uintptr(ptrOf(region))
	g.blockStart = alignUp(g.base, allocAlignment)
	wasted := g.blockStart - g.base
	if uintptr(len(region)) <= wasted {
		panic("tlsf: region too small")
	}
	g.poolSize = alignDown(uintptr(len(region))-wasted, generalMBS)
	if g.poolSize < generalMBS+generalHeaderLen {
		panic("tlsf: region too small for one block")
	}

	g.Clear(false)
	return g
}

// Clear erases all free-list and bitmap metadata and materializes a
// single block spanning the whole pool.
func (g *General) Clear(initialBlockAllocated bool) {
	g.flBitmap = 0
	for i := range g.slBitmap {
		g.slBitmap[i] = 0
	}
	for i := range g.heads {
		g.heads[i] = 0
	}

	blk := generalHeaderAt(g.blockStart)
	blk.sizeAndFlags = 0
	blk.setSize(g.poolSize - generalHeaderLen)
	blk.prevPhys = 0
	blk.next = 0
	blk.prev = 0
	blk.markLast()

	if !initialBlockAllocated {
		g.insertBlock(blk)
	} else {
		blk.markUsed()
	}
}

func (g *General) PoolSize() uintptr { return g.poolSize }

// Allocate aligns the request, finds the smallest sufficient non-empty
// class via two bitmap probes, removes its head, splits off any
// sizeable remainder, and returns the payload address.
func (g *General) Allocate(size uintptr) (uintptr, bool) {
	blk := g.findBlock(size)
	if blk == nil {
		return 0, false
	}
	return blk.payload(), true
}

func (g *General) findBlock(size uintptr) *generalHeader {
	aligned := alignSize(size, generalMBS)
	m, ok := generalTargetMapping(aligned)
	if !ok {
		return nil
	}

	slMap := g.slBitmap[m.fl] & (^uint32(0) << m.sl)
	if slMap == 0 {
		flMap := g.flBitmap & (^uint32(0) << (m.fl + 1))
		if flMap == 0 {
			return nil
		}
		m.fl = ffs(uint64(flMap))
		slMap = g.slBitmap[m.fl]
	}
	m.sl = ffs(uint64(slMap))

	blk := g.removeBlock(nil, m)

	if blk.size()-aligned >= generalMBS+generalHeaderLen {
		remainder := g.splitBlock(blk, aligned)
		g.insertBlock(remainder)
	}

	return blk
}

// splitBlock shrinks blk to exactly size bytes of payload and carves the
// remainder into a new block immediately following it, preserving the
// physical-neighbor chain. The remainder is returned unlinked (neither
// free nor used) for the caller to insert or hand out.
func (g *General) splitBlock(blk *generalHeader, size uintptr) *generalHeader {
	remainderSize := blk.size() - generalHeaderLen - size
	wasLast := blk.isLast()
	blk.setSize(size)
	blk.unmarkLast()

	remainder := generalHeaderAt(blk.addr() + generalHeaderLen + blk.size())
	remainder.sizeAndFlags = 0
	remainder.setSize(remainderSize)
	remainder.prevPhys = blk.addr()
	remainder.next = 0
	remainder.prev = 0
	if wasLast {
		remainder.markLast()
	}

	if next := g.nextPhysBlock(remainder); next != nil {
		next.prevPhys = remainder.addr()
	}

	return remainder
}

// Free recovers the header, coalesces with free physical neighbors,
// then re-inserts the merged block.
func (g *General) Free(addr uintptr) {
	if addr == 0 {
		return
	}

	blk := generalHeaderAt(addr - generalHeaderLen)

	if prev := blk.prevPhysHeader(); prev != nil && prev.isFree() {
		blk = g.coalesceBlocks(prev, blk)
	}
	if next := g.nextPhysBlock(blk); next != nil && next.isFree() {
		blk = g.coalesceBlocks(blk, next)
	}

	g.insertBlock(blk)
}

// coalesceBlocks merges a (which immediately precedes b) and b into one
// block and returns it. Only a side that is actually linked into a free
// list gets unlinked: the block being freed, and any merge result already
// produced by an earlier call here, are never inserted in the first
// place, so removeBlock must not be called on them — it would dereference
// and overwrite stale next/prev fields left over from whatever free list
// the block sat in before its last allocation.
func (g *General) coalesceBlocks(a, b *generalHeader) *generalHeader {
	if a.isFree() {
		g.removeBlock(a, generalMapping(a.size()))
	}
	if b.isFree() {
		g.removeBlock(b, generalMapping(b.size()))
	}

	wasLast := b.isLast()
	a.setSize(a.size() + generalHeaderLen + b.size())
	if wasLast {
		a.markLast()
	}

	if next := g.nextPhysBlock(a); next != nil {
		next.prevPhys = a.addr()
	}

	return a
}

func (g *General) nextPhysBlock(blk *generalHeader) *generalHeader {
	if blk.isLast() {
		return nil
	}
	next := blk.addr() + generalHeaderLen + blk.size()
	poolEnd := g.blockStart + g.poolSize
	if next >= poolEnd {
		return nil
	}
	return generalHeaderAt(next)
}

// GetAllocatedSize returns the payload size of the block preceding addr.
func (g *General) GetAllocatedSize(addr uintptr) uintptr {
	return generalHeaderAt(addr - generalHeaderLen).size()
}

// Stats walks the physical chain once, tallying block/byte counts.
func (g *General) Stats() Stats {
	s := Stats{PoolSize: g.poolSize, HeaderLen: generalHeaderLen}
	for addr := g.blockStart; ; {
		blk := generalHeaderAt(addr)
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
		addr = blk.addr() + generalHeaderLen + blk.size()
	}
	return s
}
