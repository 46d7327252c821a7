package tlsf

import "fmt"

// BlockInfo is one physical block as reported by WalkGeneral/WalkRegion,
// for tests and diagnostic tooling that want more than Stats' aggregate
// counters.
type BlockInfo struct {
	Addr uintptr
	Size uintptr
	Free bool
	Last bool
}

// WalkGeneral returns every physical block of g in address order.
func (g *General) WalkGeneral() []BlockInfo {
	var out []BlockInfo
	for addr := g.blockStart; ; {
		blk := generalHeaderAt(addr)
		out = append(out, BlockInfo{Addr: addr, Size: blk.size(), Free: blk.isFree(), Last: blk.isLast()})
		if blk.isLast() {
			break
		}
		addr = blk.addr() + generalHeaderLen + blk.size()
	}
	return out
}

// WalkRegion returns every physical block of r in address order.
func (r *Region) WalkRegion() []BlockInfo {
	var out []BlockInfo
	for addr := r.blockStart; ; {
		blk := regionHeaderAt(addr)
		out = append(out, BlockInfo{Addr: addr, Size: blk.size(), Free: blk.isFree(), Last: blk.isLast()})
		if blk.isLast() {
			break
		}
		addr = blk.addr() + regionHeaderLen + blk.size()
	}
	return out
}

// FreeListLen returns the length of the free list for flattened class
// index flat, for bitmap/list-consistency checks in tests.
func (g *General) FreeListLen(flat int) int {
	n := 0
	for addr := g.heads[flat]; addr != 0; addr = generalHeaderAt(addr).next {
		n++
	}
	return n
}

// FreeListLen returns the length of the free list for class idx.
func (r *Region) FreeListLen(idx int) int {
	n := 0
	for off := r.heads[idx]; off != regionNull; off = r.blockAt(off).nextFree {
		n++
	}
	return n
}

// DumpBitmap renders the FL/SL bitmaps of g as a multi-line string: one
// line for the first-level bitmap, then one line per first-level class
// whose second-level bitmap is non-zero, in the style of the original's
// print_flatmap debug dump.
func (g *General) DumpBitmap() string {
	s := fmt.Sprintf("fl=%032b\n", g.flBitmap)
	for fl := 0; fl < generalFL; fl++ {
		if g.slBitmap[fl] != 0 {
			s += fmt.Sprintf("  sl[%2d]=%032b\n", fl, g.slBitmap[fl])
		}
	}
	return s
}

// DumpBitmap renders r's single flat bitmap.
func (r *Region) DumpBitmap() string {
	return fmt.Sprintf("flat=%056b\n", r.flatmap)
}
