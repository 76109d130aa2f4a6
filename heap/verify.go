// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import (
	"fmt"
	"io"
)

// AllocStats summarizes one Heap.Check pass: block counts and byte
// totals across the whole region, the C9 consistency checker's report
// (spec.md §6's check(verbose) return value).
type AllocStats struct {
	RegionBytes int64 // total bytes taken from the Backend for the block region
	AllocBytes  int64 // sum of allocated blocks' total size (header+payload+footer)
	FreeBytes   int64 // sum of free blocks' total size
	BlockCount  int
	AllocCount  int
	FreeCount   int
}

// Check walks the block region once, tiling prologue to epilogue and
// verifying every boundary-tag and free-list invariant spec.md §5/§7
// names, then walks all numClasses free lists cross-checking them
// against what the region walk found. It is a single-pass version of
// lldb.Allocator.Verify with no bitmap phase: a lost free block is caught
// by comparing the free blocks the region walk found directly against the
// list members (ErrFreeListLost), since there is no concurrent writer and
// no truncated file to reconcile, unlike the on-disk Filer Verify guards
// against.
//
// If verbose is true, Check also writes a block-by-block and
// list-by-list dump to w, in the style of original_source/mm.c's
// printblock/print_free_list (see SPEC_FULL.md §7); w may be nil when
// verbose is false.
func (h *Heap) Check(w io.Writer, verbose bool) (*AllocStats, error) {
	stats := &AllocStats{RegionBytes: h.region.Size()}

	freeByScan := make(map[int64]int64) // offset -> size, as found by region walk
	prevFree := false
	off := h.prologueEnd
	for off < h.epilogueOff {
		size, alloc, err := readHeader(h.region, off)
		if err != nil {
			return nil, err
		}
		if size <= 0 || size%8 != 0 {
			return nil, &CorruptError{Kind: ErrRegionSizeNotMultiple, Off: off, Arg: size}
		}
		fsize, falloc, err := readFooter(h.region, off, size)
		if err != nil {
			return nil, err
		}
		if fsize != size || falloc != alloc {
			return nil, &CorruptError{Kind: ErrHeaderFooterMismatch, Off: off, Arg: fsize}
		}
		if !aligned8(payloadOff(off)) {
			return nil, &CorruptError{Kind: ErrMisalignedBlock, Off: off, Arg: payloadOff(off)}
		}
		if !alloc && prevFree {
			return nil, &CorruptError{Kind: ErrAdjacentFreeBlocks, Off: off, Arg: 0}
		}

		if verbose {
			fmt.Fprintf(w, "block %#x: size=%d alloc=%v\n", off, size, alloc)
		}

		stats.BlockCount++
		if alloc {
			stats.AllocCount++
			stats.AllocBytes += size
		} else {
			stats.FreeCount++
			stats.FreeBytes += size
			freeByScan[off] = size
		}
		prevFree = !alloc
		off = nextPhysical(off, size)
	}
	if off != h.epilogueOff {
		return nil, &CorruptError{Kind: ErrBadEpilogue, Off: off, Arg: h.epilogueOff}
	}
	if _, alloc, err := readHeader(h.region, h.epilogueOff); err != nil {
		return nil, err
	} else if !alloc {
		return nil, &CorruptError{Kind: ErrBadEpilogue, Off: h.epilogueOff, Arg: 0}
	}

	freeByList := make(map[int64]int64)
	for class := 0; class < numClasses; class++ {
		head, err := h.index.head(class)
		if err != nil {
			return nil, err
		}
		if verbose {
			fmt.Fprintf(w, "class %d head=%#x\n", class, head)
		}

		prev := int64(0)
		cur := head
		for cur != 0 {
			size, alloc, err := readHeader(h.region, cur)
			if err != nil {
				return nil, err
			}
			if alloc {
				return nil, &CorruptError{Kind: ErrFreeListBadLink, Off: cur, Arg: size}
			}
			if h.index.classOf(size) != class {
				return nil, &CorruptError{Kind: ErrFreeListWrongClass, Off: cur, Arg: int64(class)}
			}
			linkPrev, next, err := readLinks(h.region, cur)
			if err != nil {
				return nil, err
			}
			if linkPrev != prev {
				return nil, &CorruptError{Kind: ErrFreeListBadLink, Off: cur, Arg: linkPrev}
			}
			if verbose {
				fmt.Fprintf(w, "  free %#x size=%d\n", cur, size)
			}
			freeByList[cur] = size
			prev = cur
			cur = next
		}
	}

	for off, size := range freeByScan {
		if freeByList[off] != size {
			return nil, &CorruptError{Kind: ErrFreeListLost, Off: off, Arg: size}
		}
	}
	for off, size := range freeByList {
		if freeByScan[off] != size {
			return nil, &CorruptError{Kind: ErrFreeListLost, Off: off, Arg: size}
		}
	}

	return stats, nil
}
