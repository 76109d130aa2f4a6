// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// place carves an asize-byte allocated block out of the free block at off
// (already spliced out of its size-class list), splitting off and
// reinserting the remainder when it is large enough to stand alone as a
// block of its own (spec §4.5 / original_source/mm.c's place()).
//
// blockSize is the full size of the free extent; asize is the already
// block-size-rounded request. asize must be <= blockSize. prologueEnd and
// epilogueOff bound the region for the remainder's defensive coalesce, same
// as the coalesce call in Free.
func place(b Backend, ix *index, off, blockSize, asize, prologueEnd, epilogueOff int64) error {
	remainder := blockSize - asize
	if remainder < minBlockSize {
		// Too small to free-list on its own: hand over the whole block,
		// same as original_source/mm.c's place() when csize-asize is
		// below its DSIZE*2 threshold.
		return writeHeaderFooter(b, off, blockSize, true)
	}

	if err := writeHeaderFooter(b, off, asize, true); err != nil {
		return err
	}
	remOff := nextPhysical(off, asize)
	if err := writeHeaderFooter(b, remOff, remainder, false); err != nil {
		return err
	}
	// Defensive: the remainder's physical neighbors are not expected to be
	// free here (place is only ever called on a maximal free block just
	// spliced out of its list, whether found by fit or returned by extend),
	// but original_source/mm.c's place() coalesces unconditionally, and the
	// cost is cheap.
	_, _, err := coalesce(b, ix, remOff, remainder, prologueEnd, epilogueOff)
	return err
}
