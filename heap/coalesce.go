// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// coalesce merges the free block at off (size bytes, already NOT linked
// into any size-class list, header/footer already marked free) with any
// free physical neighbors, splices those neighbors out of their lists,
// and inserts the resulting extent into the index. It returns the
// offset and size of the final (possibly merged) free block.
//
// This is the four-case coalescer of original_source/mm.c's coalesce()
// and spec §4.4, reworked around lldb.Allocator's link/unlink pair: the
// boundary tags (block.go) give O(1) access to both neighbors without a
// heap-wide scan.
func coalesce(b Backend, ix *index, off, size, prologueEnd, epilogueOff int64) (int64, int64, error) {
	leftOff, leftSize := int64(0), int64(0)
	leftFree := false
	if off > prologueEnd {
		var err error
		leftOff, leftSize, err = prevPhysical(b, off)
		if err != nil {
			return 0, 0, err
		}
		_, leftFree, err = readHeader(b, leftOff)
		if err != nil {
			return 0, 0, err
		}
	}

	rightOff := nextPhysical(off, size)
	rightFree := false
	var rightSize int64
	if rightOff < epilogueOff {
		var err error
		rightSize, rightFree, err = readHeader(b, rightOff)
		if err != nil {
			return 0, 0, err
		}
	}

	switch {
	case !leftFree && !rightFree:
		// Case 1: no merge, just insert.
	case !leftFree && rightFree:
		// Case 2: merge with the right neighbor.
		prev, next, err := readLinks(b, rightOff)
		if err != nil {
			return 0, 0, err
		}
		if err := splice(b, ix, rightOff, rightSize, prev, next); err != nil {
			return 0, 0, err
		}
		size += rightSize
	case leftFree && !rightFree:
		// Case 3: merge with the left neighbor.
		prev, next, err := readLinks(b, leftOff)
		if err != nil {
			return 0, 0, err
		}
		if err := splice(b, ix, leftOff, leftSize, prev, next); err != nil {
			return 0, 0, err
		}
		off, size = leftOff, leftSize+size
	default:
		// Case 4: merge with both neighbors.
		lp, ln, err := readLinks(b, leftOff)
		if err != nil {
			return 0, 0, err
		}
		if err := splice(b, ix, leftOff, leftSize, lp, ln); err != nil {
			return 0, 0, err
		}
		rp, rn, err := readLinks(b, rightOff)
		if err != nil {
			return 0, 0, err
		}
		if err := splice(b, ix, rightOff, rightSize, rp, rn); err != nil {
			return 0, 0, err
		}
		off, size = leftOff, leftSize+size+rightSize
	}

	if err := insert(b, ix, off, size); err != nil {
		return 0, 0, err
	}
	return off, size, nil
}
