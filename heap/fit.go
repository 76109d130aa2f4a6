// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "github.com/cznic/mathutil"

// searchWindow is the K of original_source/mm.c's bounded best-fit search:
// at most this many fitting list entries (size >= asize) are compared per
// size class before the search settles for the best candidate seen so far,
// trading fit quality for a bounded search cost (spec §4.6). Undersized
// entries are walked past without counting against the window.
const searchWindow = 9

// fit finds a free block of at least asize bytes, splices it out of its
// size-class list, and returns its offset and actual size. It reports
// ok=false if no class holds a suitable block, in which case the caller
// (heap.go's Alloc) must extend the region.
//
// Every class from classOf(asize) upward is searched with the same
// bounded best-fit scanClass, same as original_source/mm.c's find_fit;
// the first class that yields a candidate ends the search. Every block in
// a class above the starting one is large enough, so only the starting
// class can hold undersized members.
func fit(b Backend, ix *index, asize int64) (off, size int64, ok bool, err error) {
	start := ix.classOf(asize)
	for class := start; class < numClasses; class++ {
		off, size, ok, err = scanClass(b, ix, class, asize)
		if err != nil {
			return 0, 0, false, err
		}
		if ok {
			return off, size, true, nil
		}
	}
	return 0, 0, false, nil
}

// scanClass walks the given class's free list and returns the block with
// least excess (size-asize) among the first searchWindow candidates
// whose size is actually >= asize. Non-fitting members — which a class
// can legitimately hold, since asize can land anywhere in the class's
// (prevBound, thisBound] range — are skipped without consuming the
// window, mirroring original_source/mm.c's find(): its counter only
// advances when `asize <= size`, so undersized nodes are walked past for
// free.
func scanClass(b Backend, ix *index, class int, asize int64) (off, size int64, ok bool, err error) {
	cur, err := ix.head(class)
	if err != nil {
		return 0, 0, false, err
	}

	var bestOff, bestSize int64
	bestExcess := int64(-1)
	counter := 0
	for cur != 0 && counter < searchWindow {
		curSize, alloc, err := readHeader(b, cur)
		if err != nil {
			return 0, 0, false, err
		}
		if alloc {
			return 0, 0, false, &CorruptError{Kind: ErrFreeListBadLink, Off: cur, Arg: curSize}
		}
		if curSize >= asize {
			counter++
			excess := curSize - asize
			if bestExcess == -1 || excess < bestExcess {
				bestOff, bestSize, bestExcess = cur, curSize, excess
				if excess == 0 {
					break
				}
			}
		}
		_, next, err := readLinks(b, cur)
		if err != nil {
			return 0, 0, false, err
		}
		cur = next
	}

	if bestExcess == -1 {
		return 0, 0, false, nil
	}

	prev, next, err := readLinks(b, bestOff)
	if err != nil {
		return 0, 0, false, err
	}
	if err := splice(b, ix, bestOff, bestSize, prev, next); err != nil {
		return 0, 0, false, err
	}
	return bestOff, mathutil.MaxInt64(bestSize, asize), true, nil
}
