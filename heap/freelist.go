// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// indexSize is the byte size of the segregated index header: one 8-byte
// head pointer per size class (spec §3: "The index lives at the very
// start of the region as a fixed-size header, written once at init and
// mutated in place thereafter").
const indexSize = numClasses * linkSize

// index is the segregated free-list index (C3): numClasses head pointers
// stored in the outer Backend ahead of the block region, read/written
// directly (no InnerFiler-style shift — the index *is* what defines the
// shift the block region's innerBackend applies).
type index struct {
	outer  Backend
	bounds [numClasses - 1]int64
}

func (ix *index) classOf(size int64) int { return classOf(&ix.bounds, size) }

func (ix *index) head(class int) (int64, error) {
	var buf [linkSize]byte
	if _, err := ix.outer.ReadAt(buf[:], int64(class)*linkSize); err != nil {
		return 0, err
	}
	return getLink(buf[:]), nil
}

func (ix *index) setHead(class int, v int64) error {
	var buf [linkSize]byte
	putLink(buf[:], v)
	_, err := ix.outer.WriteAt(buf[:], int64(class)*linkSize)
	return err
}

// Free-block payload layout: prev_free at payload+0, next_free at
// payload+linkSize (spec §4.2). payloadOff is blockOff+wordSize.
func payloadOff(blockOff int64) int64 { return blockOff + wordSize }

func readLinks(b Backend, blockOff int64) (prev, next int64, err error) {
	var buf [2 * linkSize]byte
	if _, err = b.ReadAt(buf[:], payloadOff(blockOff)); err != nil {
		return 0, 0, err
	}
	return getLink(buf[:linkSize]), getLink(buf[linkSize:]), nil
}

func writeLinks(b Backend, blockOff, prev, next int64) error {
	var buf [2 * linkSize]byte
	putLink(buf[:linkSize], prev)
	putLink(buf[linkSize:], next)
	_, err := b.WriteAt(buf[:], payloadOff(blockOff))
	return err
}

func writePrev(b Backend, blockOff, prev int64) error {
	var buf [linkSize]byte
	putLink(buf[:], prev)
	_, err := b.WriteAt(buf[:], payloadOff(blockOff))
	return err
}

func writeNext(b Backend, blockOff, next int64) error {
	var buf [linkSize]byte
	putLink(buf[:], next)
	_, err := b.WriteAt(buf[:], payloadOff(blockOff)+linkSize)
	return err
}

// insert adds a free block of size `size` at blockOff to the front of its
// size class's list (LIFO — spec §4.3's rationale: O(1) insert, no need
// to keep lists sorted; best-fit quality is recovered at search time by
// the bounded window in fit.go).
func insert(b Backend, ix *index, blockOff, size int64) error {
	class := ix.classOf(size)
	oldHead, err := ix.head(class)
	if err != nil {
		return err
	}

	if err := writeHeaderFooter(b, blockOff, size, false); err != nil {
		return err
	}
	if err := writeLinks(b, blockOff, 0, oldHead); err != nil {
		return err
	}
	if oldHead != 0 {
		if err := writePrev(b, oldHead, blockOff); err != nil {
			return err
		}
	}
	return ix.setHead(class, blockOff)
}

// splice removes the free block at blockOff (with known size, prev, next)
// from its size class's list. The four cases mirror lldb.Allocator.unlink
// and original_source/mm.c's splice_block: head-only, head-with-successor,
// tail, and interior removal.
func splice(b Backend, ix *index, blockOff, size, prev, next int64) error {
	class := ix.classOf(size)
	switch {
	case prev == 0 && next == 0:
		return ix.setHead(class, 0)
	case prev == 0 && next != 0:
		if err := writePrev(b, next, 0); err != nil {
			return err
		}
		return ix.setHead(class, next)
	case prev != 0 && next == 0:
		return writeNext(b, prev, 0)
	default:
		if err := writeNext(b, prev, next); err != nil {
			return err
		}
		return writePrev(b, next, prev)
	}
}
