// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "encoding/binary"

// Block layout constants (spec §3). A block is a header word, payload
// bytes, and a footer word; a free block's payload additionally starts
// with two link fields. Header and footer are each a 4-byte
// (size|alloc) word, the alloc bit in bit 0; links are 8-byte absolute offsets into the block
// region. All sizes are multiples of 8.
const (
	wordSize      = 4 // header/footer word width
	linkSize      = 8 // prev_free / next_free field width
	allocOverhead = wordSize * 2
	freeOverhead  = wordSize*2 + linkSize*2
	minBlockSize  = freeOverhead // 24 — spec §3's minimum, allocated or free

	// prologueOff is the header offset of the immovable prologue block:
	// 4 bytes of alignment padding precede it so that prologueOff+4 (its
	// footer, and every subsequent header-plus-4) lands on an 8-byte
	// boundary, per spec §3.
	prologueOff  = 4
	prologueSize = allocOverhead // 8
)

// packWord encodes (size, alloc) into the 4-byte header/footer word
// representation: size in the high bits, the allocation bit in bit 0 — the
// low 3 bits of size are otherwise always zero since every size is
// 8-aligned, per spec §4.1.
func packWord(size int64, alloc bool) uint32 {
	w := uint32(size)
	if alloc {
		w |= 1
	}
	return w
}

func unpackWord(w uint32) (size int64, alloc bool) {
	return int64(w &^ 1), w&1 != 0
}

func getWord(b []byte) uint32    { return binary.BigEndian.Uint32(b) }
func putWord(b []byte, w uint32) { binary.BigEndian.PutUint32(b, w) }

func getLink(b []byte) int64    { return int64(binary.BigEndian.Uint64(b)) }
func putLink(b []byte, v int64) { binary.BigEndian.PutUint64(b, uint64(v)) }

// readHeader returns (size, alloc) of the block whose header starts at off.
func readHeader(b Backend, off int64) (size int64, alloc bool, err error) {
	var buf [wordSize]byte
	if _, err = b.ReadAt(buf[:], off); err != nil {
		return 0, false, err
	}
	size, alloc = unpackWord(getWord(buf[:]))
	return
}

// footerOff returns the offset of the footer word of a block of size
// `size` starting at off.
func footerOff(off, size int64) int64 { return off + size - wordSize }

// readFooter returns (size, alloc) of the block whose header is at off and
// whose total size is `size` (used when size is already known, e.g. from
// the header).
func readFooter(b Backend, off, size int64) (fsize int64, falloc bool, err error) {
	var buf [wordSize]byte
	if _, err = b.ReadAt(buf[:], footerOff(off, size)); err != nil {
		return 0, false, err
	}
	fsize, falloc = unpackWord(getWord(buf[:]))
	return
}

// writeHeaderFooter writes identical header and footer words for a block
// of the given size starting at off.
func writeHeaderFooter(b Backend, off, size int64, alloc bool) error {
	var buf [wordSize]byte
	putWord(buf[:], packWord(size, alloc))
	if _, err := b.WriteAt(buf[:], off); err != nil {
		return err
	}
	_, err := b.WriteAt(buf[:], footerOff(off, size))
	return err
}

// nextPhysical returns the header offset of the block physically following
// the block of size `size` starting at off.
func nextPhysical(off, size int64) int64 { return off + size }

// prevPhysical returns the header offset and size of the block physically
// preceding the block at off, by reading the preceding footer word — the
// O(1) trick boundary tags exist for (spec §4.1). Must not be called for
// off == prologueOff (the prologue has no physical predecessor).
func prevPhysical(b Backend, off int64) (prevOff, prevSize int64, err error) {
	var buf [wordSize]byte
	if _, err = b.ReadAt(buf[:], off-wordSize); err != nil {
		return 0, 0, err
	}
	prevSize, _ = unpackWord(getWord(buf[:]))
	return off - prevSize, prevSize, nil
}

// aligned8 reports whether off is 8-byte aligned.
func aligned8(off int64) bool { return off&7 == 0 }
