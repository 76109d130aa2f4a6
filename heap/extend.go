// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

// extend grows the block region by at least `need` bytes (rounded up to
// chunkSize, per spec §4.7 / original_source/mm.c's extend_heap), recycles
// the old epilogue word as the header of the new free block, writes a
// fresh epilogue at the new end, coalesces the new extent with whatever
// free block precedes it, and returns the (possibly coalesced) free
// block's offset and size.
func (h *Heap) extend(need int64) (int64, int64, error) {
	grow := h.cfg.ChunkSize
	if need > grow {
		grow = roundUp8(need)
	}

	oldEpilogue := h.epilogueOff
	newOff, err := h.region.Extend(grow)
	if err != nil {
		return 0, 0, ErrBackendExhausted
	}
	if newOff != oldEpilogue+wordSize {
		return 0, 0, &CorruptError{Kind: ErrBadEpilogue, Off: newOff, Arg: oldEpilogue}
	}

	// The old epilogue's word is reused in place as the new free block's
	// header (no new byte needed for it); the newly extended bytes hold
	// the rest of the block plus a fresh epilogue word at the very end.
	blockSize := grow
	if err := writeHeaderFooter(h.region, oldEpilogue, blockSize, false); err != nil {
		return 0, 0, err
	}
	h.epilogueOff = oldEpilogue + blockSize
	if err := writeEpilogue(h.region, h.epilogueOff); err != nil {
		return 0, 0, err
	}

	return coalesce(h.region, h.index, oldEpilogue, blockSize, h.prologueEnd, h.epilogueOff)
}

// roundUp8 rounds n up to the nearest multiple of 8.
func roundUp8(n int64) int64 { return (n + 7) &^ 7 }

func writeEpilogue(b Backend, off int64) error {
	var buf [wordSize]byte
	putWord(buf[:], packWord(0, true))
	_, err := b.WriteAt(buf[:], off)
	return err
}
