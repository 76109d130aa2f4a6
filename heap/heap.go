// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package heap implements a general-purpose dynamic memory allocator atop
// a single, monotonically extensible byte region supplied by a Backend.
//
// The design is a segregated free-list index (14 size classes) over
// boundary-tagged blocks, giving O(1) physical-neighbor coalescing on
// free, and a bounded best-fit/first-fit hybrid search (a window of at
// most searchWindow candidates per class) when placing a new allocation.
// It is the direct analogue, at the byte-offset level, of lldb.Allocator's
// FLT-indexed, boundary-tag block store — generalized from lldb's 16-byte
// atom/compressed-content block model to plain fixed-overhead blocks of
// opaque client memory, and from a Filer (a possibly on-disk, sparse,
// transactional store) to Backend (a flat growable byte slice with no
// durability or transaction semantics; see spec's Non-goals).
//
// A Heap is not safe for concurrent use without external synchronization,
// the same contract lldb's Filer and Allocator document for themselves.
package heap

import (
	"github.com/cznic/mathutil"
)

// Addr is a byte offset into the block region (not the raw Backend —
// the region excludes the index header), used as the client-facing
// "pointer" spec.md describes. Addr(0) is reserved: it lies in the 4
// bytes of alignment padding ahead of the immovable prologue block (whose
// header is at prologueOff) and is never returned by Alloc nor a valid
// free-list link, so it doubles as the conventional "no block" sentinel,
// exactly as a nil handle does in lldb.
type Addr int64

// Config holds the tunables spec.md's §6 names as compile-time constants,
// following dbm.Options's pattern of a plain struct of named fields
// passed to the constructor rather than a functional-options API.
type Config struct {
	// ChunkSize is the minimum number of bytes requested from the
	// Backend on each extension (spec.md's CHUNKSIZE). Must be a
	// positive multiple of 8. Zero selects DefaultChunkSize.
	ChunkSize int64

	// SearchWindow records spec.md's K, the best-fit scan window. Zero
	// selects the default of 9. The value is stored in the Heap's Config
	// but the fit searcher does not read it: scanClass always uses the
	// searchWindow constant (9).
	SearchWindow int

	// ClassBounds overrides the 13 finite size-class upper bounds. Nil
	// selects the spec-mandated default table in classes.go.
	ClassBounds *[numClasses - 1]int64

	// WarmUp requests an initial ChunkSize extension during New, before
	// any client call (mirrors mm_init's unconditional warm-up extend;
	// see SPEC_FULL.md §7). Defaults to true via NewConfig.
	WarmUp bool
}

// DefaultChunkSize is spec.md's CHUNKSIZE: the minimum growth per
// Backend.Extend call, chosen (per original_source/mm.c, whose comment
// records 672/512/256 scoring 91% utilization against its trace set) as
// a size that amortizes extension cost against typical small-object
// workloads.
const DefaultChunkSize = 672

// NewConfig returns the spec-mandated default Config.
func NewConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		SearchWindow: searchWindow,
		WarmUp:       true,
	}
}

func (c Config) normalize() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	} else {
		c.ChunkSize = roundUp8(c.ChunkSize)
	}
	if c.SearchWindow <= 0 {
		c.SearchWindow = searchWindow
	}
	return c
}

// Heap is an allocator instance over one Backend. The zero value is not
// usable; construct with New.
type Heap struct {
	region      *innerBackend // block-region view of backend, offset by indexSize
	index       *index
	cfg         Config
	prologueEnd int64 // offset one past the prologue block's footer
	epilogueOff int64 // offset of the current epilogue word
}

// New initializes a fresh Heap over backend, which must be empty
// (Size() == 0) — spec.md's region bootstrap runs exactly once, the same
// contract lldb.NewAllocator documents for a freshly truncated Filer. A
// non-empty backend cannot currently be reopened (spec.md's Non-goals
// exclude persistence across a process restart); use a new backend.
func New(backend Backend, cfg Config) (*Heap, error) {
	if backend == nil {
		backend = NewMemBackend()
	}
	if backend.Size() != 0 {
		return nil, &InvalidArgError{"New: backend must be empty", backend.Size()}
	}
	cfg = cfg.normalize()

	bounds := classBounds
	if cfg.ClassBounds != nil {
		bounds = *cfg.ClassBounds
	}

	if _, err := backend.Extend(indexSize); err != nil {
		return nil, ErrBackendExhausted
	}
	region := newInnerBackend(backend, indexSize)
	ix := &index{outer: backend, bounds: bounds}

	// Bootstrap: 4 bytes padding, an 8-byte allocated prologue
	// (header==footer, size==prologueSize), and a zero-size allocated
	// epilogue word — the region-local analogue of mm_init's
	// mem_sbrk(4*WSIZE) heap_listp setup.
	if _, err := region.Extend(prologueOff + prologueSize + wordSize); err != nil {
		return nil, ErrBackendExhausted
	}
	if err := writeHeaderFooter(region, prologueOff, prologueSize, true); err != nil {
		return nil, err
	}
	epilogueOff := prologueOff + prologueSize
	if err := writeEpilogue(region, epilogueOff); err != nil {
		return nil, err
	}

	h := &Heap{
		region:      region,
		index:       ix,
		cfg:         cfg,
		prologueEnd: epilogueOff,
		epilogueOff: epilogueOff,
	}

	if cfg.WarmUp {
		off, size, err := h.extend(cfg.ChunkSize)
		if err != nil {
			return nil, err
		}
		// extend already inserts into the index; nothing further to do,
		// but retain the values to make the warm-up block's provenance
		// explicit in a debugger.
		_, _ = off, size
	}
	return h, nil
}

// blockSize returns the 8-aligned total block size (header+payload+footer)
// needed to hold n client bytes, with a minimum of minBlockSize.
func blockSize(n int) int64 {
	need := roundUp8(int64(n) + allocOverhead)
	if need < minBlockSize {
		need = minBlockSize
	}
	return need
}

// Alloc returns the offset of a newly allocated block able to hold at
// least n bytes, or 0 if n is not positive or the backend cannot be
// extended far enough to satisfy the request (spec.md §4.8's "failure is
// a conventional zero return, not an error").
func (h *Heap) Alloc(n int) Addr {
	if n <= 0 {
		return 0
	}
	asize := blockSize(n)

	off, size, ok, err := fit(h.region, h.index, asize)
	if err != nil {
		return 0
	}
	if !ok {
		off, size, err = h.extend(asize)
		if err != nil {
			return 0
		}
		// extend's coalesced result is already linked into the index;
		// splice it back out before placing, mirroring mm.c's
		// find_fit-miss path of extend_heap followed immediately by
		// place on the freshly extended block.
		_, next, lerr := readLinks(h.region, off)
		if lerr != nil {
			return 0
		}
		if serr := splice(h.region, h.index, off, size, 0, next); serr != nil {
			// Best-effort: a prev!=0 case can't happen for a block that
			// was just LIFO-inserted as a fresh head by extend/coalesce.
			return 0
		}
	}

	if err := place(h.region, h.index, off, size, asize, h.prologueEnd, h.epilogueOff); err != nil {
		return 0
	}
	return Addr(off)
}

// Free releases the block at addr, coalescing it with any free physical
// neighbors. Freeing an already-free block, an invalid addr, or Addr(0)
// is a caller bug; like lldb.Allocator.Free on an inconsistent handle, the
// call does not panic. Addr(0) or a negative addr, an addr past the end of
// the region, and an addr whose header word is marked free are ignored;
// an addr that is not the start of a block is not detected, and its word
// is treated as a block header.
func (h *Heap) Free(addr Addr) {
	if addr <= 0 {
		return
	}
	off := int64(addr)
	size, alloc, err := readHeader(h.region, off)
	if err != nil || !alloc {
		return
	}
	if err := writeHeaderFooter(h.region, off, size, false); err != nil {
		return
	}
	_, _, _ = coalesce(h.region, h.index, off, size, h.prologueEnd, h.epilogueOff)
}

// Realloc resizes the block at addr to hold at least n bytes, preserving
// its content up to the smaller of the old and new sizes. It is the
// naive allocate-copy-free translation of original_source/mm.c's realloc
// (spec.md §4.8 flags the in-place-grow opportunity as a known weakness,
// but does not redesign it — see DESIGN.md's Open Questions). Addr(0)
// with n>0 behaves as Alloc(n); n<=0 behaves as Free(addr) and returns 0.
func (h *Heap) Realloc(addr Addr, n int) Addr {
	if addr == 0 {
		return h.Alloc(n)
	}
	if n <= 0 {
		h.Free(addr)
		return 0
	}

	oldOff := int64(addr)
	oldSize, alloc, err := readHeader(h.region, oldOff)
	if err != nil || !alloc {
		return 0
	}
	oldPayload := oldSize - allocOverhead

	newAddr := h.Alloc(n)
	if newAddr == 0 {
		return 0
	}

	copyLen := mathutil.MinInt64(oldPayload, int64(n))
	if copyLen > 0 {
		buf := make([]byte, copyLen)
		if _, err := h.region.ReadAt(buf, payloadOff(oldOff)); err != nil {
			h.Free(newAddr)
			return 0
		}
		if _, err := h.region.WriteAt(buf, payloadOff(int64(newAddr))); err != nil {
			h.Free(newAddr)
			return 0
		}
	}
	h.Free(addr)
	return newAddr
}

// Calloc allocates space for nmemb elements of size bytes each and zeroes
// it, returning 0 if nmemb*size overflows, either argument is not
// positive, or the underlying Alloc fails (DESIGN.md's Open Questions:
// mm.c's calloc leaves both cases undefined; Calloc resolves "undefined"
// to "defined as failure" rather than risking a nil-payload memset).
func (h *Heap) Calloc(nmemb, size int) Addr {
	if nmemb <= 0 || size <= 0 {
		return 0
	}
	total := int64(nmemb) * int64(size)
	if total <= 0 || total/int64(size) != int64(nmemb) {
		return 0
	}
	if total > int64(int(^uint(0)>>1)) {
		return 0
	}

	addr := h.Alloc(int(total))
	if addr == 0 {
		return 0
	}
	zero := make([]byte, total)
	if _, err := h.region.WriteAt(zero, payloadOff(int64(addr))); err != nil {
		h.Free(addr)
		return 0
	}
	return addr
}

// Size reports how many payload bytes the block at addr can hold. It
// returns 0 for addr == 0 or an address that is not a currently allocated
// block's start.
func (h *Heap) Size(addr Addr) int {
	if addr <= 0 {
		return 0
	}
	size, alloc, err := readHeader(h.region, int64(addr))
	if err != nil || !alloc {
		return 0
	}
	return int(size - allocOverhead)
}
