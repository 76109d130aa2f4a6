// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "fmt"

// A Backend is the host memory backend spec §6 describes: a single,
// contiguous, monotonically growable byte region. Extend is the only way
// the region ever changes size; nothing ever shrinks it (spec §1's
// Non-goals exclude releasing memory back to the backend). A Backend is
// not safe for concurrent use, matching spec §5 — like lldb's Filer, it is
// meant to be driven by one goroutine (or externally serialized).
type Backend interface {
	// Extend grows the region by exactly n bytes, where n is guaranteed
	// by the caller to be a multiple of 8, and returns the offset of the
	// first newly added byte. It returns an error if the backend cannot
	// or will not grow (spec §6's "failure" case — backend exhaustion).
	Extend(n int64) (int64, error)

	// Size reports the current region size in bytes; region bounds are
	// therefore always [0, Size()).
	Size() int64

	// ReadAt and WriteAt address the region like io.ReaderAt/io.WriterAt.
	// off+len(p) must not exceed Size().
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
}

// MemBackend is an in-process Backend over a growable []byte. It is the
// default backend used by New when no Backend is supplied, and the one
// every Heap test in this package drives — the segalloc analogue of lldb's
// MemFiler, simplified from MemFiler's paged map[int64]*[pgSize]byte
// scheme to a single contiguous slice: unlike a Filer standing in for a
// possibly-sparse on-disk file, a MemBackend models real process memory,
// which is never sparse and never hole-punched (spec.md has no PunchHole
// analogue), so the paging indirection buys nothing here.
type MemBackend struct {
	buf []byte
}

// NewMemBackend returns an empty MemBackend.
func NewMemBackend() *MemBackend { return &MemBackend{} }

func (m *MemBackend) Extend(n int64) (int64, error) {
	if n < 0 || n%8 != 0 {
		return 0, &InvalidArgError{"MemBackend.Extend: n must be a non-negative multiple of 8", n}
	}
	off := int64(len(m.buf))
	m.buf = append(m.buf, make([]byte, n)...)
	return off, nil
}

func (m *MemBackend) Size() int64 { return int64(len(m.buf)) }

func (m *MemBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.buf)) {
		return 0, &InvalidArgError{"MemBackend.ReadAt: out of range", fmt.Sprintf("off=%d len=%d size=%d", off, len(p), len(m.buf))}
	}
	return copy(p, m.buf[off:off+int64(len(p))]), nil
}

func (m *MemBackend) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(m.buf)) {
		return 0, &InvalidArgError{"MemBackend.WriteAt: out of range", fmt.Sprintf("off=%d len=%d size=%d", off, len(p), len(m.buf))}
	}
	return copy(m.buf[off:off+int64(len(p))], p), nil
}

// innerBackend is a Backend with an additive offset applied to every
// access, the segalloc analogue of lldb's InnerFiler: it lets the
// segregated index header (the first indexSize bytes of the outer
// Backend) and the block region share one underlying Backend while the
// block region addresses itself from zero, exactly as InnerFiler lets
// lldb's on-disk FLT header and the block region share one Filer.
type innerBackend struct {
	outer Backend
	shift int64
}

func newInnerBackend(outer Backend, shift int64) *innerBackend {
	return &innerBackend{outer: outer, shift: shift}
}

func (f *innerBackend) Extend(n int64) (int64, error) {
	off, err := f.outer.Extend(n)
	if err != nil {
		return 0, err
	}
	return off - f.shift, nil
}

func (f *innerBackend) Size() int64 {
	n := f.outer.Size() - f.shift
	if n < 0 {
		return 0
	}
	return n
}

func (f *innerBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &InvalidArgError{"innerBackend.ReadAt: negative offset", off}
	}
	return f.outer.ReadAt(p, f.shift+off)
}

func (f *innerBackend) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &InvalidArgError{"innerBackend.WriteAt: negative offset", off}
	}
	return f.outer.WriteAt(p, f.shift+off)
}
