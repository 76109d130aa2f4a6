// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package heap

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// MmapBackend is a Backend over an anonymous memory mapping grown in
// place with mremap(2) — the modern replacement for sbrk(2), and the
// literal "host memory backend" spec.md §6 describes. It is the
// domain-stack sibling of MemBackend, repurposing the role lldb.OSFiler
// plays alongside lldb.MemFiler: a real-OS-backed implementation of the
// same interface the in-process one satisfies.
//
// MmapBackend is not safe for concurrent use, same as MemBackend and the
// Heap built on top of it.
type MmapBackend struct {
	data []byte // mmap'd region, len(data) == capacity, not current size
	size int64  // logical size in use
	cap  int64  // bytes currently mapped
}

// initialMmapCap is the first mapping size reserved; growth beyond it
// reallocates via unix.Mremap with MREMAP_MAYMOVE, same as Go's own
// runtime growing its arena in larger steps than any one request needs.
const initialMmapCap = 1 << 20 // 1 MiB

// NewMmapBackend reserves an anonymous, zero-length-in-use mapping ready
// to be grown by Extend.
func NewMmapBackend() (*MmapBackend, error) {
	data, err := unix.Mmap(-1, 0, initialMmapCap, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("segalloc: mmap: %w", err)
	}
	return &MmapBackend{data: data, cap: initialMmapCap}, nil
}

func (m *MmapBackend) Extend(n int64) (int64, error) {
	if n < 0 || n%8 != 0 {
		return 0, &InvalidArgError{"MmapBackend.Extend: n must be a non-negative multiple of 8", n}
	}
	off := m.size
	need := m.size + n
	if need > m.cap {
		newCap := m.cap * 2
		for newCap < need {
			newCap *= 2
		}
		grown, err := unix.Mremap(m.data, int(newCap), unix.MREMAP_MAYMOVE)
		if err != nil {
			return 0, fmt.Errorf("segalloc: mremap: %w", err)
		}
		m.data = grown
		m.cap = newCap
	}
	m.size = need
	return off, nil
}

func (m *MmapBackend) Size() int64 { return m.size }

func (m *MmapBackend) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > m.size {
		return 0, &InvalidArgError{"MmapBackend.ReadAt: out of range", fmt.Sprintf("off=%d len=%d size=%d", off, len(p), m.size)}
	}
	return copy(p, m.data[off:off+int64(len(p))]), nil
}

func (m *MmapBackend) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > m.size {
		return 0, &InvalidArgError{"MmapBackend.WriteAt: out of range", fmt.Sprintf("off=%d len=%d size=%d", off, len(p), m.size)}
	}
	return copy(m.data[off:off+int64(len(p))], p), nil
}

// Close releases the underlying mapping. It is the caller's
// responsibility to drop all Heap/Addr use of the backend first;
// spec.md's Non-goals exclude releasing memory back to the backend
// during normal operation, but the process-level mapping itself still
// needs a teardown path.
func (m *MmapBackend) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}
