// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build linux

package heap

import "testing"

func TestMmapBackendExtend(t *testing.T) {
	b, err := NewMmapBackend()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	off, err := b.Extend(16)
	if err != nil {
		t.Fatal(err)
	}
	if off != 0 {
		t.Fatalf("first Extend offset = %d, want 0", off)
	}
	off, err = b.Extend(8)
	if err != nil {
		t.Fatal(err)
	}
	if off != 16 {
		t.Fatalf("second Extend offset = %d, want 16", off)
	}
	if b.Size() != 24 {
		t.Fatalf("Size() = %d, want 24", b.Size())
	}

	if _, err := b.Extend(3); err == nil {
		t.Fatal("Extend(3): expected error for non-multiple-of-8 size")
	}
}

func TestMmapBackendReadWriteAt(t *testing.T) {
	b, err := NewMmapBackend()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err := b.Extend(16); err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 2, 3, 4}
	if _, err := b.WriteAt(want, 8); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 4)
	if _, err := b.ReadAt(got, 8); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadAt = %v, want %v", got, want)
		}
	}

	if _, err := b.ReadAt(make([]byte, 4), 20); err == nil {
		t.Fatal("ReadAt past end: expected error")
	}
	if _, err := b.WriteAt(make([]byte, 4), 20); err == nil {
		t.Fatal("WriteAt past end: expected error")
	}
}

// TestMmapBackendGrowsPastInitialCap forces at least one unix.Mremap by
// extending well beyond initialMmapCap, and checks the mapping still reads
// back what was written before the move.
func TestMmapBackendGrowsPastInitialCap(t *testing.T) {
	b, err := NewMmapBackend()
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	off, err := b.Extend(initialMmapCap)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{9, 9, 9, 9}
	if _, err := b.WriteAt(want, off); err != nil {
		t.Fatal(err)
	}

	if _, err := b.Extend(initialMmapCap * 2); err != nil {
		t.Fatal(err)
	}
	if b.cap < initialMmapCap*3 {
		t.Fatalf("cap = %d, want at least %d after growth", b.cap, initialMmapCap*3)
	}

	got := make([]byte, 4)
	if _, err := b.ReadAt(got, off); err != nil {
		t.Fatal(err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ReadAt after regrow = %v, want %v", got, want)
		}
	}
}

func TestMmapBackendClose(t *testing.T) {
	b, err := NewMmapBackend()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.Extend(16); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
	// Closing twice must be a no-op, not a double-munmap.
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}
}
