// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

func TestMemBackendExtend(t *testing.T) {
	b := NewMemBackend()
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

func TestMemBackendReadWriteAt(t *testing.T) {
	b := NewMemBackend()
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
}

func TestInnerBackendShift(t *testing.T) {
	outer := NewMemBackend()
	if _, err := outer.Extend(112); err != nil {
		t.Fatal(err)
	}
	inner := newInnerBackend(outer, 112)
	if inner.Size() != 0 {
		t.Fatalf("inner.Size() = %d, want 0", inner.Size())
	}

	off, err := inner.Extend(16)
	if err != nil {
		t.Fatal(err)
	}
	if off != 0 {
		t.Fatalf("inner.Extend offset = %d, want 0", off)
	}
	if outer.Size() != 128 {
		t.Fatalf("outer.Size() = %d, want 128", outer.Size())
	}

	if _, err := inner.WriteAt([]byte{9, 9}, 0); err != nil {
		t.Fatal(err)
	}
	got := make([]byte, 2)
	if _, err := outer.ReadAt(got, 112); err != nil {
		t.Fatal(err)
	}
	if got[0] != 9 || got[1] != 9 {
		t.Fatalf("outer bytes at shifted offset = %v, want [9 9]", got)
	}
}
