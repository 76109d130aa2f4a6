// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "testing"

func TestPackUnpackWord(t *testing.T) {
	for _, tc := range []struct {
		size  int64
		alloc bool
	}{
		{24, false},
		{24, true},
		{61440, true},
		{8, true},
	} {
		w := packWord(tc.size, tc.alloc)
		size, alloc := unpackWord(w)
		if size != tc.size || alloc != tc.alloc {
			t.Errorf("packWord(%d,%v) roundtrip = (%d,%v)", tc.size, tc.alloc, size, alloc)
		}
	}
}

func TestHeaderFooterRoundtrip(t *testing.T) {
	b := NewMemBackend()
	if _, err := b.Extend(64); err != nil {
		t.Fatal(err)
	}
	if err := writeHeaderFooter(b, 8, 32, true); err != nil {
		t.Fatal(err)
	}
	size, alloc, err := readHeader(b, 8)
	if err != nil {
		t.Fatal(err)
	}
	if size != 32 || !alloc {
		t.Fatalf("readHeader = (%d,%v), want (32,true)", size, alloc)
	}
	fsize, falloc, err := readFooter(b, 8, 32)
	if err != nil {
		t.Fatal(err)
	}
	if fsize != 32 || !falloc {
		t.Fatalf("readFooter = (%d,%v), want (32,true)", fsize, falloc)
	}
}

func TestPrevPhysical(t *testing.T) {
	b := NewMemBackend()
	if _, err := b.Extend(64); err != nil {
		t.Fatal(err)
	}
	// Two adjacent blocks: [8,32) size 24, [32,48) size 16.
	if err := writeHeaderFooter(b, 8, 24, false); err != nil {
		t.Fatal(err)
	}
	if err := writeHeaderFooter(b, 32, 16, true); err != nil {
		t.Fatal(err)
	}
	prevOff, prevSize, err := prevPhysical(b, 32)
	if err != nil {
		t.Fatal(err)
	}
	if prevOff != 8 || prevSize != 24 {
		t.Fatalf("prevPhysical(32) = (%d,%d), want (8,24)", prevOff, prevSize)
	}
}

func TestAligned8(t *testing.T) {
	for off := int64(0); off < 64; off++ {
		want := off%8 == 0
		if got := aligned8(off); got != want {
			t.Errorf("aligned8(%d) = %v, want %v", off, got, want)
		}
	}
}
