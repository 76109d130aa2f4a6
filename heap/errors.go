// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heap

import "fmt"

// InvalidArgError reports a domain-invalid argument passed to a Heap method
// — a negative/zero size request, or a handle outside the range a prior
// Alloc could ever have returned. It is returned by New and by this
// package's Backend implementations (a bad Extend size or an out-of-range
// ReadAt/WriteAt), and Check passes such backend errors on; the
// four public allocation operations fold this case into their conventional
// zero-handle return instead, per the client ABI described in spec §4.8/§7.
type InvalidArgError struct {
	Msg string
	Arg interface{}
}

func (e *InvalidArgError) Error() string {
	return fmt.Sprintf("segalloc: invalid argument: %s (%v)", e.Msg, e.Arg)
}

// CorruptKind classifies a structural invariant violation found by
// Heap.Check. These are diagnostic only — Check does not attempt repair,
// matching spec §7/§9's failure semantics ("a detected invariant violation
// is a bug, not a recoverable condition").
type CorruptKind int

const (
	_ CorruptKind = iota
	ErrHeaderFooterMismatch
	ErrAdjacentFreeBlocks
	ErrMisalignedBlock
	ErrBadPrologue
	ErrBadEpilogue
	ErrFreeListWrongClass
	ErrFreeListBadLink
	ErrFreeListLost
	ErrRegionSizeNotMultiple
)

func (k CorruptKind) String() string {
	switch k {
	case ErrHeaderFooterMismatch:
		return "header does not match footer"
	case ErrAdjacentFreeBlocks:
		return "adjacent free blocks"
	case ErrMisalignedBlock:
		return "payload not 8-byte aligned"
	case ErrBadPrologue:
		return "malformed prologue"
	case ErrBadEpilogue:
		return "malformed epilogue"
	case ErrFreeListWrongClass:
		return "free block in wrong size-class list"
	case ErrFreeListBadLink:
		return "free list prev/next link inconsistent"
	case ErrFreeListLost:
		return "free block found by scan but absent from the lists, or listed but not found by scan"
	case ErrRegionSizeNotMultiple:
		return "block size is not a positive multiple of 8"
	default:
		return "unknown corruption kind"
	}
}

// CorruptError reports one structural invariant violation found while
// walking the region or a free list. Off is the byte offset of the
// offending block (relative to the start of the block region, i.e. an
// Addr-shaped value); Arg carries kind-specific detail.
type CorruptError struct {
	Kind CorruptKind
	Off  int64
	Arg  int64
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("segalloc: corrupt heap: %s at offset %#x (arg %d)", e.Kind, e.Off, e.Arg)
}

// ErrBackendExhausted is returned by New when the backend refuses the
// initial extensions acquiring the index header and prologue/epilogue.
var ErrBackendExhausted = fmt.Errorf("segalloc: backend refused to extend region")
