// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux

package main

import (
	"fmt"

	"github.com/shubhitms/segalloc/heap"
)

// newBackend constructs the Backend named by kind. "mmap" is unavailable
// outside linux — heap.MmapBackend is built only under the linux tag.
func newBackend(kind string) (heap.Backend, error) {
	switch kind {
	case "", "mem":
		return heap.NewMemBackend(), nil
	case "mmap":
		return nil, fmt.Errorf("segalloc-trace: -backend=mmap requires linux")
	default:
		return nil, fmt.Errorf("segalloc-trace: unknown -backend %q (want mem or mmap)", kind)
	}
}
