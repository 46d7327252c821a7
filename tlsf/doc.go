// Copyright 2024 The jsmalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tlsf implements a Two-Level Segregated Fit dynamic memory
// allocator operating inside a caller-supplied contiguous byte region.
//
// Block headers live inside the region itself; the bitmaps and free-list
// heads are fields of the General or Region value, not bytes of the
// region, so no prefix of the region is reserved for them. The package
// performs no I/O, no syscalls, and holds no package-level state: every
// Allocator is independent of every other.
//
// Two configurations are provided. General is the classic TLSF allocator:
// FL×SL segregated free lists and immediate boundary-tag coalescing on
// every Free, suitable as a general-purpose allocator. Region is a
// size-optimized variant for fixed small pools: a flat 56-class map, a
// smaller per-block header, deferred coalescing via Aggregate, and
// FreeRange for releasing an arbitrary aligned sub-range of a block.
//
// tlsf is not goroutine-safe. Concurrent use of a single Allocator from
// multiple goroutines requires external synchronization; see the sibling
// malloc package for an example of wrapping one with a mutex.
package tlsf
