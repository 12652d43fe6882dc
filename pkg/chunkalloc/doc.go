// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

/*
Package chunkalloc recycles power-of-two-sized memory blocks for the
execution engine, avoiding repeated system allocation on hot paths.

The Allocator keeps one arena per CPU core. An allocation is served from the
calling goroutine's local arena when possible, so concurrently running
goroutines on different cores never contend on a lock. When the local arena
has nothing cached for the requested size class, and enough memory is cached
globally, the allocator steals a block from a peer arena; failing that, it
falls back to the system memory provider.

The allocator caches freed chunks up to a configured reservation limit.
Above the limit, released chunks go straight back to the system. The limit
is a soft cap enforced against a single atomic counter: concurrent
check-then-act races can overshoot it transiently, bounded by the in-flight
chunks, and the counter converges once operations quiesce. With a limit of
zero the allocator degenerates to allocating directly from the system.

A Chunk is a lease: the caller owns the block between Allocate and the
matching Release, and the Release consumes the lease. Chunks stolen from a
peer arena stay tagged with their original owner core, and their release
routes them back there, so memory does not migrate between cores over time.

Most processes build a single Allocator during startup, via Init, and share
it through Default. Tests build isolated instances with New.
*/
package chunkalloc
