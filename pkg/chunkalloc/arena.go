// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"github.com/emberdb/ember/pkg/memsys"
	"github.com/emberdb/ember/pkg/util/cpuid"
	"github.com/emberdb/ember/pkg/util/syncutil"
)

// arena caches free blocks for one core, bucketed by size class. Each free
// list is LIFO so that the most recently released, cache-hot block is reused
// first.
//
// All cross-arena policy (stealing, the reservation limit) lives in the
// Allocator; the arena only guards its own lists. Distinct arenas never
// share a lock, so goroutines operating on their own core's arena do not
// contend with goroutines on other cores.
type arena struct {
	core cpuid.CoreID

	mu struct {
		syncutil.Mutex
		free        [numSizeClasses][]memsys.Handle
		cachedBytes int64
	}
}

func newArena(core cpuid.CoreID) *arena {
	return &arena{core: core}
}

// tryTake pops one free block of the given size class, if present.
func (a *arena) tryTake(idx int) (memsys.Handle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	list := a.mu.free[idx]
	n := len(list)
	if n == 0 {
		return memsys.Handle{}, false
	}
	h := list[n-1]
	list[n-1] = memsys.Handle{}
	a.mu.free[idx] = list[:n-1]
	a.mu.cachedBytes -= classSize(idx)
	return h, true
}

// give pushes a free block onto the given size class list.
func (a *arena) give(idx int, h memsys.Handle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.mu.free[idx] = append(a.mu.free[idx], h)
	a.mu.cachedBytes += classSize(idx)
}

// cachedBytes returns this arena's local tally. Diagnostic only; the global
// reservation heuristics use the allocator's atomic counter.
func (a *arena) cachedBytes() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mu.cachedBytes
}

// drain releases every cached block to the provider and returns the number
// of bytes freed. Called at allocator teardown.
func (a *arena) drain(p memsys.Provider) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var freed int64
	for idx := range a.mu.free {
		size := classSize(idx)
		for _, h := range a.mu.free[idx] {
			p.Release(h, size)
			freed += size
		}
		a.mu.free[idx] = nil
	}
	a.mu.cachedBytes -= freed
	return freed
}
