// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package cpuid reports the logical CPU topology used to shard per-core data
// structures. The core count is captured once, at first use, and never
// changes afterwards; callers size their per-core state from NumCores and
// index it with Current.
package cpuid

import (
	"runtime"

	"github.com/petermattis/goid"
)

// CoreID identifies one logical CPU in [0, NumCores). Values returned by
// Current are always in range, even if the OS reports a CPU outside the
// topology captured at startup.
type CoreID int32

var numCores = int32(runtime.NumCPU())

// NumCores returns the number of logical CPUs detected at startup.
func NumCores() int {
	return int(numCores)
}

// Current returns the core the calling goroutine is most likely running on.
// The result is a scheduling hint, not a guarantee: the goroutine can migrate
// at any preemption point. Callers use it to pick a shard with good cache
// affinity, never for correctness.
func Current() CoreID {
	c := getcpu()
	if c < 0 || c >= numCores {
		c = c % numCores
		if c < 0 {
			c += numCores
		}
	}
	return CoreID(c)
}

// fallbackID derives a stable shard for the calling goroutine when the OS
// cannot report the current CPU. Goroutine IDs are assigned sequentially, so
// the modulus spreads concurrent goroutines evenly across cores.
func fallbackID() int32 {
	return int32(goid.Get() % int64(numCores))
}
