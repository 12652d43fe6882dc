// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import "sync"

// The process-wide allocator. Init must run during startup, before any
// goroutine calls Default; that ordering is a precondition, not something
// enforced with synchronization on the read path.
var global struct {
	once sync.Once
	a    *Allocator
}

// Init constructs the process-wide allocator with the given reservation
// limit and default settings. It must be called exactly once; calling it
// again, or using Default before it, panics.
func Init(reserveLimit int64) {
	InitWithConfig(Config{ReserveLimit: reserveLimit})
}

// InitWithConfig is Init with a full Config.
func InitWithConfig(cfg Config) {
	initialized := false
	global.once.Do(func() {
		a, err := New(cfg)
		if err != nil {
			panic(err)
		}
		global.a = a
		initialized = true
	})
	if !initialized {
		panic("chunkalloc.Init called more than once")
	}
}

// Default returns the process-wide allocator.
func Default() *Allocator {
	if global.a == nil {
		panic("chunkalloc.Init must be called before Default")
	}
	return global.a
}
