// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

//go:build !linux

package cpuid

// getcpu has no portable implementation outside linux; shard by goroutine ID
// instead.
func getcpu() int32 {
	return fallbackID()
}
