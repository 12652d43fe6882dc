// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package memsys

import "unsafe"

// HeapProvider allocates blocks from the Go heap. Released blocks are simply
// dropped and reclaimed by the garbage collector once the caller's Handle is
// gone. It is the portable fallback provider and the deterministic provider
// of choice in tests.
type HeapProvider struct{}

var _ Provider = HeapProvider{}

// Alloc implements Provider.
func (HeapProvider) Alloc(size int64) (Handle, error) {
	buf := make([]byte, size)
	return Handle{data: buf, raw: buf}, nil
}

// AllocAligned implements Provider. The Go runtime gives no alignment
// guarantee beyond the allocation size class, so we over-allocate by align
// and slice at the first aligned offset.
func (HeapProvider) AllocAligned(size, align int64) (Handle, error) {
	raw := make([]byte, size+align)
	addr := uintptr(unsafe.Pointer(&raw[0]))
	var off int64
	if rem := int64(addr) % align; rem != 0 {
		off = align - rem
	}
	return Handle{data: raw[off : off+size : off+size], raw: raw}, nil
}

// Release implements Provider. The GC owns reclamation.
func (HeapProvider) Release(Handle, int64) {
}
