// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package memsys abstracts the raw system memory supply behind a narrow
// Provider interface. Callers obtain opaque Handles to contiguous blocks and
// must return every Handle to the Provider that issued it; nothing here is
// reclaimed automatically.
package memsys

// A Handle references one raw memory block obtained from a Provider. The
// zero Handle references nothing. A Handle must be released exactly once,
// to the Provider that issued it.
type Handle struct {
	// data is the caller-visible region.
	data []byte
	// raw is the underlying reservation. It can be larger than data when the
	// block was over-allocated to satisfy an alignment request, and it is
	// what gets returned to the system on release.
	raw []byte
}

// Bytes returns the usable region of the block.
func (h Handle) Bytes() []byte {
	return h.data
}

// Empty reports whether the handle references no memory.
func (h Handle) Empty() bool {
	return h.data == nil
}

// MakeHandle builds a Handle over a caller-supplied buffer. It exists for
// providers and tests; the data region is the whole buffer.
func MakeHandle(buf []byte) Handle {
	return Handle{data: buf, raw: buf}
}

// Provider supplies and reclaims raw memory blocks.
//
// Implementations must be safe for concurrent use. Alloc and AllocAligned
// fail only on genuine resource exhaustion; size validation is the caller's
// job.
type Provider interface {
	// Alloc returns a block of exactly size bytes with no alignment promise
	// beyond the platform default.
	Alloc(size int64) (Handle, error)

	// AllocAligned returns a block of exactly size bytes whose first byte is
	// aligned to align, which must be a power of two.
	AllocAligned(size, align int64) (Handle, error)

	// Release returns a block to the system. size must equal the size the
	// block was allocated with; it is passed through for accounting.
	Release(h Handle, size int64)
}
