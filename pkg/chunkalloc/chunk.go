// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"github.com/cockroachdb/redact"

	"github.com/emberdb/ember/pkg/memsys"
	"github.com/emberdb/ember/pkg/util/cpuid"
	"github.com/emberdb/ember/pkg/util/humanizeutil"
)

// A Chunk is a lease on one contiguous memory block whose size is a power of
// two. The caller owns the block exclusively between a successful Allocate
// and the matching Release; the Release consumes the lease, after which the
// Chunk is empty and its memory must not be touched.
type Chunk struct {
	handle memsys.Handle
	size   int64
	// core is the arena the block was issued from, or will be returned to.
	// For stolen chunks this is the original owner, not the requester.
	core cpuid.CoreID
}

// Bytes returns the leased block. Its length equals Size.
func (c *Chunk) Bytes() []byte {
	return c.handle.Bytes()
}

// Size returns the chunk's size class in bytes. Always a power of two.
func (c *Chunk) Size() int64 {
	return c.size
}

// Core returns the arena the chunk is homed on.
func (c *Chunk) Core() cpuid.CoreID {
	return c.core
}

// released reports whether the lease has been consumed.
func (c *Chunk) released() bool {
	return c.handle.Empty()
}

// SafeFormat implements redact.SafeFormatter.
func (c *Chunk) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("chunk of %s on core %d", humanizeutil.IBytes(c.size), int32(c.core))
}

func (c *Chunk) String() string {
	return redact.StringWithoutMarkers(c)
}
