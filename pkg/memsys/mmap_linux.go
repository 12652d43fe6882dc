// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

//go:build linux

package memsys

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

// MmapProvider allocates blocks with anonymous private mappings, bypassing
// the Go heap so that released blocks go back to the kernel immediately
// instead of waiting for a GC cycle.
type MmapProvider struct{}

var _ Provider = MmapProvider{}

// Alloc implements Provider.
func (MmapProvider) Alloc(size int64) (Handle, error) {
	buf, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return Handle{}, errors.Wrapf(err, "mmap of %d bytes failed", size)
	}
	return Handle{data: buf, raw: buf}, nil
}

// AllocAligned implements Provider. Mappings are page-aligned; for larger
// alignments we over-map by align and expose the first aligned sub-slice.
// The whole mapping is retained in the handle and unmapped on release.
func (p MmapProvider) AllocAligned(size, align int64) (Handle, error) {
	if align <= int64(unix.Getpagesize()) {
		return p.Alloc(size)
	}
	raw, err := unix.Mmap(-1, 0, int(size+align),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return Handle{}, errors.Wrapf(err, "mmap of %d bytes failed", size+align)
	}
	addr := uintptr(unsafe.Pointer(&raw[0]))
	var off int64
	if rem := int64(addr) % align; rem != 0 {
		off = align - rem
	}
	return Handle{data: raw[off : off+size : off+size], raw: raw}, nil
}

// Release implements Provider.
func (MmapProvider) Release(h Handle, _ int64) {
	if h.raw == nil {
		return
	}
	// Munmap must see the exact slice returned by Mmap.
	_ = unix.Munmap(h.raw)
}

// Default returns the provider used when a caller does not supply one.
func Default() Provider {
	return MmapProvider{}
}
