// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package memsys

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestHeapProviderAlloc(t *testing.T) {
	var p HeapProvider
	h, err := p.Alloc(1 << 12)
	require.NoError(t, err)
	require.Len(t, h.Bytes(), 1<<12)
	require.False(t, h.Empty())
	p.Release(h, 1<<12)
}

func TestHeapProviderAligned(t *testing.T) {
	var p HeapProvider
	for _, align := range []int64{1 << 12, 1 << 16, 1 << 20} {
		h, err := p.AllocAligned(align, align)
		require.NoError(t, err)
		require.Len(t, h.Bytes(), int(align))
		addr := uintptr(unsafe.Pointer(&h.Bytes()[0]))
		require.Zerof(t, int64(addr)%align, "block not aligned to %d", align)
		p.Release(h, align)
	}
}

func TestDefaultProviderRoundTrip(t *testing.T) {
	p := Default()
	h, err := p.Alloc(1 << 16)
	require.NoError(t, err)
	b := h.Bytes()
	require.Len(t, b, 1<<16)
	// The block must be writable over its whole length.
	b[0] = 0xab
	b[len(b)-1] = 0xcd
	p.Release(h, 1<<16)
}

func TestCountingProvider(t *testing.T) {
	p := NewCountingProvider(HeapProvider{})
	h1, err := p.Alloc(1 << 12)
	require.NoError(t, err)
	h2, err := p.AllocAligned(1<<13, 1<<13)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.Allocs())
	require.Equal(t, int64(1<<12+1<<13), p.AllocatedBytes())

	p.Release(h1, 1<<12)
	p.Release(h2, 1<<13)
	require.Equal(t, int64(2), p.Frees())
	require.Equal(t, int64(1<<12+1<<13), p.FreedBytes())
}

func TestZeroHandle(t *testing.T) {
	var h Handle
	require.True(t, h.Empty())
	require.Nil(t, h.Bytes())
}
