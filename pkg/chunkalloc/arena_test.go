// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emberdb/ember/pkg/memsys"
)

func TestArenaLIFO(t *testing.T) {
	a := newArena(0)
	idx := classIndex(4 << 10)

	bufs := make([][]byte, 3)
	for i := range bufs {
		bufs[i] = make([]byte, 4<<10)
		a.give(idx, memsys.MakeHandle(bufs[i]))
	}
	require.Equal(t, int64(3*(4<<10)), a.cachedBytes())

	// Blocks come back most-recently-given first.
	for i := len(bufs) - 1; i >= 0; i-- {
		h, ok := a.tryTake(idx)
		require.True(t, ok)
		require.Same(t, &bufs[i][0], &h.Bytes()[0])
	}
	_, ok := a.tryTake(idx)
	require.False(t, ok)
	require.Zero(t, a.cachedBytes())
}

func TestArenaClassesAreIndependent(t *testing.T) {
	a := newArena(0)
	a.give(classIndex(4<<10), memsys.MakeHandle(make([]byte, 4<<10)))

	_, ok := a.tryTake(classIndex(8 << 10))
	require.False(t, ok)
	_, ok = a.tryTake(classIndex(4 << 10))
	require.True(t, ok)
}

func TestArenaDrain(t *testing.T) {
	p := memsys.NewCountingProvider(memsys.HeapProvider{})
	a := newArena(0)
	var total int64
	for _, size := range []int64{4 << 10, 4 << 10, 64 << 10, 1 << 20} {
		a.give(classIndex(size), memsys.MakeHandle(make([]byte, size)))
		total += size
	}

	freed := a.drain(p)
	require.Equal(t, total, freed)
	require.Equal(t, int64(4), p.Frees())
	require.Equal(t, total, p.FreedBytes())
	require.Zero(t, a.cachedBytes())

	// Draining an empty arena is a no-op.
	require.Zero(t, a.drain(p))
	require.Equal(t, int64(4), p.Frees())
}
