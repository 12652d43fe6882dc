// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestRoundUp(t *testing.T) {
	for _, tc := range []struct {
		size     int64
		expected int64
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{1000, 1024},
		{1024, 1024},
		{1025, 2048},
		{6 << 10, 8 << 10},
		{MaxChunkSize - 1, MaxChunkSize},
		{MaxChunkSize, MaxChunkSize},
	} {
		got, err := RoundUp(tc.size)
		require.NoError(t, err)
		require.Equalf(t, tc.expected, got, "RoundUp(%d)", tc.size)
	}
}

func TestRoundUpProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10000; i++ {
		size := rng.Int63n(MaxChunkSize) + 1
		got, err := RoundUp(size)
		require.NoError(t, err)
		require.Zerof(t, got&(got-1), "RoundUp(%d) = %d is not a power of two", size, got)
		require.GreaterOrEqual(t, got, size)
		require.Lessf(t, got, 2*size, "RoundUp(%d) = %d", size, got)
	}
}

func TestRoundUpInvalid(t *testing.T) {
	for _, size := range []int64{0, -1, -1 << 20, MaxChunkSize + 1, MaxChunkSize << 1} {
		_, err := RoundUp(size)
		require.Truef(t, errors.Is(err, ErrInvalidArgument), "RoundUp(%d): %v", size, err)
	}
}

func TestClassIndex(t *testing.T) {
	require.Equal(t, 0, classIndex(1))
	require.Equal(t, 12, classIndex(4<<10))
	require.Equal(t, maxChunkBits, classIndex(MaxChunkSize))
	for idx := 0; idx < numSizeClasses; idx++ {
		require.Equal(t, idx, classIndex(classSize(idx)))
	}
}
