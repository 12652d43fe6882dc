// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"math/bits"

	"github.com/cockroachdb/errors"

	"github.com/emberdb/ember/pkg/util/humanizeutil"
)

const (
	// maxChunkBits bounds the largest size class at 64 GiB. One free list
	// per size class exists in every arena, so the range is fixed at
	// construction.
	maxChunkBits = 36

	// MaxChunkSize is the largest size RoundUp accepts.
	MaxChunkSize = int64(1) << maxChunkBits

	numSizeClasses = maxChunkBits + 1
)

// RoundUp returns the smallest power of two that is >= size. It fails with
// ErrInvalidArgument if size is not positive or exceeds MaxChunkSize.
func RoundUp(size int64) (int64, error) {
	if size <= 0 {
		return 0, errors.Mark(
			errors.Newf("chunk size must be positive, got %d", size),
			ErrInvalidArgument)
	}
	if size > MaxChunkSize {
		return 0, errors.Mark(
			errors.Newf("chunk size %d exceeds maximum %s",
				size, humanizeutil.IBytes(MaxChunkSize)),
			ErrInvalidArgument)
	}
	if size&(size-1) == 0 {
		return size, nil
	}
	return int64(1) << bits.Len64(uint64(size)), nil
}

// classIndex maps a power-of-two size class to its free list index.
func classIndex(sizeClass int64) int {
	return bits.Len64(uint64(sizeClass)) - 1
}

// classSize is the inverse of classIndex.
func classSize(idx int) int64 {
	return int64(1) << idx
}
