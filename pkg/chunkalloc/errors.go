// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import "github.com/cockroachdb/errors"

// Errors returned by the allocator, classified with errors.Is.
//
// ErrInvalidArgument and ErrResourceExceeded are recoverable: the caller can
// pick a fallback strategy, e.g. spill or fail the requesting operation.
// ErrOutOfMemory means the system itself refused memory; it should fail the
// calling task, never the process. The allocator performs no internal retry.
var (
	// ErrInvalidArgument marks errors caused by caller mistakes: a zero or
	// over-large size, a non-power-of-two size on release, a double release.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfMemory marks a failed system allocation.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrResourceExceeded marks a tracker quota denial under limit checking.
	ErrResourceExceeded = errors.New("memory quota exceeded")
)
