// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package memsys

import "go.uber.org/atomic"

// CountingProvider wraps a Provider and tallies traffic through it. Tests
// use it to assert which allocations were served from cache versus the
// system.
type CountingProvider struct {
	inner Provider

	allocs         atomic.Int64
	frees          atomic.Int64
	allocatedBytes atomic.Int64
	freedBytes     atomic.Int64
}

var _ Provider = (*CountingProvider)(nil)

// NewCountingProvider wraps inner. A nil inner wraps HeapProvider.
func NewCountingProvider(inner Provider) *CountingProvider {
	if inner == nil {
		inner = HeapProvider{}
	}
	return &CountingProvider{inner: inner}
}

// Alloc implements Provider.
func (c *CountingProvider) Alloc(size int64) (Handle, error) {
	h, err := c.inner.Alloc(size)
	if err == nil {
		c.allocs.Inc()
		c.allocatedBytes.Add(size)
	}
	return h, err
}

// AllocAligned implements Provider.
func (c *CountingProvider) AllocAligned(size, align int64) (Handle, error) {
	h, err := c.inner.AllocAligned(size, align)
	if err == nil {
		c.allocs.Inc()
		c.allocatedBytes.Add(size)
	}
	return h, err
}

// Release implements Provider.
func (c *CountingProvider) Release(h Handle, size int64) {
	c.inner.Release(h, size)
	c.frees.Inc()
	c.freedBytes.Add(size)
}

// Allocs returns the number of successful allocations.
func (c *CountingProvider) Allocs() int64 { return c.allocs.Load() }

// Frees returns the number of releases.
func (c *CountingProvider) Frees() int64 { return c.frees.Load() }

// AllocatedBytes returns the cumulative bytes allocated.
func (c *CountingProvider) AllocatedBytes() int64 { return c.allocatedBytes.Load() }

// FreedBytes returns the cumulative bytes released.
func (c *CountingProvider) FreedBytes() int64 { return c.freedBytes.Load() }
