// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// Package memacct attributes memory usage to logical consumers. A Tracker is
// a write-side accounting sink: the allocator reports bytes consumed and
// released, and quota enforcement happens inside the Tracker.
package memacct

import (
	"github.com/cockroachdb/redact"
	"go.uber.org/atomic"

	"github.com/emberdb/ember/pkg/util/humanizeutil"
)

// Tracker accounts bytes to one logical consumer (a query, an operator, a
// background job). Implementations must be safe for concurrent use.
type Tracker interface {
	// TryConsume accounts bytes if the consumer's quota allows it and reports
	// whether it did.
	TryConsume(bytes int64) bool

	// Consume accounts bytes unconditionally, even past the quota. Used on
	// paths where the memory has already been obtained and refusing the
	// accounting would only make the books wrong.
	Consume(bytes int64)

	// Release returns previously consumed bytes.
	Release(bytes int64)
}

// Monitor is a Tracker with a fixed byte limit. A non-positive limit means
// unlimited.
type Monitor struct {
	name  string
	limit int64
	used  atomic.Int64
}

var _ Tracker = (*Monitor)(nil)

// NewMonitor returns a Monitor named name with the given byte limit.
func NewMonitor(name string, limit int64) *Monitor {
	return &Monitor{name: name, limit: limit}
}

// TryConsume implements Tracker.
func (m *Monitor) TryConsume(bytes int64) bool {
	if m.limit <= 0 {
		m.used.Add(bytes)
		return true
	}
	for {
		cur := m.used.Load()
		if cur+bytes > m.limit {
			return false
		}
		if m.used.CompareAndSwap(cur, cur+bytes) {
			return true
		}
	}
}

// Consume implements Tracker.
func (m *Monitor) Consume(bytes int64) {
	m.used.Add(bytes)
}

// Release implements Tracker.
func (m *Monitor) Release(bytes int64) {
	m.used.Sub(bytes)
}

// Used returns the bytes currently accounted to this monitor.
func (m *Monitor) Used() int64 {
	return m.used.Load()
}

// Name returns the monitor's name.
func (m *Monitor) Name() string {
	return m.name
}

// SafeFormat implements redact.SafeFormatter.
func (m *Monitor) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s: %s used", redact.SafeString(m.name), humanizeutil.IBytes(m.Used()))
	if m.limit > 0 {
		w.Printf(" of %s", humanizeutil.IBytes(m.limit))
	}
}

func (m *Monitor) String() string {
	return redact.StringWithoutMarkers(m)
}
