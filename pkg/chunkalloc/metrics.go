// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics are write-only side effects of the allocation paths; the allocator
// never reads them back.
type metrics struct {
	localHits      prometheus.Counter
	steals         prometheus.Counter
	misses         prometheus.Counter
	systemFrees    prometheus.Counter
	allocatedBytes prometheus.Counter
	freedBytes     prometheus.Counter
	reservedBytes  prometheus.GaugeFunc
}

func newMetrics(r prometheus.Registerer, reserved func() int64) *metrics {
	factory := promauto.With(r)
	return &metrics{
		localHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "local_hits_total",
			Help:      "Allocations served from the calling core's arena.",
		}),
		steals: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "steals_total",
			Help:      "Allocations served by stealing from a peer core's arena.",
		}),
		misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "misses_total",
			Help:      "Allocations that fell back to the system memory provider.",
		}),
		systemFrees: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "system_frees_total",
			Help:      "Released chunks handed back to the system instead of cached.",
		}),
		allocatedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "allocated_bytes_total",
			Help:      "Cumulative bytes obtained from the system memory provider.",
		}),
		freedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "freed_bytes_total",
			Help:      "Cumulative bytes returned to the system memory provider.",
		}),
		reservedBytes: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "ember",
			Subsystem: "chunkalloc",
			Name:      "reserved_bytes",
			Help:      "Bytes of freed chunks currently cached across all arenas.",
		}, func() float64 { return float64(reserved()) }),
	}
}
