// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"flag"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/emberdb/ember/pkg/memacct"
	"github.com/emberdb/ember/pkg/memsys"
	"github.com/emberdb/ember/pkg/util/humanizeutil"
)

// DefaultStealFraction is the fraction of the reserve limit below which
// cross-core stealing is never attempted.
const DefaultStealFraction = 0.1

// Config configures an Allocator.
type Config struct {
	// ReserveLimit is the maximum number of bytes of freed chunks the
	// allocator keeps cached for reuse. Zero disables caching entirely:
	// every allocation goes to the system.
	ReserveLimit int64

	// StealFraction sets the stealing threshold as a fraction of
	// ReserveLimit. While the global cached-byte count is at or below the
	// threshold, allocations that miss the local arena skip the peer scan
	// and go straight to the system, to avoid thrashing a nearly empty
	// cache. Zero means DefaultStealFraction.
	StealFraction float64

	// Cores fixes the number of arenas. Zero means one arena per logical
	// CPU detected at startup.
	Cores int

	// Provider supplies raw memory. Nil means memsys.Default().
	Provider memsys.Provider

	// Tracker, if set, accounts every allocation that does not carry its
	// own tracker.
	Tracker memacct.Tracker

	// Logger receives lifecycle and failure events. Nil means no logging.
	Logger log.Logger

	// Registerer receives the allocator's metrics. Nil means the metrics
	// are created but not registered.
	Registerer prometheus.Registerer
}

// RegisterFlags registers the tunable parts of the config.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.Var(humanizeutil.NewBytesValue(&cfg.ReserveLimit), "chunk-cache.reserve-limit",
		"Maximum bytes of freed chunks kept cached for reuse. Zero disables caching.")
	f.Float64Var(&cfg.StealFraction, "chunk-cache.steal-fraction", DefaultStealFraction,
		"Fraction of the reserve limit below which cross-core stealing is not attempted.")
}

func (cfg *Config) validate() error {
	if cfg.ReserveLimit < 0 {
		return errors.Mark(
			errors.Newf("reserve limit must be non-negative, got %d", cfg.ReserveLimit),
			ErrInvalidArgument)
	}
	if cfg.StealFraction < 0 || cfg.StealFraction > 1 {
		return errors.Mark(
			errors.Newf("steal fraction must be in [0, 1], got %f", cfg.StealFraction),
			ErrInvalidArgument)
	}
	if cfg.Cores < 0 {
		return errors.Mark(
			errors.Newf("cores must be non-negative, got %d", cfg.Cores),
			ErrInvalidArgument)
	}
	return nil
}

// SafeFormat implements redact.SafeFormatter.
func (cfg Config) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("reserve limit %s, steal fraction %.2f, %d arenas",
		humanizeutil.IBytes(cfg.ReserveLimit), cfg.StealFraction, cfg.Cores)
}

func (cfg Config) String() string {
	return redact.StringWithoutMarkers(cfg)
}
