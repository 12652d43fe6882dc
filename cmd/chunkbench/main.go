// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

// chunkbench drives concurrent allocate/release load against a chunk
// allocator instance and reports throughput, cache behavior and tracker
// accounting. It exists to measure the allocator under contention on real
// hardware; the Go benchmarks in pkg/chunkalloc cover the single-process
// regression angle.
package main

import (
	"math/bits"
	"math/rand"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"github.com/emberdb/ember/pkg/chunkalloc"
	"github.com/emberdb/ember/pkg/memacct"
	"github.com/emberdb/ember/pkg/util/humanizeutil"
)

var (
	reserveLimit  = int64(256 << 20)
	trackerLimit  int64
	stealFraction = chunkalloc.DefaultStealFraction
	workers       = runtime.NumCPU()
	duration      = 10 * time.Second
	minSize       = int64(4 << 10)
	maxSize       = int64(1 << 20)
	heldPerWorker = 16
	metricsAddr   string
	checkLimits   bool
)

var rootCmd = &cobra.Command{
	Use:           "chunkbench",
	Short:         "benchmark the chunk-caching allocator under concurrent load",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runBench,
}

func init() {
	f := rootCmd.Flags()
	f.Var(humanizeutil.NewBytesValue(&reserveLimit), "reserve-limit",
		"bytes of freed chunks the allocator may keep cached")
	f.Var(humanizeutil.NewBytesValue(&trackerLimit), "tracker-limit",
		"tracker quota; zero means unlimited")
	f.Var(humanizeutil.NewBytesValue(&minSize), "min-size", "smallest allocation size")
	f.Var(humanizeutil.NewBytesValue(&maxSize), "max-size", "largest allocation size")
	f.Float64Var(&stealFraction, "steal-fraction", stealFraction,
		"fraction of the reserve limit below which stealing is not attempted")
	f.IntVar(&workers, "workers", workers, "concurrent worker goroutines")
	f.IntVar(&heldPerWorker, "held", heldPerWorker,
		"chunks each worker keeps outstanding")
	f.DurationVar(&duration, "duration", duration, "how long to run")
	f.StringVar(&metricsAddr, "metrics-addr", "",
		"serve prometheus metrics on this address while running")
	f.BoolVar(&checkLimits, "check-limits", false,
		"gate system allocations on the tracker quota")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	logger := log.With(
		log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr)),
		"ts", log.DefaultTimestampUTC,
	)

	minClass, err := chunkalloc.RoundUp(minSize)
	if err != nil {
		return err
	}
	maxClass, err := chunkalloc.RoundUp(maxSize)
	if err != nil {
		return err
	}
	if minClass > maxClass {
		return errors.Newf("min-size %s exceeds max-size %s",
			humanizeutil.IBytes(minClass), humanizeutil.IBytes(maxClass))
	}
	classRange := bits.Len64(uint64(maxClass)) - bits.Len64(uint64(minClass)) + 1

	registry := prometheus.NewRegistry()
	tracker := memacct.NewMonitor("chunkbench", trackerLimit)
	alloc, err := chunkalloc.New(chunkalloc.Config{
		ReserveLimit:  reserveLimit,
		StealFraction: stealFraction,
		Tracker:       tracker,
		Logger:        logger,
		Registerer:    registry,
	})
	if err != nil {
		return err
	}
	defer alloc.Close()

	if metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				level.Error(logger).Log("msg", "metrics server failed", "err", err)
			}
		}()
		level.Info(logger).Log("msg", "serving metrics", "addr", metricsAddr)
	}

	level.Info(logger).Log(
		"msg", "starting load",
		"workers", workers,
		"duration", duration,
		"reserve_limit", humanizeutil.IBytes(reserveLimit),
		"sizes", humanizeutil.IBytes(minClass)+".."+humanizeutil.IBytes(maxClass),
	)

	var ops, denials atomic.Int64
	deadline := time.Now().Add(duration)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			held := make([]chunkalloc.Chunk, 0, heldPerWorker)
			defer func() {
				for i := range held {
					_ = alloc.Release(&held[i], nil)
				}
			}()
			for time.Now().Before(deadline) {
				size := minClass << rng.Intn(classRange)
				c, err := alloc.Allocate(size, nil, checkLimits)
				if err != nil {
					if !errors.Is(err, chunkalloc.ErrResourceExceeded) {
						level.Error(logger).Log("msg", "allocation failed", "err", err)
						return
					}
					// Quota pressure: give something back and move on.
					denials.Inc()
					if n := len(held); n > 0 {
						_ = alloc.Release(&held[n-1], nil)
						held = held[:n-1]
					}
					continue
				}
				// Touch the block so the kernel actually backs it.
				c.Bytes()[0] = byte(seed)
				ops.Inc()
				held = append(held, c)
				if len(held) == heldPerWorker {
					victim := rng.Intn(len(held))
					_ = alloc.Release(&held[victim], nil)
					held[victim] = held[len(held)-1]
					held = held[:len(held)-1]
				}
			}
		}(int64(w))
	}
	wg.Wait()

	level.Info(logger).Log(
		"msg", "load complete",
		"ops", ops.Load(),
		"ops_per_sec", int64(float64(ops.Load())/duration.Seconds()),
		"quota_denials", denials.Load(),
		"cached", humanizeutil.IBytes(alloc.CachedBytes()),
		"tracker", tracker,
	)
	return nil
}
