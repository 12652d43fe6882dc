// Copyright 2024 The Ember Authors.
//
// Use of this software is governed by the Apache License, Version 2.0
// included in the /LICENSE file.

package chunkalloc

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"go.uber.org/atomic"

	"github.com/emberdb/ember/pkg/memacct"
	"github.com/emberdb/ember/pkg/memsys"
	"github.com/emberdb/ember/pkg/util"
	"github.com/emberdb/ember/pkg/util/cpuid"
	"github.com/emberdb/ember/pkg/util/humanizeutil"
)

// Allocator hands out power-of-two-sized chunks, serving them from per-core
// caches of previously freed blocks whenever possible. See the package
// comment for the allocation and release policy.
//
// An Allocator is safe for concurrent use. Its arena table is fixed at
// construction.
type Allocator struct {
	provider memsys.Provider
	tracker  memacct.Tracker
	logger   log.Logger
	metrics  *metrics

	reserveLimit   int64
	stealThreshold int64

	// reserved is the eventually-consistent sum of all arenas' cached-byte
	// tallies. Check-then-act races against it are tolerated: the reserve
	// limit is a soft cap, and the counter converges once operations
	// quiesce.
	reserved atomic.Int64

	// oomWarnEvery rate-limits the warning on system allocation failure,
	// which otherwise fires once per allocation under memory pressure.
	oomWarnEvery util.EveryN

	arenas []*arena
}

// New constructs an Allocator from cfg. Unset config fields get defaults;
// see Config.
func New(cfg Config) (*Allocator, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cores := cfg.Cores
	if cores == 0 {
		cores = cpuid.NumCores()
	}
	provider := cfg.Provider
	if provider == nil {
		provider = memsys.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	stealFraction := cfg.StealFraction
	if stealFraction == 0 {
		stealFraction = DefaultStealFraction
	}

	a := &Allocator{
		provider:       provider,
		tracker:        cfg.Tracker,
		logger:         logger,
		reserveLimit:   cfg.ReserveLimit,
		stealThreshold: int64(stealFraction * float64(cfg.ReserveLimit)),
		oomWarnEvery:   util.Every(10 * time.Second),
		arenas:         make([]*arena, cores),
	}
	for i := range a.arenas {
		a.arenas[i] = newArena(cpuid.CoreID(i))
	}
	a.metrics = newMetrics(cfg.Registerer, a.reserved.Load)

	level.Debug(logger).Log(
		"msg", "chunk allocator initialized",
		"arenas", cores,
		"reserve_limit", humanizeutil.IBytes(a.reserveLimit),
		"steal_threshold", humanizeutil.IBytes(a.stealThreshold),
	)
	return a, nil
}

// Allocate returns a chunk of the smallest power-of-two size >= size.
//
// The block comes from the calling core's arena when one is cached there,
// from a peer arena when the global cache is above the stealing threshold,
// and from the system otherwise. Cache hit, steal and miss are never visible
// as errors; they only affect latency.
//
// tracker overrides the allocator's default tracker for this call; nil keeps
// the default. With checkLimits set, the system-fallback path consults the
// tracker first and fails with ErrResourceExceeded on denial, before any
// system allocation is attempted.
func (a *Allocator) Allocate(
	size int64, tracker memacct.Tracker, checkLimits bool,
) (Chunk, error) {
	return a.allocate(size, tracker, checkLimits)
}

// AllocateAligned is Allocate with a guarantee that the block's first byte
// is aligned to the chunk's size class. Every block the allocator obtains
// from the system is requested at size-class alignment, so cached blocks
// carry the guarantee no matter which entry point first allocated them, and
// both entry points share one path.
func (a *Allocator) AllocateAligned(
	size int64, tracker memacct.Tracker, checkLimits bool,
) (Chunk, error) {
	return a.allocate(size, tracker, checkLimits)
}

func (a *Allocator) allocate(
	size int64, tracker memacct.Tracker, checkLimits bool,
) (Chunk, error) {
	return a.allocateOn(a.arenaFor(cpuid.Current()), size, tracker, checkLimits)
}

// allocateOn runs the allocation policy with an explicit local arena. Split
// out from allocate so tests can pin the local arena instead of depending on
// where the scheduler put them.
func (a *Allocator) allocateOn(
	local *arena, size int64, tracker memacct.Tracker, checkLimits bool,
) (Chunk, error) {
	sizeClass, err := RoundUp(size)
	if err != nil {
		return Chunk{}, err
	}
	idx := classIndex(sizeClass)
	if tracker == nil {
		tracker = a.tracker
	}

	if h, ok := local.tryTake(idx); ok {
		a.reserved.Sub(sizeClass)
		a.metrics.localHits.Inc()
		if tracker != nil {
			tracker.Consume(sizeClass)
		}
		return Chunk{handle: h, size: sizeClass, core: local.core}, nil
	}

	// The local arena is empty for this class. Scan the peers, starting
	// right after the local core and wrapping around, but only while enough
	// is cached globally for stealing to be worth the lock traffic.
	if a.reserved.Load() > a.stealThreshold {
		n := len(a.arenas)
		for i := 1; i < n; i++ {
			peer := a.arenas[(int(local.core)+i)%n]
			h, ok := peer.tryTake(idx)
			if !ok {
				continue
			}
			a.reserved.Sub(sizeClass)
			a.metrics.steals.Inc()
			if tracker != nil {
				tracker.Consume(sizeClass)
			}
			// The chunk stays homed on the arena it was stolen from, so its
			// release routes the block back there. Stealing borrows memory;
			// it does not migrate it.
			return Chunk{handle: h, size: sizeClass, core: peer.core}, nil
		}
	}

	// System fallback. The block is requested at size-class alignment so
	// that a cached copy can later serve AllocateAligned as a hit.
	consumed := false
	if checkLimits && tracker != nil {
		if !tracker.TryConsume(sizeClass) {
			return Chunk{}, errors.Mark(
				errors.Newf("tracker denied %s", humanizeutil.IBytes(sizeClass)),
				ErrResourceExceeded)
		}
		consumed = true
	}
	h, err := a.provider.AllocAligned(sizeClass, sizeClass)
	if err != nil {
		if consumed {
			tracker.Release(sizeClass)
		}
		if a.oomWarnEvery.ShouldProcess(time.Now()) {
			level.Warn(a.logger).Log(
				"msg", "system allocation failed",
				"size", humanizeutil.IBytes(sizeClass),
				"err", err,
			)
		}
		return Chunk{}, errors.Mark(
			errors.Wrapf(err, "allocating %s from system", humanizeutil.IBytes(sizeClass)),
			ErrOutOfMemory)
	}
	a.metrics.misses.Inc()
	a.metrics.allocatedBytes.Add(float64(sizeClass))
	if tracker != nil && !consumed {
		tracker.Consume(sizeClass)
	}
	return Chunk{handle: h, size: sizeClass, core: local.core}, nil
}

// Release returns a chunk's block to the allocator, consuming the lease. The
// block lands in the free list of the chunk's home arena while the global
// cached-byte count has headroom under the reserve limit, and goes straight
// back to the system otherwise.
//
// Releasing a chunk twice, or releasing a chunk whose recorded size is not a
// power of two within the size-class range, fails with ErrInvalidArgument.
func (a *Allocator) Release(c *Chunk, tracker memacct.Tracker) error {
	if c == nil || c.released() {
		return errors.Mark(errors.New("chunk already released"), ErrInvalidArgument)
	}
	if c.size <= 0 || c.size&(c.size-1) != 0 {
		return errors.Mark(
			errors.Newf("chunk size %d is not a power of two", c.size),
			ErrInvalidArgument)
	}
	if c.size > MaxChunkSize {
		return errors.Mark(
			errors.Newf("chunk size %d exceeds maximum %s",
				c.size, humanizeutil.IBytes(MaxChunkSize)),
			ErrInvalidArgument)
	}
	if tracker == nil {
		tracker = a.tracker
	}

	if a.reserved.Load()+c.size <= a.reserveLimit {
		a.arenaFor(c.core).give(classIndex(c.size), c.handle)
		a.reserved.Add(c.size)
	} else {
		a.provider.Release(c.handle, c.size)
		a.metrics.systemFrees.Inc()
		a.metrics.freedBytes.Add(float64(c.size))
	}
	if tracker != nil {
		tracker.Release(c.size)
	}
	c.handle = memsys.Handle{}
	return nil
}

// ReleaseRaw transfers ownership of a raw block to the allocator, as Release
// does for a chunk. No lease metadata exists for the block, so it is homed
// on the calling core.
//
// size must equal the size the block was originally allocated with; a
// mismatch silently corrupts the cache accounting and cannot be detected
// here.
func (a *Allocator) ReleaseRaw(h memsys.Handle, size int64, tracker memacct.Tracker) error {
	if h.Empty() {
		return errors.Mark(errors.New("empty handle"), ErrInvalidArgument)
	}
	c := Chunk{handle: h, size: size, core: a.arenaFor(cpuid.Current()).core}
	return a.Release(&c, tracker)
}

// CachedBytes returns the global cached-byte count. The value can be
// transiently stale under concurrent allocate/release traffic.
func (a *Allocator) CachedBytes() int64 {
	return a.reserved.Load()
}

// Close releases every cached block to the system provider. The allocator
// must not be used afterwards. Outstanding chunks are unaffected; their
// blocks go back to the system when they are eventually released.
func (a *Allocator) Close() {
	var freed int64
	for _, ar := range a.arenas {
		freed += ar.drain(a.provider)
	}
	a.reserved.Sub(freed)
	a.metrics.freedBytes.Add(float64(freed))
	level.Debug(a.logger).Log(
		"msg", "chunk allocator closed",
		"released", humanizeutil.IBytes(freed),
	)
}

// arenaFor returns the arena for core, clamping ids that fall outside the
// table. The table size is fixed at construction, and the OS can report
// cores the topology snapshot did not cover.
func (a *Allocator) arenaFor(core cpuid.CoreID) *arena {
	i := int(core)
	if n := len(a.arenas); i < 0 || i >= n {
		i = ((i % n) + n) % n
	}
	return a.arenas[i]
}
