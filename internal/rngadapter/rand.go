// Package rngadapter wraps math/rand with the uniform_int(lo, hi)
// contract the permutation engine needs, plus the per-rank seeding
// policy the engine's seeding *contract* leaves to its caller (spec
// §9, O3): a distinct, independent stream per rank, derived from a
// single base entropy value.
//
// Adapted from fabbench's internal/syncrand, which hands out per-shard
// generators seeded from one parent source (ShardedSource). Here the
// sharding key is the rank instead of a CPU index, and the derived
// seeds go through internal/fnv so that adjacent ranks or adjacent
// base seeds don't produce adjacent, correlated rand.Rand states.
package rngadapter

import (
	"math/rand"

	"github.com/distperm/paraperm/internal/fnv"
)

// Source draws independent uniform integers. It is not safe for
// concurrent use by multiple goroutines unless obtained through
// Sharded.
type Source struct {
	r *rand.Rand
}

// New wraps an existing *rand.Rand. The caller owns seeding policy.
func New(r *rand.Rand) *Source {
	return &Source{r: r}
}

// PerRank derives a generator for rank out of a base seed shared
// across the whole process group, fixing the teacher library's bug
// (O3) of reusing one default-constructed generator on every rank.
func PerRank(base int64, rank uint64) *Source {
	return &Source{r: rand.New(rand.NewSource(fnv.SeedFor(base, rank)))}
}

// UniformInt draws a value uniformly from [lo, hi], inclusive on both
// ends per spec §4.2.
func (s *Source) UniformInt(lo, hi uint64) uint64 {
	if hi < lo {
		panic("rngadapter: hi < lo")
	}
	span := hi - lo + 1
	if span == 0 {
		// lo=0, hi=maxUint64: the whole range.
		return uint64(s.r.Int63())<<1 | uint64(s.r.Int63()&1)
	}
	if span <= 1<<63-1 {
		return lo + uint64(s.r.Int63n(int64(span)))
	}
	// span needs the full 64 bits; rejection sample to stay uniform.
	for {
		v := uint64(s.r.Int63())<<1 | uint64(s.r.Int63()&1)
		if v < span {
			return lo + v
		}
	}
}

// Int63 exposes the underlying generator's Int63, used to derive
// independent child seeds for Sharded.
func (s *Source) Int63() int64 { return s.r.Int63() }

// Sharded hands out one *Source per shard, each seeded independently
// from a parent source, grounded on fabbench's syncrand.ShardedSource.
// bench.Sweep.runOne uses this to simulate every rank's generator
// within the one OS process a sweep trial runs in, without any rank
// sharing state with another.
type Sharded struct {
	shards []*Source
}

// NewSharded draws n child seeds from parent and wraps each in its own
// *Source. parent is drained sequentially before the shards are handed
// out to concurrent callers, so no locking is needed here.
func NewSharded(parent *Source, n int) *Sharded {
	shards := make([]*Source, n)
	for i := range shards {
		shards[i] = New(rand.New(rand.NewSource(parent.Int63())))
	}
	return &Sharded{shards: shards}
}

func (s *Sharded) Get(i int) *Source {
	return s.shards[i%len(s.shards)]
}
