// Package permute implements the distributed Sanders/Paraperm random
// permutation engine: every rank in a fixed process group calls Run
// with the same n and ends up holding a contiguous, canonically
// positioned block of a uniformly random permutation of [0, n).
package permute

import (
	"context"

	"github.com/distperm/paraperm/transport"
)

// uniformSource is the only capability Run needs from an entropy
// source. Accepting the interface rather than *rngadapter.Source
// keeps this package independent of any one RNG implementation.
type uniformSource interface {
	UniformInt(lo, hi uint64) uint64
}

// Run executes one invocation of the engine on this rank. Every rank
// in group must call Run simultaneously with the same n; mismatched n
// across ranks is a programming error with undefined behavior.
//
// ctx bounds only the gap between independent Run calls made by a
// host loop (e.g. a benchmark sweeping many n); once a phase has
// begun, the call runs to completion or to a transport error, exactly
// as the source semantics require.
func Run(ctx context.Context, n uint64, group transport.Group, rng uniformSource) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p := uint64(group.Size())
	r := uint64(group.Rank())

	m, pos, count, err := Layout(n, p, r)
	if err != nil {
		return nil, err
	}

	buf, err := scatter(group, rng, pos, count)
	if err != nil {
		return nil, err
	}

	shuffle(rng, buf)

	total := uint64(len(buf))
	first, err := group.ScanSum(total)
	if err != nil {
		return nil, wrapTransport("phase3 ScanSum", err)
	}

	return redistribute(group, m, pos, count, first, total, buf)
}
