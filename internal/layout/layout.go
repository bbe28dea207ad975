// Package layout computes the block decomposition that assigns every
// global index in [0, n) to exactly one rank of a fixed-size process
// group.
//
// Adapted from the even/last-short-shard splitting in
// fabbench's internal/ranges: instead of cutting a record count into
// numWorkers contiguous shards by accumulating a running offset, Block
// derives a single rank's range directly from (n, P, rank), which is
// what every rank of an SPMD computation needs — it never sees the
// other ranks' shards.
package layout

import "fmt"

// Block returns rank r's canonical slice of [0, n): m is the common
// block size ceil(n/P), pos is the first global index r owns, and
// count is how many indices r owns (0 once pos >= n).
func Block(n, p, r uint64) (m, pos, count uint64, err error) {
	if p == 0 {
		return 0, 0, 0, fmt.Errorf("layout: process count must be positive, got 0")
	}
	if r >= p {
		return 0, 0, 0, fmt.Errorf("layout: rank %d out of range for %d processes", r, p)
	}

	m = (n + p - 1) / p // ceil(n/p)

	if m != 0 && r > (^uint64(0))/m {
		return 0, 0, 0, fmt.Errorf("layout: rank*blockSize overflows for rank %d, block size %d", r, m)
	}
	pos = r * m

	switch {
	case pos >= n:
		count = 0
	case (r+1)*m > n:
		count = n - pos
	default:
		count = m
	}
	return m, pos, count, nil
}

// Owner returns the rank that canonically owns global position i
// under a block size of m.
func Owner(i, m uint64) uint64 {
	return i / m
}
