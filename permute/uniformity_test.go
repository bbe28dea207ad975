package permute

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/distperm/paraperm/internal/rngadapter"
	"github.com/distperm/paraperm/transport/inproc"
)

// permutationIndex maps a permutation of {0,...,n-1} to its Lehmer
// code index in [0, n!), so repeated trials can be tallied into a
// histogram over the whole symmetric group.
func permutationIndex(p []uint64) int {
	n := len(p)
	used := make([]bool, n)
	fact := 1
	for i := 2; i < n; i++ {
		fact *= i
	}
	idx := 0
	for i := 0; i < n; i++ {
		rank := 0
		for v := uint64(0); v < p[i]; v++ {
			if !used[v] {
				rank++
			}
		}
		used[p[i]] = true
		idx += rank * fact
		if n-i-1 > 0 {
			fact /= (n - i - 1)
		}
	}
	return idx
}

// TestUniformityOverSmallSymmetricGroup is (T5): over many
// independently seeded single-rank runs of n=3, the empirical
// distribution over the 6 permutations of S_3 should be
// statistically indistinguishable from uniform.
func TestUniformityOverSmallSymmetricGroup(t *testing.T) {
	const n = 3
	const trials = 6000
	counts := make([]float64, 6)

	for trial := 0; trial < trials; trial++ {
		groups := inproc.NewWorld(1)
		rng := rngadapter.PerRank(int64(trial)+1, 0)
		out, err := Run(context.Background(), n, groups[0], rng)
		require.NoError(t, err)
		counts[permutationIndex(out)]++
	}

	expected := make([]float64, 6)
	for i := range expected {
		expected[i] = float64(trials) / 6
	}

	chi2 := stat.ChiSquare(counts, expected)
	// Critical value for df=5 at the 1% significance level. A loose
	// threshold keeps this test from flaking on an unlucky batch of
	// trials while still catching a badly biased generator (e.g. the
	// teacher's default-constructed-RNG bug this package fixes per
	// O3, which would make every trial identical).
	const critical = 15.09
	require.Less(t, chi2, critical,
		"chi-squared statistic %v exceeds critical value %v: generator is not behaving uniformly", chi2, critical)
}
