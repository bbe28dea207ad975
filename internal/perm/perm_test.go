package perm

import (
	"math/rand"
	"testing"
)

type rngFromRand struct{ r *rand.Rand }

func (g rngFromRand) UniformInt(lo, hi uint64) uint64 {
	return lo + uint64(g.r.Int63n(int64(hi-lo+1)))
}

func TestShuffleUint64IsAPermutation(t *testing.T) {
	sizes := []int{0, 1, 2, 4, 8, 10, 15, 17, 199, 512, 24234}

	for _, n := range sizes {
		buf := make([]uint64, n)
		for i := range buf {
			buf[i] = uint64(i)
		}

		ShuffleUint64(rngFromRand{rand.New(rand.NewSource(int64(n) + 1))}, buf)

		hit := make([]bool, n)
		for _, v := range buf {
			if v >= uint64(n) {
				t.Fatalf("n=%d: value %d out of range", n, v)
			}
			if hit[v] {
				t.Fatalf("n=%d: value %d appeared twice", n, v)
			}
			hit[v] = true
		}
	}
}

func TestShuffleUint64LeavesShortBuffersUnchanged(t *testing.T) {
	for _, buf := range [][]uint64{nil, {}, {42}} {
		before := append([]uint64{}, buf...)
		ShuffleUint64(rngFromRand{rand.New(rand.NewSource(1))}, buf)
		if len(buf) != len(before) {
			t.Fatalf("length changed")
		}
		for i := range buf {
			if buf[i] != before[i] {
				t.Fatalf("buffer of length %d was modified", len(buf))
			}
		}
	}
}
