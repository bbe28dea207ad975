// Package perm shuffles a caller-owned buffer in place with
// Fisher-Yates.
//
// fabbench's perm() builds a fresh permutation table ascending
// (i = 0..n-1, swap m[i] with a draw over [0, i]) because it needs an
// O(1) Of(i) lookup into a table too large to hold as a plain slice.
// Phase 2 of the permutation engine has no such lookup requirement —
// each rank already holds its whole shuffle buffer in one slice — so
// the shuffle here runs the equivalent swap descending (k = n-1..1,
// swap k with a draw over [0, k]) directly over that buffer, which is
// the textbook Durstenfeld form spec §4.4 calls for.
package perm

// Uniform draws a uniform integer in [lo, hi], inclusive.
type Uniform interface {
	UniformInt(lo, hi uint64) uint64
}

// ShuffleUint64 shuffles buf in place. A buffer of length 0 or 1 is
// left unchanged, matching spec §4.4's explicit no-op case.
func ShuffleUint64(rng Uniform, buf []uint64) {
	for k := len(buf) - 1; k >= 1; k-- {
		l := rng.UniformInt(0, uint64(k))
		buf[k], buf[l] = buf[l], buf[k]
	}
}
