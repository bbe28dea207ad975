package permute

import "github.com/distperm/paraperm/internal/perm"

// shuffle implements Phase 2: an in-place Fisher-Yates shuffle of the
// buffer this rank received in Phase 1. Purely local; no collective
// is required to complete it.
func shuffle(rng uniformSource, buf []uint64) {
	perm.ShuffleUint64(rng, buf)
}
