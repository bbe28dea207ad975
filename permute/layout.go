package permute

import "github.com/distperm/paraperm/internal/layout"

// Layout computes rank r's block size and canonical output range
// within a permutation of n elements spread over p ranks: m =
// ceil(n/p), pos = r*m, count = the size of [pos, pos+m) clipped to
// [0, n).
func Layout(n, p, r uint64) (m, pos, count uint64, err error) {
	m, pos, count, lerr := layout.Block(n, p, r)
	if lerr != nil {
		return 0, 0, 0, &InputError{Detail: lerr.Error()}
	}
	return m, pos, count, nil
}
