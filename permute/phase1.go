package permute

import "github.com/distperm/paraperm/transport"

// scatter implements Phase 1: route every locally owned global index
// pos..pos+count-1 to a uniformly random rank via a single
// all-to-all-variable exchange. Destinations are bucketed in one
// O(count+P) pass rather than sorted, per the source's own
// sort-by-key note; no sentinel entry is written (O1), and count==0
// is handled without any unsigned underflow (O4) while still
// participating in both collectives with zero-length contributions.
func scatter(group transport.Group, rng uniformSource, pos, count uint64) ([]uint64, error) {
	p := group.Size()

	sendCounts := make([]int, p)
	dest := make([]int, count)
	for k := uint64(0); k < count; k++ {
		d := int(rng.UniformInt(0, uint64(p-1)))
		dest[k] = d
		sendCounts[d]++
	}

	sendDispls := make([]int, p)
	for j := 1; j < p; j++ {
		sendDispls[j] = sendDispls[j-1] + sendCounts[j-1]
	}

	send := make([]uint64, count)
	cursor := append([]int(nil), sendDispls...)
	for k := uint64(0); k < count; k++ {
		d := dest[k]
		send[cursor[d]] = pos + k
		cursor[d]++
	}

	sendCountsU := make([]uint64, p)
	for j, c := range sendCounts {
		sendCountsU[j] = uint64(c)
	}
	recvCountsU, err := group.AllToAll(sendCountsU)
	if err != nil {
		return nil, wrapTransport("phase1 AllToAll(sendcounts)", err)
	}

	recvCounts := make([]int, p)
	recvDispls := make([]int, p)
	var total int
	for j, c := range recvCountsU {
		recvCounts[j] = int(c)
		recvDispls[j] = total
		total += int(c)
	}

	recv, err := group.AllToAllv(send, sendCounts, sendDispls, recvCounts, recvDispls)
	if err != nil {
		return nil, wrapTransport("phase1 AllToAllv(values)", err)
	}
	return recv, nil
}
