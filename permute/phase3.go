package permute

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/distperm/paraperm/transport"
)

const (
	tagHeader  = 1
	tagPayload = 2
)

// segment describes one contiguous run of the globally shuffled
// sequence that belongs to a single canonical owner.
type segment struct {
	firstp int
	countp int
	dest   int
}

// planSegments walks the canonical owners covering global positions
// [first, last] and splits that range into one segment per owner.
// The loop condition is firstp <= last (O2): the naive firstp < last
// silently drops the final single-element segment whenever a rank's
// shuffled run ends exactly on a block boundary.
func planSegments(first, last, m uint64) []segment {
	if last < first {
		return nil
	}
	var segs []segment
	firstp := first
	rho := firstp / m
	for firstp <= last {
		lastp := (rho+1)*m - 1
		if lastp > last {
			lastp = last
		}
		countp := lastp - firstp + 1
		segs = append(segs, segment{firstp: int(firstp), countp: int(countp), dest: int(rho)})
		firstp += countp
		rho++
	}
	return segs
}

// redistribute implements Phase 3: deliver each element of the
// locally shuffled buffer to its canonical owner, and receive this
// rank's own count elements from whoever holds them. first is this
// rank's offset into the globally shuffled sequence (the exclusive
// prefix scan over every rank's total), and total is len(buf).
func redistribute(group transport.Group, m, pos, count, first, total uint64, buf []uint64) ([]uint64, error) {
	r := uint64(group.Rank())
	pOut := make([]uint64, count)

	var segs []segment
	if total > 0 {
		segs = planSegments(first, first+total-1, m)
	}

	remains := count
	var remote []segment
	for _, s := range segs {
		if uint64(s.dest) != r {
			remote = append(remote, s)
			continue
		}
		off := uint64(s.firstp) - first
		dst := pOut[uint64(s.firstp)-pos:]
		if uint64(s.countp) > remains {
			return nil, &InvariantError{Detail: "local delivery would exceed remaining output slots"}
		}
		copy(dst, buf[off:off+uint64(s.countp)])
		remains -= uint64(s.countp)
	}

	var g errgroup.Group
	g.Go(func() error {
		return sendSegments(group, buf, first, remote)
	})
	g.Go(func() error {
		return recvSegments(group, pOut, pos, remains)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := group.Barrier(); err != nil {
		return nil, wrapTransport("phase3 Barrier", err)
	}
	return pOut, nil
}

func sendSegments(group transport.Group, buf []uint64, first uint64, segs []segment) error {
	reqs := make([]transport.Request, 0, 2*len(segs))
	for _, s := range segs {
		header := []uint64{uint64(s.firstp), uint64(s.countp)}
		hreq, err := group.ISend(s.dest, tagHeader, header)
		if err != nil {
			return wrapTransport("phase3 ISend(HEADER)", err)
		}
		reqs = append(reqs, hreq)

		off := uint64(s.firstp) - first
		payload := buf[off : off+uint64(s.countp)]
		preq, err := group.ISend(s.dest, tagPayload, payload)
		if err != nil {
			return wrapTransport("phase3 ISend(PAYLOAD)", err)
		}
		reqs = append(reqs, preq)
	}
	for _, req := range reqs {
		if err := req.Wait(); err != nil {
			return wrapTransport("phase3 send Wait", err)
		}
	}
	return nil
}

// recvSegments posts a HEADER receive from any source, then the
// matching PAYLOAD receive explicitly from whichever rank that HEADER
// came from, until this rank has accounted for every one of its count
// output slots. The explicit source on the PAYLOAD receive is what
// keeps a HEADER from one sender from ever pairing with a PAYLOAD
// from another: mirrors the original implementation capturing
// status.MPI_SOURCE off the wildcard HEADER recv and issuing the
// PAYLOAD recv from that rank specifically, rather than trusting that
// the next queued PAYLOAD for the tag belongs to the same sender.
func recvSegments(group transport.Group, pOut []uint64, pos, remains uint64) error {
	for remains > 0 {
		header, src, err := group.IRecv(tagHeader)
		if err != nil {
			return wrapTransport("phase3 IRecv(HEADER)", err)
		}
		if len(header) != 2 {
			return &InvariantError{Detail: fmt.Sprintf("HEADER carried %d values, want 2", len(header))}
		}
		firstp, countp := header[0], header[1]
		if countp == 0 {
			continue
		}
		if countp > remains {
			return &InvariantError{Detail: "received more elements than this rank is still owed"}
		}
		dst := pOut[firstp-pos : firstp-pos+countp]
		if err := group.IRecvInto(tagPayload, src, dst); err != nil {
			return wrapTransport("phase3 IRecv(PAYLOAD)", err)
		}
		remains -= countp
	}
	return nil
}
