// Package inproc runs a whole process group as goroutines inside one
// OS process, sharing memory instead of a network. It backs the
// engine's unit tests and a single-machine "simulate P ranks locally"
// mode of the host CLI.
//
// Grounded on fabbench's db/dummy in-memory stand-in backend and its
// rtdb request/response channel dance, generalized from one client
// issuing single requests to a fixed peer, to P peers all issuing
// collective and tagged point-to-point operations against each other.
package inproc

import (
	"fmt"
	"sync"

	"github.com/distperm/paraperm/transport"
)

type message struct {
	src  int
	data []uint64
}

type inbox struct {
	mu   sync.Mutex
	cond *sync.Cond
	byTag map[int][]message
}

func newInbox() *inbox {
	b := &inbox{byTag: make(map[int][]message)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

func (b *inbox) push(tag int, m message) {
	b.mu.Lock()
	b.byTag[tag] = append(b.byTag[tag], m)
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *inbox) pop(tag int) message {
	b.mu.Lock()
	defer b.mu.Unlock()
	for len(b.byTag[tag]) == 0 {
		b.cond.Wait()
	}
	m := b.byTag[tag][0]
	b.byTag[tag] = b.byTag[tag][1:]
	return m
}

// popFrom waits for a message tagged tag from src specifically,
// leaving any other sender's messages on the same tag queued in
// place. This is what lets a HEADER/PAYLOAD pair stay bound to one
// sender even when two senders have segments in flight to the same
// destination at once: the wildcard HEADER receive's sender becomes
// the explicit source of the PAYLOAD receive that follows it.
func (b *inbox) popFrom(tag, src int) message {
	b.mu.Lock()
	defer b.mu.Unlock()
	for {
		q := b.byTag[tag]
		for i, m := range q {
			if m.src == src {
				b.byTag[tag] = append(q[:i:i], q[i+1:]...)
				return m
			}
		}
		b.cond.Wait()
	}
}

// rendezvous is a reusable cyclic barrier that also exchanges one
// contribution per rank per round, used for every collective that
// needs every rank's input before anyone can proceed (AllToAll,
// AllToAllv, ScanSum, Barrier).
type rendezvous struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n          int
	gen        int
	arrived    int
	data       []interface{}
	lastResult []interface{}
}

func newRendezvous(n int) *rendezvous {
	r := &rendezvous{n: n, data: make([]interface{}, n)}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *rendezvous) exchange(rank int, contribution interface{}) []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	myGen := r.gen
	r.data[rank] = contribution
	r.arrived++
	if r.arrived == r.n {
		r.lastResult = r.data
		r.data = make([]interface{}, r.n)
		r.arrived = 0
		r.gen++
		r.cond.Broadcast()
		return r.lastResult
	}
	for r.gen == myGen {
		r.cond.Wait()
	}
	return r.lastResult
}

// World is the shared state of one in-process group.
type World struct {
	n       int
	inboxes []*inbox

	a2a  *rendezvous
	a2av *rendezvous
	scan *rendezvous
	bar  *rendezvous
}

// NewWorld builds n linked Groups sharing one World, indexed by rank.
func NewWorld(n int) []transport.Group {
	w := &World{
		n:       n,
		inboxes: make([]*inbox, n),
		a2a:     newRendezvous(n),
		a2av:    newRendezvous(n),
		scan:    newRendezvous(n),
		bar:     newRendezvous(n),
	}
	for i := range w.inboxes {
		w.inboxes[i] = newInbox()
	}
	groups := make([]transport.Group, n)
	for r := 0; r < n; r++ {
		groups[r] = &group{w: w, rank: r}
	}
	return groups
}

type group struct {
	w    *World
	rank int
}

func (g *group) Rank() int { return g.rank }
func (g *group) Size() int { return g.w.n }

type doneRequest struct{}

func (doneRequest) Wait() error { return nil }

func (g *group) ISend(dest int, tag int, data []uint64) (transport.Request, error) {
	if dest < 0 || dest >= g.w.n {
		return nil, fmt.Errorf("inproc: send to out-of-range rank %d", dest)
	}
	cp := make([]uint64, len(data))
	copy(cp, data)
	g.w.inboxes[dest].push(tag, message{src: g.rank, data: cp})
	return doneRequest{}, nil
}

func (g *group) IRecv(tag int) ([]uint64, int, error) {
	m := g.w.inboxes[g.rank].pop(tag)
	return m.data, m.src, nil
}

func (g *group) IRecvInto(tag int, src int, into []uint64) error {
	m := g.w.inboxes[g.rank].popFrom(tag, src)
	if len(m.data) != len(into) {
		return fmt.Errorf("inproc: expected %d values, got %d", len(into), len(m.data))
	}
	copy(into, m.data)
	return nil
}

func (g *group) AllToAll(send []uint64) ([]uint64, error) {
	if len(send) != g.w.n {
		return nil, fmt.Errorf("inproc: AllToAll send must have length %d, got %d", g.w.n, len(send))
	}
	results := g.w.a2a.exchange(g.rank, append([]uint64{}, send...))
	recv := make([]uint64, g.w.n)
	for j := 0; j < g.w.n; j++ {
		recv[j] = results[j].([]uint64)[g.rank]
	}
	return recv, nil
}

type a2avContrib struct {
	data   []uint64
	counts []int
	displs []int
}

func (g *group) AllToAllv(send []uint64, sendCounts, sendDispls, recvCounts, recvDispls []int) ([]uint64, error) {
	if len(sendCounts) != g.w.n || len(sendDispls) != g.w.n {
		return nil, fmt.Errorf("inproc: AllToAllv send counts/displs must have length %d", g.w.n)
	}
	if len(recvCounts) != g.w.n || len(recvDispls) != g.w.n {
		return nil, fmt.Errorf("inproc: AllToAllv recv counts/displs must have length %d", g.w.n)
	}
	results := g.w.a2av.exchange(g.rank, a2avContrib{
		data:   append([]uint64{}, send...),
		counts: append([]int{}, sendCounts...),
		displs: append([]int{}, sendDispls...),
	})

	total := 0
	for _, c := range recvCounts {
		total += c
	}
	recv := make([]uint64, total)
	for src := 0; src < g.w.n; src++ {
		c := results[src].(a2avContrib)
		n := c.counts[g.rank]
		if n == 0 {
			continue
		}
		off := c.displs[g.rank]
		if recvCounts[src] != n {
			return nil, fmt.Errorf("inproc: rank %d declared recvCount %d for src %d, sender declared sendCount %d", g.rank, recvCounts[src], src, n)
		}
		copy(recv[recvDispls[src]:recvDispls[src]+n], c.data[off:off+n])
	}
	return recv, nil
}

func (g *group) ScanSum(v uint64) (uint64, error) {
	results := g.w.scan.exchange(g.rank, v)
	var exclusive uint64
	for r := 0; r < g.rank; r++ {
		exclusive += results[r].(uint64)
	}
	return exclusive, nil
}

func (g *group) Barrier() error {
	g.w.bar.exchange(g.rank, struct{}{})
	return nil
}
