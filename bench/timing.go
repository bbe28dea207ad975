package bench

import (
	"sync"
	"time"

	"github.com/distperm/paraperm/transport"
)

// timingGroup wraps a transport.Group and accumulates how long Phase
// 1's collectives (AllToAll/AllToAllv) and Phase 3's collectives and
// point-to-point calls (ScanSum, ISend, IRecv, IRecvInto, Barrier)
// spend in the transport. permute.Run exposes exactly one opaque
// operation per spec, so a benchmark that wants per-phase latency has
// to infer phase boundaries this way rather than through a hook
// inside the engine itself.
//
// Phase 3's redistribute() runs ISend and IRecv/IRecvInto from two
// concurrent goroutines against the same Group, so both ends add to
// redistribute concurrently whenever a rank has segments both
// outgoing and incoming; mu guards both fields against that race
// (scatter only ever sees sequential callers today, but sharing one
// mutex for both keeps this type safe regardless of caller
// concurrency rather than relying on that happening to be true).
type timingGroup struct {
	transport.Group

	mu           sync.Mutex
	scatter      time.Duration
	redistribute time.Duration
}

func (g *timingGroup) addScatter(d time.Duration) {
	g.mu.Lock()
	g.scatter += d
	g.mu.Unlock()
}

func (g *timingGroup) addRedistribute(d time.Duration) {
	g.mu.Lock()
	g.redistribute += d
	g.mu.Unlock()
}

// Scatter returns the accumulated time spent in Phase 1's transport
// calls. Safe to call once the permute.Run call that drove it has
// returned.
func (g *timingGroup) Scatter() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scatter
}

// Redistribute returns the accumulated time spent in Phase 3's
// transport calls. Safe to call once the permute.Run call that drove
// it has returned.
func (g *timingGroup) Redistribute() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.redistribute
}

func (g *timingGroup) AllToAll(send []uint64) ([]uint64, error) {
	start := time.Now()
	recv, err := g.Group.AllToAll(send)
	g.addScatter(time.Since(start))
	return recv, err
}

func (g *timingGroup) AllToAllv(send []uint64, sendCounts, sendDispls, recvCounts, recvDispls []int) ([]uint64, error) {
	start := time.Now()
	recv, err := g.Group.AllToAllv(send, sendCounts, sendDispls, recvCounts, recvDispls)
	g.addScatter(time.Since(start))
	return recv, err
}

func (g *timingGroup) ScanSum(v uint64) (uint64, error) {
	start := time.Now()
	excl, err := g.Group.ScanSum(v)
	g.addRedistribute(time.Since(start))
	return excl, err
}

func (g *timingGroup) ISend(dest, tag int, data []uint64) (transport.Request, error) {
	start := time.Now()
	req, err := g.Group.ISend(dest, tag, data)
	g.addRedistribute(time.Since(start))
	return req, err
}

func (g *timingGroup) IRecv(tag int) ([]uint64, int, error) {
	start := time.Now()
	data, src, err := g.Group.IRecv(tag)
	g.addRedistribute(time.Since(start))
	return data, src, err
}

func (g *timingGroup) IRecvInto(tag int, src int, into []uint64) error {
	start := time.Now()
	err := g.Group.IRecvInto(tag, src, into)
	g.addRedistribute(time.Since(start))
	return err
}

func (g *timingGroup) Barrier() error {
	start := time.Now()
	err := g.Group.Barrier()
	g.addRedistribute(time.Since(start))
	return err
}
