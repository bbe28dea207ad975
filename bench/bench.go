// Package bench drives many independent permute.Run calls over a
// sweep of (n, P) pairs, recording per-phase latency. It is the
// external "verification/benchmark" collaborator spec.md keeps out of
// the core engine, built the way the teacher codebase builds its own
// load/run harness: a Config the host decodes from JSON, a Logger
// interface the core of this package never assumes a concrete type
// for, and periodic progress messages independent of the work loop.
package bench

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/distperm/paraperm/internal/rngadapter"
	"github.com/distperm/paraperm/permute"
	"github.com/distperm/paraperm/recorders"
	"github.com/distperm/paraperm/transport/inproc"
)

// Config describes one sweep: every combination of Ns x Ps is run
// Trials times.
type Config struct {
	Ns       []uint64 `json:"ns"`
	Ps       []int    `json:"ps"`
	Trials   int      `json:"trials"`
	SeedBase int64    `json:"seedBase"`
}

type Logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
}

type counter struct {
	mu sync.Mutex
	c  int64
}

func (c *counter) inc() int64 {
	c.mu.Lock()
	c.c++
	v := c.c
	c.mu.Unlock()
	return v
}

type periodicLogger struct {
	log    Logger
	done   chan struct{}
	prDone <-chan struct{}
}

func openPeriodicLogger(log Logger, period time.Duration, out func(l Logger)) *periodicLogger {
	if log == nil {
		return nil
	}
	pdone := make(chan struct{})
	l := &periodicLogger{log: log, done: make(chan struct{}), prDone: pdone}
	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		defer close(pdone)
		for {
			select {
			case <-t.C:
				out(l.log)
			case <-l.done:
				out(l.log)
				return
			}
		}
	}()
	return l
}

func (l *periodicLogger) Close() {
	if l == nil {
		return
	}
	close(l.done)
	<-l.prDone
}

// Sweep runs Config's combinations and accumulates per-phase latency
// into Rec.
type Sweep struct {
	Log    Logger
	Config Config
	Rec    *recorders.PhaseRecorder
}

// Run executes every (n, P) combination in order, Trials times each.
// It returns on the first failing permute.Run call; ctx is checked
// between combinations, matching permute.Run's own contract that
// cancellation only ever applies at a call boundary.
func (s *Sweep) Run(ctx context.Context) error {
	done := new(counter)
	total := int64(len(s.Config.Ns) * len(s.Config.Ps) * s.Config.Trials)

	msgLogger := openPeriodicLogger(s.Log, 10*time.Second, func(l Logger) {
		done.mu.Lock()
		n := done.c
		done.mu.Unlock()
		l.Printf("%d/%d runs complete", n, total)
	})
	defer msgLogger.Close()

	for _, n := range s.Config.Ns {
		for _, p := range s.Config.Ps {
			for trial := 0; trial < s.Config.Trials; trial++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.runOne(ctx, n, p, trial); err != nil {
					return err
				}
				done.inc()
			}
		}
	}
	return nil
}

func (s *Sweep) runOne(ctx context.Context, n uint64, p int, trial int) error {
	groups := inproc.NewWorld(p)
	tgs := make([]*timingGroup, p)
	for i, g := range groups {
		tgs[i] = &timingGroup{Group: g}
	}

	parent := rngadapter.PerRank(s.Config.SeedBase+int64(trial), 0)
	shards := rngadapter.NewSharded(parent, p)

	var g errgroup.Group
	for r := 0; r < p; r++ {
		r := r
		g.Go(func() error {
			rng := shards.Get(r)

			wallStart := time.Now()
			_, err := permute.Run(ctx, n, tgs[r], rng)
			wall := time.Since(wallStart)
			if err != nil {
				return err
			}

			scatterTime := tgs[r].Scatter()
			redistributeTime := tgs[r].Redistribute()
			shuffleTime := wall - scatterTime - redistributeTime
			if shuffleTime < 0 {
				shuffleTime = 0
			}
			s.Rec.Scatter.Record(scatterTime, nil)
			s.Rec.Shuffle.Record(shuffleTime, nil)
			s.Rec.Redistribute.Record(redistributeTime, nil)
			return nil
		})
	}
	return g.Wait()
}
