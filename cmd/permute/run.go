package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/subcommands"
	"golang.org/x/sync/errgroup"

	"github.com/distperm/paraperm/coordinator"
	"github.com/distperm/paraperm/internal/rngadapter"
	"github.com/distperm/paraperm/permute"
	"github.com/distperm/paraperm/transport"
	"github.com/distperm/paraperm/transport/inproc"
	_ "github.com/distperm/paraperm/transport/tcp"
)

type runCmd struct {
	configPath string
	baseFlags
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "run one invocation of the permutation engine" }
func (*runCmd) Usage() string {
	return "run -config FILE\n\nSee 'permute formats' for the config schema.\n"
}

func (c *runCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file path")
	c.baseFlags.SetFlags(fs)
}

func (c *runCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	defer c.setupProfiling().Stop()

	cfg, err := loadRunConfig(c.configPath)
	if err != nil {
		log.Fatal(err)
	}

	fn := runInproc
	if cfg.Transport.Name != "inproc" {
		fn = runRemote
	}

	if err := fn(ctx, cfg); err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// runInproc simulates every rank of the group as a goroutine in this
// one process, the mode the engine's own tests and small scale
// experiments use.
func runInproc(ctx context.Context, cfg *runConfig) error {
	groups := inproc.NewWorld(cfg.Size)
	results := make([][]uint64, cfg.Size)

	var g errgroup.Group
	for r := 0; r < cfg.Size; r++ {
		r := r
		g.Go(func() error {
			rng := rngadapter.PerRank(cfg.SeedBase, uint64(r))
			out, err := permute.Run(ctx, cfg.N, groups[r], rng)
			if err != nil {
				return fmt.Errorf("rank %d: %w", r, err)
			}
			results[r] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for r, out := range results {
		fmt.Printf("rank %d: %d elements\n", r, len(out))
	}
	return nil
}

// runRemote acts as exactly one rank of a group spread across OS
// processes, dialing the named transport and, if a coordinator
// address is set, using it to learn the rest of the peer table before
// dialing.
func runRemote(ctx context.Context, cfg *runConfig) error {
	addrs := cfg.Transport.Peers
	if cfg.Coordinator != "" {
		client, err := coordinator.Dial(cfg.Coordinator)
		if err != nil {
			return fmt.Errorf("dial coordinator: %w", err)
		}
		defer client.Close()
		addrs, err = client.Rendezvous(ctx, cfg.Rank, cfg.Size, cfg.Transport.Peers[cfg.Rank])
		if err != nil {
			return fmt.Errorf("rendezvous: %w", err)
		}
	}

	group, err := transport.Dial(cfg.Transport.Name, cfg.Rank, addrs, nil)
	if err != nil {
		return err
	}
	if closer, ok := group.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	rng := rngadapter.PerRank(cfg.SeedBase, uint64(cfg.Rank))
	out, err := permute.Run(ctx, cfg.N, group, rng)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "rank %d: %d elements\n", cfg.Rank, len(out))
	return nil
}
