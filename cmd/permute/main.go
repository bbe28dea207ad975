package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"log"

	"github.com/google/subcommands"
	"github.com/pkg/profile"
)

const formatsDoc = `
CONFIG FORMAT (run)
	{
		"n": 1000000,
		"rank": 0,
		"size": 4,
		"seedBase": 1,
		"coordinator": "host:port",
		"transport": {
			"name": "inproc" | "tcp",
			"peers": ["host1:port", "host2:port", ...]
		}
	}

	"coordinator" is optional. When set, "transport.peers[rank]" is the
	address this rank listens on, and the full peer table is learned
	from the coordinator instead of read verbatim from the config.

	"transport.name" of "inproc" ignores "rank" and "coordinator" and
	instead simulates every one of "size" ranks as a goroutine in this
	one process, the same way the engine's own tests do.

CONFIG FORMAT (bench)
	{
		"bench": {
			"ns": [0, 1, 1000, 1000000],
			"ps": [1, 4, 16],
			"trials": 5,
			"seedBase": 1
		}
	}
`

type nopStop struct{}

func (nopStop) Stop() {}

// baseFlags adds the -profiledir/-profile flags fabbench's subcommands
// share, wired to github.com/pkg/profile the same way.
type baseFlags struct {
	profPath string
	prof     string
}

func (f *baseFlags) setupProfiling() interface{ Stop() } {
	if f.profPath != "" {
		opts := []func(*profile.Profile){profile.ProfilePath(f.profPath)}
		switch f.prof {
		case "cpu":
			opts = append(opts, profile.CPUProfile)
		case "mutex":
			opts = append(opts, profile.MutexProfile)
		case "block":
			opts = append(opts, profile.BlockProfile)
		}
		return profile.Start(opts...)
	}
	return nopStop{}
}

func (f *baseFlags) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.profPath, "profiledir", "", "turn profiling on and write profiles to this directory")
	fs.StringVar(&f.prof, "profile", "cpu", "resource to profile (possible values: cpu, mutex, block)")
}

type formatsCmd struct{}

func (formatsCmd) Name() string           { return "formats" }
func (formatsCmd) Synopsis() string       { return "describes the run and bench config formats" }
func (formatsCmd) Usage() string          { return "" }
func (formatsCmd) SetFlags(*flag.FlagSet) {}

func (formatsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Fprint(os.Stderr, formatsDoc)
	return subcommands.ExitSuccess
}

func main() {
	log.SetPrefix("permute: ")
	log.SetFlags(0)
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")
	subcommands.Register(formatsCmd{}, "")
	subcommands.Register(new(runCmd), "")
	subcommands.Register(new(benchCmd), "")
	subcommands.Register(new(coordinateCmd), "")

	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}
