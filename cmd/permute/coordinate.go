package main

import (
	"context"
	"flag"
	"log"
	"net"

	"github.com/google/subcommands"
	"google.golang.org/grpc"

	"github.com/distperm/paraperm/coordinator"
)

type coordinateCmd struct {
	addr string
	size int
}

func (*coordinateCmd) Name() string     { return "coordinate" }
func (*coordinateCmd) Synopsis() string { return "run the rendezvous service the tcp transport uses to learn peer addresses" }
func (*coordinateCmd) Usage() string {
	return "coordinate -addr HOST:PORT -size N\n"
}

func (c *coordinateCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", ":9000", "address to listen on")
	fs.IntVar(&c.size, "size", 0, "number of ranks expected to join")
}

func (c *coordinateCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.size <= 0 {
		log.Print("coordinate: -size must be positive")
		return subcommands.ExitUsageError
	}

	ln, err := net.Listen("tcp", c.addr)
	if err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}
	defer ln.Close()

	grpcServer := grpc.NewServer()
	coordinator.Serve(grpcServer, coordinator.NewServer(c.size))

	log.Printf("coordinate: listening on %s for %d ranks", c.addr, c.size)
	if err := grpcServer.Serve(ln); err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
