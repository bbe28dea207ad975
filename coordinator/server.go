// Package coordinator is a small gRPC rendezvous service that lets P
// freshly started processes discover each other's transport addresses
// before the permutation engine itself runs a single collective. It
// sits outside the engine's own import graph: the engine only ever
// sees a transport.Group, never a coordinator client.
//
// Grounded on fabbench's db/eckv client, which dials a single gRPC
// endpoint and wraps a generated client stub; adapted here into a
// server side too, since fabbench never implements one of the
// backends it benchmarks.
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"

	"github.com/distperm/paraperm/coordinator/pb"
)

// Server implements pb.CoordinatorServer, collecting one (rank, addr)
// pair from each of Size processes and then handing the full table
// back to every WaitForPeers caller.
type Server struct {
	size int

	mu      sync.Mutex
	cond    *sync.Cond
	addrs   []string
	joined  []bool
	nJoined int
}

func NewServer(size int) *Server {
	s := &Server{
		size:  size,
		addrs: make([]string, size),
		joined: make([]bool, size),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *Server) Join(ctx context.Context, req *pb.JoinRequest) (*pb.JoinResponse, error) {
	if int(req.Size) != s.size {
		return nil, fmt.Errorf("coordinator: rank %d declared group size %d, expected %d", req.Rank, req.Size, s.size)
	}
	if req.Rank < 0 || int(req.Rank) >= s.size {
		return nil, fmt.Errorf("coordinator: rank %d out of range for group size %d", req.Rank, s.size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.joined[req.Rank] {
		s.joined[req.Rank] = true
		s.nJoined++
	}
	s.addrs[req.Rank] = req.Addr
	s.cond.Broadcast()
	return &pb.JoinResponse{}, nil
}

func (s *Server) WaitForPeers(ctx context.Context, req *pb.PeersRequest) (*pb.PeersResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.nJoined < s.size {
		s.cond.Wait()
	}
	return &pb.PeersResponse{Addrs: append([]string{}, s.addrs...)}, nil
}

// Serve registers s on grpcServer. The caller owns the listener and
// the decision of when to call grpcServer.Serve.
func Serve(grpcServer *grpc.Server, s *Server) {
	pb.RegisterCoordinatorServer(grpcServer, s)
}
