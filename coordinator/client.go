package coordinator

import (
	"context"
	"fmt"

	"google.golang.org/grpc"

	"github.com/distperm/paraperm/coordinator/pb"
)

// Client talks to a Server to learn every rank's transport address.
type Client struct {
	cc *grpc.ClientConn
	c  pb.CoordinatorClient
}

// Dial connects to the coordinator at addr, the same one-shot
// grpc.Dial-and-wrap the eckv client backend uses.
func Dial(addr string) (*Client, error) {
	cc, err := grpc.Dial(addr, grpc.WithInsecure())
	if err != nil {
		return nil, fmt.Errorf("coordinator: unable to connect to %s: %v", addr, err)
	}
	return &Client{cc: cc, c: pb.NewCoordinatorClient(cc)}, nil
}

// Rendezvous announces this rank's transport address and blocks until
// every other rank in a group of size has done the same, returning
// the full address table in rank order.
func (c *Client) Rendezvous(ctx context.Context, rank, size int, addr string) ([]string, error) {
	_, err := c.c.Join(ctx, &pb.JoinRequest{Rank: int32(rank), Addr: addr, Size: int32(size)})
	if err != nil {
		return nil, fmt.Errorf("coordinator: join: %v", err)
	}
	resp, err := c.c.WaitForPeers(ctx, &pb.PeersRequest{})
	if err != nil {
		return nil, fmt.Errorf("coordinator: wait for peers: %v", err)
	}
	return resp.Addrs, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}
