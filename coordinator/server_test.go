package coordinator

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/distperm/paraperm/coordinator/pb"
)

func startServer(t *testing.T, size int) (addr string, stop func()) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	gs := grpc.NewServer()
	Serve(gs, NewServer(size))
	go gs.Serve(ln)
	return ln.Addr().String(), gs.Stop
}

func TestRendezvousReturnsFullAddressTable(t *testing.T) {
	const size = 4
	addr, stop := startServer(t, size)
	defer stop()

	results := make([][]string, size)
	var wg sync.WaitGroup
	for r := 0; r < size; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			c, err := Dial(addr)
			require.NoError(t, err)
			defer c.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			table, err := c.Rendezvous(ctx, r, size, "10.0.0.1:9000")
			require.NoError(t, err)
			results[r] = table
		}(r)
	}
	wg.Wait()

	for r := 0; r < size; r++ {
		require.Len(t, results[r], size)
		for _, a := range results[r] {
			require.Equal(t, "10.0.0.1:9000", a)
		}
	}
}

func TestJoinRejectsMismatchedGroupSize(t *testing.T) {
	addr, stop := startServer(t, 3)
	defer stop()

	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.c.Join(context.Background(), &pb.JoinRequest{Rank: 0, Addr: "x", Size: 4})
	require.Error(t, err)
}
