package tcp

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func freeAddrs(t *testing.T, n int) []string {
	addrs := make([]string, n)
	for i := range addrs {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addrs[i] = ln.Addr().String()
		require.NoError(t, ln.Close())
	}
	return addrs
}

func startGroup(t *testing.T, addrs []string) []*Group {
	n := len(addrs)
	groups := make([]*Group, n)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	for r := 0; r < n; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			g, err := Listen(r, addrs)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			groups[r] = g
		}(r)
	}
	wg.Wait()
	require.NoError(t, firstErr)
	return groups
}

func closeAll(groups []*Group) {
	for _, g := range groups {
		g.Close()
	}
}

func TestAllToAllOverLoopback(t *testing.T) {
	addrs := freeAddrs(t, 3)
	groups := startGroup(t, addrs)
	defer closeAll(groups)

	var wg sync.WaitGroup
	recvs := make([][]uint64, 3)
	for r, g := range groups {
		wg.Add(1)
		go func(r int, g *Group) {
			defer wg.Done()
			send := make([]uint64, 3)
			for j := range send {
				send[j] = uint64(r*10 + j)
			}
			recv, err := g.AllToAll(send)
			require.NoError(t, err)
			recvs[r] = recv
		}(r, g)
	}
	wg.Wait()

	for r := 0; r < 3; r++ {
		for j := 0; j < 3; j++ {
			require.Equal(t, uint64(j*10+r), recvs[r][j])
		}
	}
}

func TestPointToPointOverLoopback(t *testing.T) {
	addrs := freeAddrs(t, 2)
	groups := startGroup(t, addrs)
	defer closeAll(groups)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := groups[0].ISend(1, 1, []uint64{7, 8, 9})
		require.NoError(t, err)
	}()
	var got []uint64
	go func() {
		defer wg.Done()
		v, _, err := groups[1].IRecv(1)
		require.NoError(t, err)
		got = v
	}()
	wg.Wait()
	require.Equal(t, []uint64{7, 8, 9}, got)
}

// TestIRecvIntoBindsToExplicitSourceOverLoopback mirrors inproc's
// equivalent regression test: two peers race to deliver same-tag,
// same-length HEADER/PAYLOAD-shaped messages to a third, and the
// receiver must never pair one sender's HEADER with another's
// PAYLOAD.
func TestIRecvIntoBindsToExplicitSourceOverLoopback(t *testing.T) {
	addrs := freeAddrs(t, 3)
	groups := startGroup(t, addrs)
	defer closeAll(groups)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := groups[1].ISend(0, 1, []uint64{111})
		require.NoError(t, err)
		_, err = groups[1].ISend(0, 2, []uint64{1, 1, 1})
		require.NoError(t, err)
	}()
	go func() {
		defer wg.Done()
		_, err := groups[2].ISend(0, 1, []uint64{222})
		require.NoError(t, err)
		_, err = groups[2].ISend(0, 2, []uint64{2, 2, 2})
		require.NoError(t, err)
	}()
	wg.Wait()

	got := map[int][]uint64{}
	for i := 0; i < 2; i++ {
		header, src, err := groups[0].IRecv(1)
		require.NoError(t, err)
		require.Equal(t, []uint64{uint64(src) * 111}, header)

		payload := make([]uint64, 3)
		require.NoError(t, groups[0].IRecvInto(2, src, payload))
		got[src] = payload
	}

	require.Equal(t, []uint64{1, 1, 1}, got[1])
	require.Equal(t, []uint64{2, 2, 2}, got[2])
}

func TestBarrierOverLoopback(t *testing.T) {
	addrs := freeAddrs(t, 5)
	groups := startGroup(t, addrs)
	defer closeAll(groups)

	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g *Group) {
			defer wg.Done()
			require.NoError(t, g.Barrier())
		}(g)
	}
	wg.Wait()
}

func TestScanSumOverLoopback(t *testing.T) {
	addrs := freeAddrs(t, 4)
	groups := startGroup(t, addrs)
	defer closeAll(groups)

	var wg sync.WaitGroup
	out := make([]uint64, 4)
	for r, g := range groups {
		wg.Add(1)
		go func(r int, g *Group) {
			defer wg.Done()
			v, err := g.ScanSum(uint64(r + 1))
			require.NoError(t, err)
			out[r] = v
		}(r, g)
	}
	wg.Wait()
	require.Equal(t, []uint64{0, 1, 3, 6}, out)
}
