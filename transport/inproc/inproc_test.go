package inproc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllToAllDeliversEachRanksValue(t *testing.T) {
	groups := NewWorld(4)
	var wg sync.WaitGroup
	recvs := make([][]uint64, 4)
	for r, g := range groups {
		wg.Add(1)
		go func(r int, g interface {
			AllToAll(send []uint64) ([]uint64, error)
		}) {
			defer wg.Done()
			send := make([]uint64, 4)
			for j := range send {
				send[j] = uint64(r*10 + j)
			}
			recv, err := g.AllToAll(send)
			require.NoError(t, err)
			recvs[r] = recv
		}(r, g)
	}
	wg.Wait()

	for r := 0; r < 4; r++ {
		for j := 0; j < 4; j++ {
			require.Equal(t, uint64(j*10+r), recvs[r][j])
		}
	}
}

func TestScanSumIsExclusivePrefix(t *testing.T) {
	groups := NewWorld(5)
	var wg sync.WaitGroup
	out := make([]uint64, 5)
	for r, g := range groups {
		wg.Add(1)
		go func(r int, g interface {
			ScanSum(uint64) (uint64, error)
		}) {
			defer wg.Done()
			v, err := g.ScanSum(uint64(r + 1))
			require.NoError(t, err)
			out[r] = v
		}(r, g)
	}
	wg.Wait()

	want := []uint64{0, 1, 3, 6, 10}
	require.Equal(t, want, out)
}

func TestPointToPointPreservesPerSenderOrder(t *testing.T) {
	groups := NewWorld(2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		_, err := groups[0].ISend(1, 1, []uint64{1})
		require.NoError(t, err)
		_, err = groups[0].ISend(1, 1, []uint64{2})
		require.NoError(t, err)
	}()

	var got []uint64
	go func() {
		defer wg.Done()
		v1, _, err := groups[1].IRecv(1)
		require.NoError(t, err)
		v2, _, err := groups[1].IRecv(1)
		require.NoError(t, err)
		got = append(got, v1[0], v2[0])
	}()

	wg.Wait()
	require.Equal(t, []uint64{1, 2}, got)
}

// TestIRecvIntoBindsToExplicitSource exercises the case a single-
// sender test can't: two senders racing to deliver same-tag,
// same-length HEADER/PAYLOAD-shaped messages to one receiver. The
// receiver must pair each wildcard-received HEADER with the PAYLOAD
// from that same sender, never the other one's, even though both
// PAYLOADs share a tag and a length.
func TestIRecvIntoBindsToExplicitSource(t *testing.T) {
	groups := NewWorld(3)

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

func TestBarrierReleasesAllRanks(t *testing.T) {
	groups := NewWorld(8)
	var wg sync.WaitGroup
	for _, g := range groups {
		wg.Add(1)
		go func(g interface{ Barrier() error }) {
			defer wg.Done()
			require.NoError(t, g.Barrier())
		}(g)
	}
	wg.Wait()
}
