package bench

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/distperm/paraperm/recorders"
)

func TestSweepRecordsEveryRun(t *testing.T) {
	s := &Sweep{
		Log: log.New(os.Stderr, "bench_test: ", 0),
		Config: Config{
			Ns:       []uint64{0, 1, 17, 100},
			Ps:       []int{1, 3, 8},
			Trials:   2,
			SeedBase: 42,
		},
		Rec: recorders.NewPhaseRecorder(),
	}

	require.NoError(t, s.Run(context.Background()))

	scatterSamples := len(s.Rec.Scatter.Micros()) + len(s.Rec.Scatter.Millis()) + len(s.Rec.Scatter.Seconds())
	wantRuns := len(s.Config.Ns) * len(s.Config.Ps) * s.Config.Trials
	require.Greater(t, scatterSamples, 0)
	require.LessOrEqual(t, scatterSamples, wantRuns*8) // 8 == largest P in Ps

	redistSamples := len(s.Rec.Redistribute.Micros()) + len(s.Rec.Redistribute.Millis()) + len(s.Rec.Redistribute.Seconds())
	require.Equal(t, scatterSamples, redistSamples)
}

func TestSweepStopsOnCanceledContext(t *testing.T) {
	s := &Sweep{
		Config: Config{
			Ns:     []uint64{10},
			Ps:     []int{2},
			Trials: 1,
		},
		Rec: recorders.NewPhaseRecorder(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.Error(t, s.Run(ctx))
}
