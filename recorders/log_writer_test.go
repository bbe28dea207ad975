package recorders

import (
	"errors"
	"io"
	"io/ioutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uluyol/hdrhist"
)

// MemoryMultiLogWriter exists so tests that want to assert on the
// bytes a MultiLogWriter produces don't have to go through a temp
// directory and gzip the way mLogWriter does for cmd/permute bench's
// real output.

func TestMemoryMultiLogWriterWriteAllIncludesLegend(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	mw := NewMemoryMultiLogWriter(start)

	err := mw.WriteAll(func(lw *hdrhist.LogWriter) error { return nil })
	require.NoError(t, err)
	require.NoError(t, mw.Err())

	body, err := ioutil.ReadAll(mw.AllReader())
	require.NoError(t, err)
	require.NotEmpty(t, body)
}

func TestMemoryMultiLogWriterWritePerNameIsolatesBuffers(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	mw := NewMemoryMultiLogWriter(start)

	for _, name := range []string{"scatter", "redistribute"} {
		require.NoError(t, mw.Write(name, func(lw *hdrhist.LogWriter) error { return nil }))
	}

	scatter, err := ioutil.ReadAll(mw.Reader("scatter"))
	require.NoError(t, err)
	redistribute, err := ioutil.ReadAll(mw.Reader("redistribute"))
	require.NoError(t, err)

	require.NotEmpty(t, scatter)
	require.NotEmpty(t, redistribute)

	var nilReader io.Reader = mw.Reader("missing")
	require.Nil(t, nilReader)
}

func TestMemoryMultiLogWriterStopsAfterFirstError(t *testing.T) {
	mw := NewMemoryMultiLogWriter(time.Unix(1_700_000_000, 0))
	wantErr := errors.New("boom")

	err := mw.Write("scatter", func(lw *hdrhist.LogWriter) error { return wantErr })
	require.Equal(t, wantErr, err)
	require.Equal(t, wantErr, mw.Err())

	// Once err is set, further calls return it without doing any work.
	err = mw.WriteAll(func(lw *hdrhist.LogWriter) error {
		t.Fatal("WriteAll should not invoke its callback after a prior error")
		return nil
	})
	require.Equal(t, wantErr, err)
}
