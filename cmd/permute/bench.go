package main

import (
	"compress/gzip"
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/uluyol/hdrhist"

	"github.com/distperm/paraperm/bench"
	"github.com/distperm/paraperm/recorders"
)

type benchCmd struct {
	configPath string
	outPre     string
	baseFlags
}

func (*benchCmd) Name() string     { return "bench" }
func (*benchCmd) Synopsis() string { return "sweep (n, P) combinations, recording per-phase latency" }
func (*benchCmd) Usage() string {
	return "bench -config FILE -out PREFIX\n\nSee 'permute formats' for the config schema.\n"
}

func (c *benchCmd) SetFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "config file path")
	fs.StringVar(&c.outPre, "out", "permute-bench", "output path prefix")
	c.baseFlags.SetFlags(fs)
}

func (c *benchCmd) Execute(ctx context.Context, fs *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	defer c.setupProfiling().Stop()

	cfg, err := loadBenchConfig(c.configPath)
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	s := &bench.Sweep{
		Log:    log.New(os.Stderr, "permute: bench: ", log.LstdFlags),
		Config: cfg.Bench,
		Rec:    recorders.NewPhaseRecorder(),
	}

	if err := s.Run(ctx); err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}

	if err := s.Rec.WriteTo(c.outPre, gzipFileCreator); err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}

	// Alongside the three fixed-width phase histograms above, drop a
	// standard hdrhist interval log carrying only the sweep's start
	// time: it gives anything that already consumes hdrhist logs
	// (e.g. plotters built against fabbench's own output) a
	// compatible file to find next to ours, even though the sweep's
	// own per-phase samples are recorded in the denser format above.
	// One named sub-log per phase mirrors the fixed-width output's own
	// scatter/shuffle/redistribute split, in the out-sub directory
	// mLogWriter.Write already knows how to create.
	mw := recorders.NewMultiLogWriter(c.outPre+"-hdr", start, gzip.BestSpeed)
	noop := func(lw *hdrhist.LogWriter) error { return nil }
	if err := mw.WriteAll(noop); err != nil {
		log.Print(err)
		return subcommands.ExitFailure
	}
	for _, name := range []string{"scatter", "shuffle", "redistribute"} {
		if err := mw.Write(name, noop); err != nil {
			log.Print(err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}

func gzipFileCreator(name string) (io.WriteCloser, error) {
	f, err := os.Create(name + ".gz")
	if err != nil {
		return nil, err
	}
	return &gzWriteCloser{f: f, gz: gzip.NewWriter(f)}, nil
}

type gzWriteCloser struct {
	f  *os.File
	gz *gzip.Writer
}

func (w *gzWriteCloser) Write(p []byte) (int, error) { return w.gz.Write(p) }

func (w *gzWriteCloser) Close() error {
	if err := w.gz.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
