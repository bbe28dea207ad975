// Command permutestat reads one or more phase-latency histogram files
// written by "permute bench" and prints their percentile/value pairs
// as CSV, performing no verification of permutation correctness
// itself — only of timing, the same separation of concerns
// cmd/fabcdfs keeps between reading a recorded log and judging it.
package main

import (
	"bufio"
	"compress/gzip"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/distperm/paraperm/readers"
)

var merge = flag.Bool("merge", false, "merge repeated values at the same percentile")

func usage() {
	fmt.Fprintln(os.Stderr, "usage: permutestat [flags] file.bin[.gz]...")
	fmt.Fprintln(os.Stderr, "\nOUTPUT FORMAT")
	fmt.Fprintln(os.Stderr, "\t#start File=NAME NumSamples=K StartTime=TIME")
	fmt.Fprintln(os.Stderr, "\tPercentile,Micros")
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	log.SetPrefix("permutestat: ")
	log.SetFlags(0)
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	for _, p := range flag.Args() {
		if err := procFile(p, w); err != nil {
			log.Fatalf("%s: %v", p, err)
		}
	}
}

func procFile(p string, w io.Writer) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(p, ".gz") {
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		r = gr
	}

	lat, err := readers.ReadLatency(bufio.NewReader(r))
	if err != nil {
		return err
	}

	vals := lat.AllVals()
	fmt.Fprintf(w, "#start File=%s NumSamples=%d StartTime=%s\n",
		filepath.Base(p), len(vals), lat.Start().Format(time.RFC3339))

	var lastPct float64 = -1
	for _, v := range vals {
		if *merge && v.Percentile == lastPct {
			continue
		}
		lastPct = v.Percentile
		fmt.Fprintf(w, "%f,%d\n", v.Percentile, v.Value/time.Microsecond)
	}
	return nil
}
