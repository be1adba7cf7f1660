// mlp-dotp: times the inner-product strategies against each other
//
// Usage:
//
//	mlp-dotp -n=784 -iters=100000 -workers=4
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/exp/rand"

	"mlp/kernel"
	"mlp/utils"
)

var (
	n        = flag.Int("n", 784, "Vector length")
	iters    = flag.Int("iters", 10000, "Dot products per strategy")
	seed     = flag.Uint64("seed", 1, "Random seed")
	workers  = flag.Int("workers", 0, "Parallel workers (0 = NumCPU)")
	minChunk = flag.Int("min-chunk", 0, "Minimum elements per parallel chunk (0 = default)")
)

type result struct {
	name    string
	value   float64
	elapsed time.Duration
}

func main() {
	flag.Parse()
	if *n < 0 || *iters <= 0 {
		fmt.Fprintln(os.Stderr, "-n must not be negative and -iters must be positive")
		os.Exit(2)
	}

	rng := rand.New(rand.NewSource(*seed))
	a := make([]float64, *n)
	b := make([]float64, *n)
	for i := range a {
		a[i] = rng.Float64()*2 - 1
		b[i] = rng.Float64()*2 - 1
	}

	strategies := []kernel.InnerProduct{
		kernel.Sequential{},
		kernel.NewParallel(*workers, *minChunk),
		kernel.Vector{},
	}

	fmt.Printf("Vector length %d, %d iterations, cpu features: %s\n\n", *n, *iters, kernel.Features())

	results := make([]result, 0, len(strategies))
	for _, k := range strategies {
		var v float64
		start := time.Now()
		for i := 0; i < *iters; i++ {
			v = k.Dot(a, b)
		}
		results = append(results, result{name: k.Name(), value: v, elapsed: time.Since(start)})
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "strategy\tresult\ttotal\tper call (µs)\t|diff| vs sequential")
	base := results[0].value
	maxDiff := 0.0
	for _, r := range results {
		diff := math.Abs(r.value - base)
		maxDiff = math.Max(maxDiff, diff)
		fmt.Fprintf(w, "%s\t%.12g\t%v\t%.3f\t%.3g\n",
			r.name, r.value, r.elapsed, utils.DurationUS(r.elapsed)/float64(*iters), diff)
	}
	w.Flush()
	fmt.Printf("\nMax disagreement: %.3g\n", maxDiff)
}
