package kernel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// defaultMinChunk is the smallest slice a single worker is given.
const defaultMinChunk = 64

// Parallel splits the vectors into contiguous chunks, reduces each chunk on
// a bounded pool of goroutines and sums the partial results in chunk order
// once every worker has finished.
type Parallel struct {
	Workers  int // maximum number of concurrent workers
	MinChunk int // vectors shorter than this are reduced sequentially
}

// NewParallel returns a Parallel strategy. Non-positive arguments select
// runtime.NumCPU() workers and a minimum chunk of 64 elements.
func NewParallel(workers, minChunk int) Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if minChunk <= 0 {
		minChunk = defaultMinChunk
	}
	return Parallel{Workers: workers, MinChunk: minChunk}
}

func (Parallel) Name() string { return "parallel" }

func (p Parallel) Dot(a, b []float64) float64 {
	checkLen(a, b)

	n := len(a)
	workers := p.Workers
	minChunk := max(p.MinChunk, 1)
	if workers <= 1 || n < minChunk {
		return dot(a, b)
	}

	chunk := max((n+workers-1)/workers, minChunk)
	chunks := (n + chunk - 1) / chunk
	partial := make([]float64, chunks)

	var g errgroup.Group
	g.SetLimit(workers)
	for c := 0; c < chunks; c++ {
		c := c
		start := c * chunk
		end := min(start+chunk, n)
		g.Go(func() error {
			partial[c] = dot(a[start:end], b[start:end])
			return nil
		})
	}
	// workers never fail
	_ = g.Wait()

	sum := 0.0
	for _, s := range partial {
		sum += s
	}
	return sum
}
