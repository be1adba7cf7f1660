// Package kernel holds the numeric primitives the network is built on:
// the logistic activation and the inner product used by every neuron.
//
// The inner product comes in three interchangeable strategies that are
// picked once at startup and handed to the network:
//
//   - Sequential: one accumulator, index order
//   - Parallel:   chunked reduction over a bounded goroutine pool
//   - Vector:     packed SIMD accumulation through gonum's assembly kernel
//
// All strategies are stateless, so a single value can be shared by any
// number of callers.
package kernel

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sys/cpu"
)

// ErrUnknownStrategy is returned by ByName for an unrecognised strategy name.
var ErrUnknownStrategy = errors.New("unknown inner product strategy")

// InnerProduct computes Σ a[i]*b[i] over two vectors of equal length.
type InnerProduct interface {
	Dot(a, b []float64) float64
	Name() string
}

// Default returns the sequential strategy.
func Default() InnerProduct {
	return Sequential{}
}

// Strategies returns one instance of every strategy, in a stable order.
func Strategies() []InnerProduct {
	return []InnerProduct{Sequential{}, NewParallel(0, 0), Vector{}}
}

// ByName resolves a strategy from its name. The short names seq, omp and
// simd are accepted as aliases.
func ByName(name string) (InnerProduct, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "seq", "sequential":
		return Sequential{}, nil
	case "parallel", "omp":
		return NewParallel(0, 0), nil
	case "simd", "vector":
		return Vector{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Features describes the vector extensions available on the host.
func Features() string {
	var feats []string
	if cpu.X86.HasSSE2 {
		feats = append(feats, "sse2")
	}
	if cpu.X86.HasAVX {
		feats = append(feats, "avx")
	}
	if cpu.X86.HasAVX2 {
		feats = append(feats, "avx2")
	}
	if cpu.X86.HasFMA {
		feats = append(feats, "fma")
	}
	if cpu.ARM64.HasASIMD {
		feats = append(feats, "asimd")
	}
	if len(feats) == 0 {
		return "none"
	}
	return strings.Join(feats, ",")
}

func checkLen(a, b []float64) {
	if len(a) != len(b) {
		panic(fmt.Sprintf("kernel: vector lengths differ: %d vs %d", len(a), len(b)))
	}
}
