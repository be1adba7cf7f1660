package kernel

import "gonum.org/v1/gonum/floats"

// Vector runs the reduction on gonum's assembly kernel: two packed 2-wide
// accumulators (four lanes) on SSE2, a scalar loop for the remainder.
// Rounding differs slightly from Sequential.
type Vector struct{}

func (Vector) Name() string { return "vector" }

func (Vector) Dot(a, b []float64) float64 {
	checkLen(a, b)
	return floats.Dot(a, b)
}
