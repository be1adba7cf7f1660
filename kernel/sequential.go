package kernel

// Sequential accumulates the products in index order with one accumulator.
type Sequential struct{}

func (Sequential) Name() string { return "sequential" }

func (Sequential) Dot(a, b []float64) float64 {
	checkLen(a, b)
	return dot(a, b)
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
