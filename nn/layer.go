package nn

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// MaxWeights bounds the number of weights a single layer may hold.
const MaxWeights = 1 << 28

// Layer is a group of neurons that share the same upstream input width.
// Row j of the weight matrix holds the input weights of neuron j.
type Layer struct {
	outputs    []float64
	weights    *mat.Dense // nil when inputWidth == 0
	errors     []float64
	inputWidth int
}

// NewLayer allocates a layer of neurons neurons, each with inputWidth
// weights drawn uniformly from [0, 1) using src. Outputs and errors start
// at zero. An inputWidth of 0 describes a layer without weighted inputs,
// such as the input layer.
func NewLayer(neurons, inputWidth int, src rand.Source) (*Layer, error) {
	if neurons <= 0 {
		return nil, fmt.Errorf("%w: layer needs at least one neuron, got %d", ErrShape, neurons)
	}
	if inputWidth < 0 {
		return nil, fmt.Errorf("%w: negative input width %d", ErrShape, inputWidth)
	}
	if neurons > MaxWeights || (inputWidth > 0 && neurons > MaxWeights/inputWidth) {
		return nil, fmt.Errorf("%w: layer of %d neurons x %d inputs exceeds %d weights",
			ErrAllocation, neurons, inputWidth, MaxWeights)
	}

	l := &Layer{
		outputs:    make([]float64, neurons),
		errors:     make([]float64, neurons),
		inputWidth: inputWidth,
	}
	if inputWidth > 0 {
		l.weights = mat.NewDense(neurons, inputWidth, randomArray(neurons*inputWidth, src))
	}
	return l, nil
}

func randomArray(size int, src rand.Source) []float64 {
	dist := distuv.Uniform{
		Min: 0,
		Max: 1,
		Src: src,
	}

	data := make([]float64, size)
	for i := range data {
		data[i] = dist.Rand()
	}
	return data
}

// Size returns the number of neurons.
func (l *Layer) Size() int { return len(l.outputs) }

// InputWidth returns the number of weights per neuron.
func (l *Layer) InputWidth() int { return l.inputWidth }

// Outputs returns the activations of the layer. The slice aliases the
// layer's storage and is overwritten by every forward pass.
func (l *Layer) Outputs() []float64 { return l.outputs }

// Errors returns the error signals of the last backward pass.
func (l *Layer) Errors() []float64 { return l.errors }

// Row returns the weights of neuron j. The slice aliases the weight matrix.
func (l *Layer) Row(j int) []float64 {
	if l.weights == nil {
		return nil
	}
	return l.weights.RawRowView(j)
}

// Weights exposes the neurons x inputWidth weight matrix, nil for a layer
// without inputs.
func (l *Layer) Weights() *mat.Dense { return l.weights }

// Weight returns the weight connecting input k to neuron j.
func (l *Layer) Weight(j, k int) float64 { return l.weights.At(j, k) }

// SetWeight sets the weight connecting input k to neuron j.
func (l *Layer) SetWeight(j, k int, v float64) { l.weights.Set(j, k, v) }

// SetWeights replaces every weight of the layer. rows must be
// Size() x InputWidth().
func (l *Layer) SetWeights(rows [][]float64) error {
	if len(rows) != l.Size() {
		return fmt.Errorf("%w: got %d weight rows for %d neurons", ErrShape, len(rows), l.Size())
	}
	for j, row := range rows {
		if len(row) != l.inputWidth {
			return fmt.Errorf("%w: neuron %d has %d weights, want %d", ErrShape, j, len(row), l.inputWidth)
		}
	}
	for j, row := range rows {
		copy(l.Row(j), row)
	}
	return nil
}

// Release drops the layer's buffers. It is a no-op on a nil layer.
func (l *Layer) Release() {
	if l == nil {
		return
	}
	l.outputs = nil
	l.errors = nil
	l.weights = nil
}
