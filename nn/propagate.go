package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"mlp/kernel"
)

// Forward feeds input through the network. input is copied into the input
// layer unchanged, the error buffers are reset and every following layer
// computes Sigmoid(upstream · weights[j]) for each neuron j. The result is
// read through Outputs.
func (n *Network) Forward(input []float64) error {
	if len(input) != n.input.Size() {
		return fmt.Errorf("%w: input has %d values, network expects %d", ErrInputShape, len(input), n.input.Size())
	}

	copy(n.input.outputs, input)
	for _, h := range n.hidden {
		clear(h.errors)
	}
	clear(n.output.errors)

	upstream := n.input.outputs
	for _, h := range n.hidden {
		n.activate(h, upstream)
		upstream = h.outputs
	}
	n.activate(n.output, upstream)
	return nil
}

func (n *Network) activate(l *Layer, upstream []float64) {
	for j := range l.outputs {
		l.outputs[j] = kernel.Sigmoid(n.kernel.Dot(upstream, l.Row(j)))
	}
}

// CalculateErrors computes the error signal of every output and hidden
// neuron against expected, starting at the output layer and moving back to
// the first hidden layer. No weight is modified, so each hidden layer sees
// its downstream weights as they were during the forward pass.
func (n *Network) CalculateErrors(expected []float64) error {
	if len(expected) != n.output.Size() {
		return fmt.Errorf("%w: label has %d values, network has %d outputs", ErrInputShape, len(expected), n.output.Size())
	}

	out := n.output
	for i, actual := range out.outputs {
		out.errors[i] = (expected[i] - actual) * kernel.DSigmoid(actual)
	}

	downstream := out
	for i := len(n.hidden) - 1; i >= 0; i-- {
		h := n.hidden[i]
		for j := range h.errors {
			sum := 0.0
			for k, e := range downstream.errors {
				sum += e * downstream.Row(k)[j]
			}
			h.errors[j] = sum * kernel.DSigmoid(h.outputs[j])
		}
		downstream = h
	}
	return nil
}

// UpdateWeights applies w[j][k] += rate * error[j] * upstream[k] to the
// output layer and then to every hidden layer, using the errors of the last
// CalculateErrors call.
func (n *Network) UpdateWeights(rate float64) {
	layers := n.chain()
	for i := len(layers) - 1; i > 0; i-- {
		l, upstream := layers[i], layers[i-1].outputs
		for j, e := range l.errors {
			floats.AddScaled(l.Row(j), rate*e, upstream)
		}
	}
}

// Backward runs CalculateErrors followed by UpdateWeights.
func (n *Network) Backward(expected []float64, rate float64) error {
	if err := n.CalculateErrors(expected); err != nil {
		return err
	}
	n.UpdateWeights(rate)
	return nil
}

// PredictedLabel returns the index of the largest output activation. Ties
// resolve to the lowest index.
func (n *Network) PredictedLabel() int {
	return floats.MaxIdx(n.output.outputs)
}
