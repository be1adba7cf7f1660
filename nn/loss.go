package nn

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Loss returns half the squared distance between expected and the current
// output activations, the quantity the output deltas of CalculateErrors
// descend.
func (n *Network) Loss(expected []float64) (float64, error) {
	if len(expected) != n.output.Size() {
		return 0, fmt.Errorf("%w: label has %d values, network has %d outputs", ErrInputShape, len(expected), n.output.Size())
	}
	d := floats.Distance(expected, n.output.outputs, 2)
	return d * d / 2, nil
}
