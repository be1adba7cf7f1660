package kernel

import "math"

// Sigmoid is the logistic activation 1 / (1 + e^-x).
func Sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// DSigmoid is the derivative of Sigmoid expressed through its output.
// y must already be an activation, i.e. y = Sigmoid(x), since
// Sigmoid'(x) = Sigmoid(x) * (1 - Sigmoid(x)).
func DSigmoid(y float64) float64 {
	return y * (1.0 - y)
}
