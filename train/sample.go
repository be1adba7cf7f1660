package train

import (
	"fmt"

	"mlp/nn"
)

// Sample is one training example: an input vector and its one-hot label.
type Sample struct {
	Input []float64
	Label []float64
}

// TrueLabel returns the first index whose value is exactly 1.0, or 0 when
// the label has no such entry.
func TrueLabel(label []float64) int {
	for i, v := range label {
		if v == 1.0 {
			return i
		}
	}
	return 0
}

// OneHot returns a vector of width classes with 1.0 at class.
func OneHot(class, classes int) []float64 {
	v := make([]float64, classes)
	if class >= 0 && class < classes {
		v[class] = 1.0
	}
	return v
}

func checkSamples(net *nn.Network, samples []Sample) error {
	in, out := net.Input().Size(), net.Output().Size()
	for i, s := range samples {
		if len(s.Input) != in {
			return fmt.Errorf("sample %d: %w: input has %d values, network expects %d", i, nn.ErrInputShape, len(s.Input), in)
		}
		if len(s.Label) != out {
			return fmt.Errorf("sample %d: %w: label has %d values, network has %d outputs", i, nn.ErrInputShape, len(s.Label), out)
		}
	}
	return nil
}

func createBatches(samples []Sample, batchSize int) [][]Sample {
	numBatches := (len(samples) + batchSize - 1) / batchSize
	batches := make([][]Sample, numBatches)

	for i := 0; i < numBatches; i++ {
		startIdx := i * batchSize
		endIdx := startIdx + batchSize
		if endIdx > len(samples) {
			endIdx = len(samples)
		}
		batches[i] = samples[startIdx:endIdx]
	}
	return batches
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
