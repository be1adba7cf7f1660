package dataset

import (
	"gonum.org/v1/gonum/stat"

	"mlp/train"
)

// Moments returns the per-feature mean and population standard deviation
// of the sample inputs. It returns nil slices for an empty dataset.
func Moments(samples []train.Sample) (mean, std []float64) {
	if len(samples) == 0 {
		return nil, nil
	}
	width := len(samples[0].Input)
	mean = make([]float64, width)
	std = make([]float64, width)

	column := make([]float64, len(samples))
	for j := 0; j < width; j++ {
		for i, s := range samples {
			column[i] = s.Input[j]
		}
		mean[j] = stat.Mean(column, nil)
		std[j] = stat.PopStdDev(column, nil)
	}
	return mean, std
}

// Standardize shifts each feature by mean and divides it by std, in place.
// Features with zero deviation are only shifted. A trailing bias channel
// should be excluded by passing skip = 1.
func Standardize(samples []train.Sample, mean, std []float64, skip int) {
	for _, s := range samples {
		for j := 0; j < len(s.Input)-skip && j < len(mean); j++ {
			s.Input[j] -= mean[j]
			if std[j] != 0 {
				s.Input[j] /= std[j]
			}
		}
	}
}
