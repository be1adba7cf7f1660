// Package dataset loads MNIST-style CSV files into training samples.
//
// Each row holds the class label followed by the raw feature values. Labels
// become one-hot vectors and features are scaled into [0,1]. The network has
// no bias unit, so loaders can append a constant 1.0 input channel instead.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mlp/train"
)

// ErrRow matches every RowError.
var ErrRow = errors.New("malformed row")

// RowError reports a row that could not be turned into a sample.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("at line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrRow) true for any RowError.
func (e *RowError) Is(target error) bool { return target == ErrRow }

// Options describes the file layout and preprocessing.
type Options struct {
	// Features is the number of values after the label. Default 784.
	Features int
	// Classes is the width of the one-hot label. Default 10.
	Classes int
	// MaxRows limits the number of samples read; 0 reads everything.
	MaxRows int
	// Min and Max bound the raw feature values. When both are zero the
	// range defaults to [0,255].
	Min, Max float64
	// Bias appends a constant 1.0 input after the features.
	Bias bool
}

// DefaultOptions returns the MNIST layout.
func DefaultOptions() Options {
	return Options{Features: 784, Classes: 10, Min: 0, Max: 255}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Features == 0 {
		o.Features = d.Features
	}
	if o.Classes == 0 {
		o.Classes = d.Classes
	}
	if o.Min == 0 && o.Max == 0 {
		o.Min, o.Max = d.Min, d.Max
	}
	return o
}

func (o Options) validate() error {
	if o.Features < 0 || o.Classes < 0 || o.MaxRows < 0 {
		return fmt.Errorf("dataset options must not be negative: %+v", o)
	}
	if !(o.Max > o.Min) {
		return fmt.Errorf("value range [%g,%g] is empty", o.Min, o.Max)
	}
	return nil
}

// InputWidth returns the width of the sample inputs, including the bias
// channel when enabled.
func (o Options) InputWidth() int {
	o = o.withDefaults()
	if o.Bias {
		return o.Features + 1
	}
	return o.Features
}

// LoadFile opens path and reads it with LoadCSV.
func LoadFile(path string, opts Options) ([]train.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open dataset %s: %w", path, err)
	}
	defer f.Close()

	samples, err := LoadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return samples, nil
}

// LoadCSV reads samples from r. A first row whose label is not a number is
// taken as a header and skipped.
func LoadCSV(r io.Reader, opts Options) ([]train.Sample, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var samples []train.Sample
	for lineNum := 1; opts.MaxRows == 0 || len(samples) < opts.MaxRows; lineNum++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return samples, &RowError{Line: lineNum, Err: err}
		}
		if lineNum == 1 && isHeader(record) {
			continue
		}
		s, err := parseRecord(record, opts)
		if err != nil {
			return samples, &RowError{Line: lineNum, Err: err}
		}
		samples = append(samples, s)
	}
	return samples, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
	return err != nil
}

func parseRecord(record []string, opts Options) (train.Sample, error) {
	if len(record) != opts.Features+1 {
		return train.Sample{}, fmt.Errorf("expected %d values, got %d", opts.Features+1, len(record))
	}
	label, err := strconv.Atoi(strings.TrimSpace(record[0]))
	if err != nil {
		return train.Sample{}, fmt.Errorf("parsing label: %w", err)
	}
	if label < 0 || label >= opts.Classes {
		return train.Sample{}, fmt.Errorf("label %d outside [0,%d)", label, opts.Classes)
	}

	inputs := make([]float64, opts.InputWidth())
	for i := 0; i < opts.Features; i++ {
		x, err := strconv.ParseFloat(strings.TrimSpace(record[i+1]), 64)
		if err != nil {
			return train.Sample{}, fmt.Errorf("parsing value %d: %w", i, err)
		}
		inputs[i] = x
	}
	Normalize([][]float64{inputs[:opts.Features]}, opts.Min, opts.Max)
	if opts.Bias {
		inputs[opts.Features] = 1.0
	}

	return train.Sample{
		Input: inputs,
		Label: train.OneHot(label, opts.Classes),
	}, nil
}

func scale(x, min, max float64) float64 {
	return (x - min) / (max - min)
}

// Normalize rescales every value from [min,max] to [0,1] in place.
func Normalize(values [][]float64, min, max float64) {
	for _, row := range values {
		for i, x := range row {
			row[i] = scale(x, min, max)
		}
	}
}
