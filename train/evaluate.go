package train

import (
	"time"

	"mlp/nn"
)

// Evaluation is the outcome of running a dataset through a network
// without updating it.
type Evaluation struct {
	Correct  int
	Total    int
	Accuracy float64
	Records  []SampleRecord
	Elapsed  time.Duration
}

// Evaluate classifies every sample with a forward pass and compares the
// predicted label against the one-hot label. Every input and label must
// match the network width. An empty dataset yields an accuracy of 0.
func Evaluate(net *nn.Network, samples []Sample, opts ...Option) (Evaluation, error) {
	if net == nil {
		return Evaluation{}, ErrNoNetwork
	}
	if err := checkSamples(net, samples); err != nil {
		return Evaluation{}, err
	}
	o := newOptions(opts)
	start := time.Now()

	ev := Evaluation{
		Total:   len(samples),
		Records: make([]SampleRecord, 0, len(samples)),
	}
	for i, s := range samples {
		if err := net.Forward(s.Input); err != nil {
			return ev, err
		}
		rec := SampleRecord{
			Epoch:     EvaluationEpoch,
			Index:     i,
			Predicted: net.PredictedLabel(),
			True:      TrueLabel(s.Label),
			Outputs:   append([]float64(nil), net.Outputs()...),
		}
		if rec.Correct() {
			ev.Correct++
		}
		o.logger.Debug().Int("sample", i).Int("predicted", rec.Predicted).Int("true", rec.True).Msg("evaluated sample")
		o.sample(rec)
		ev.Records = append(ev.Records, rec)
	}

	ev.Accuracy = accuracy(ev.Correct, ev.Total)
	ev.Elapsed = time.Since(start)
	o.logger.Info().
		Int("correct", ev.Correct).
		Int("total", ev.Total).
		Float64("accuracy", ev.Accuracy).
		Dur("elapsed", ev.Elapsed).
		Msg("evaluation complete")
	return ev, nil
}
