package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp/nn"
	"mlp/train"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func samplesFor(f *dto.MetricFamily, phase, outcome string) float64 {
	for _, m := range f.GetMetric() {
		labels := map[string]string{}
		for _, l := range m.GetLabel() {
			labels[l.GetName()] = l.GetValue()
		}
		if labels["phase"] == phase && labels["outcome"] == outcome {
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestObserverRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg, "run-1")
	require.NoError(t, err)

	obs.OnEpoch(train.EpochRecord{Epoch: 0, Correct: 3, Total: 4, Accuracy: 75, Elapsed: time.Millisecond})
	obs.OnEpoch(train.EpochRecord{Epoch: 1, Correct: 3, Total: 4, Accuracy: 75, Loss: 0.125, Patience: 1, Stop: true})
	obs.OnSample(train.SampleRecord{Epoch: 0, Predicted: 1, True: 1})
	obs.OnSample(train.SampleRecord{Epoch: 1, Predicted: 0, True: 1})
	obs.OnSample(train.SampleRecord{Epoch: train.EvaluationEpoch, Predicted: 2, True: 2})

	fams := gather(t, reg)
	assert.Equal(t, 2.0, fams["mlp_epochs_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 1.0, fams["mlp_early_stops_total"].GetMetric()[0].GetCounter().GetValue())
	assert.Equal(t, 75.0, fams["mlp_epoch_accuracy_percent"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 3.0, fams["mlp_epoch_correct"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 0.125, fams["mlp_epoch_loss"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, 1.0, fams["mlp_patience"].GetMetric()[0].GetGauge().GetValue())
	assert.Equal(t, uint64(2), fams["mlp_epoch_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())

	samples := fams["mlp_samples_total"]
	assert.Equal(t, 1.0, samplesFor(samples, "train", "correct"))
	assert.Equal(t, 1.0, samplesFor(samples, "train", "wrong"))
	assert.Equal(t, 1.0, samplesFor(samples, "evaluate", "correct"))

	run := fams["mlp_epochs_total"].GetMetric()[0].GetLabel()
	require.Len(t, run, 1)
	assert.Equal(t, "run", run[0].GetName())
	assert.Equal(t, "run-1", run[0].GetValue())
}

func TestObserverDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewObserver(reg, "a")
	require.NoError(t, err)
	_, err = NewObserver(reg, "a")
	assert.Error(t, err)
}

func TestObserverWithTraining(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := NewObserver(reg, "xor")
	require.NoError(t, err)

	net, err := nn.New(3, []int{2}, 2, nn.WithSeed(2))
	require.NoError(t, err)
	samples := []train.Sample{
		{Input: []float64{0, 0, 1}, Label: []float64{1, 0}},
		{Input: []float64{1, 1, 1}, Label: []float64{0, 1}},
	}

	res, err := train.Train(net, train.Config{Epochs: 3, LearningRate: 0.1, BatchSize: 1, Patience: 5}, samples, train.WithObserver(obs))
	require.NoError(t, err)
	_, err = train.Evaluate(net, samples, train.WithObserver(obs))
	require.NoError(t, err)

	fams := gather(t, reg)
	assert.Equal(t, float64(len(res.Epochs)), fams["mlp_epochs_total"].GetMetric()[0].GetCounter().GetValue())

	total := 0.0
	for _, m := range fams["mlp_samples_total"].GetMetric() {
		total += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(len(samples)*(len(res.Epochs)+1)), total)
}
