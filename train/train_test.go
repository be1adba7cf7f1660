package train

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mlp/kernel"
	"mlp/nn"
)

var orSamples = []Sample{
	{Input: []float64{0, 0, 1}, Label: []float64{1, 0}},
	{Input: []float64{0, 1, 1}, Label: []float64{0, 1}},
	{Input: []float64{1, 0, 1}, Label: []float64{0, 1}},
	{Input: []float64{1, 1, 1}, Label: []float64{0, 1}},
}

// constantNetwork always predicts class 0 for non-negative inputs, and the
// tiny learning rate used with it keeps that true for the whole run.
func constantNetwork(t *testing.T) *nn.Network {
	t.Helper()
	net, err := nn.New(2, nil, 2)
	require.NoError(t, err)
	require.NoError(t, net.Output().SetWeights([][]float64{{10, 10}, {-10, -10}}))
	return net
}

func repeat(s Sample, n int) []Sample {
	out := make([]Sample, n)
	for i := range out {
		out[i] = s
	}
	return out
}

type recorder struct {
	epochs  []EpochRecord
	samples []SampleRecord
}

func (r *recorder) OnEpoch(e EpochRecord)   { r.epochs = append(r.epochs, e) }
func (r *recorder) OnSample(s SampleRecord) { r.samples = append(r.samples, s) }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, Config{Epochs: 4, LearningRate: 0.001, BatchSize: 32, Patience: 5}, cfg)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	for name, cfg := range map[string]Config{
		"zero epochs":       {Epochs: 0, LearningRate: 0.1, BatchSize: 1},
		"zero rate":         {Epochs: 1, LearningRate: 0, BatchSize: 1},
		"negative rate":     {Epochs: 1, LearningRate: -1, BatchSize: 1},
		"zero batch":        {Epochs: 1, LearningRate: 0.1, BatchSize: 0},
		"negative patience": {Epochs: 1, LearningRate: 0.1, BatchSize: 1, Patience: -1},
	} {
		assert.ErrorIs(t, cfg.Validate(), ErrConfig, name)
	}
}

func TestTrueLabel(t *testing.T) {
	assert.Equal(t, 2, TrueLabel([]float64{0, 0, 1, 0}))
	assert.Equal(t, 1, TrueLabel([]float64{0, 1, 1}))
	assert.Equal(t, 0, TrueLabel([]float64{0, 0.9, 0}))
	assert.Equal(t, 0, TrueLabel(nil))
}

func TestOneHot(t *testing.T) {
	assert.Equal(t, []float64{0, 0, 1}, OneHot(2, 3))
	assert.Equal(t, []float64{0, 0}, OneHot(5, 2))
}

func TestCreateBatches(t *testing.T) {
	samples := repeat(orSamples[0], 7)
	batches := createBatches(samples, 3)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[2], 1)

	assert.Len(t, createBatches(samples, 10), 1)
	assert.Empty(t, createBatches(nil, 4))
}

func TestTrainRejectsBadInput(t *testing.T) {
	net, err := nn.New(3, []int{2}, 2)
	require.NoError(t, err)
	cfg := Config{Epochs: 1, LearningRate: 0.1, BatchSize: 2}

	_, err = Train(nil, cfg, orSamples)
	assert.ErrorIs(t, err, ErrNoNetwork)

	_, err = Train(net, Config{}, orSamples)
	assert.ErrorIs(t, err, ErrConfig)

	bad := append([]Sample{}, orSamples...)
	bad[2] = Sample{Input: []float64{1, 0}, Label: []float64{0, 1}}
	_, err = Train(net, cfg, bad)
	assert.ErrorIs(t, err, nn.ErrInputShape)
	assert.Contains(t, err.Error(), "sample 2")

	bad[2] = Sample{Input: []float64{1, 0, 1}, Label: []float64{1}}
	_, err = Train(net, cfg, bad)
	assert.ErrorIs(t, err, nn.ErrInputShape)
}

func TestTrainLearnsOR(t *testing.T) {
	for _, k := range kernel.Strategies() {
		t.Run(k.Name(), func(t *testing.T) {
			net, err := nn.New(3, []int{4}, 2, nn.WithKernel(k), nn.WithSeed(7))
			require.NoError(t, err)

			cfg := Config{Epochs: 2000, LearningRate: 0.5, BatchSize: 3, Patience: 2000}
			res, err := Train(net, cfg, orSamples)
			require.NoError(t, err)
			assert.False(t, res.Stopped)
			assert.Len(t, res.Epochs, 2000)
			assert.Equal(t, 4, res.Best)
			assert.Equal(t, 4, res.Last().Correct)
			assert.Equal(t, 100.0, res.Last().Accuracy)
			assert.Less(t, res.Last().Loss, res.Epochs[0].Loss)

			ev, err := Evaluate(net, orSamples)
			require.NoError(t, err)
			assert.Equal(t, 4, ev.Correct)
		})
	}
}

func TestTrainWithoutHiddenLayers(t *testing.T) {
	net, err := nn.New(3, nil, 2, nn.WithSeed(3))
	require.NoError(t, err)

	res, err := Train(net, Config{Epochs: 1000, LearningRate: 0.5, BatchSize: 4, Patience: 1000}, orSamples)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Last().Correct)
}

func TestTrainEarlyStopping(t *testing.T) {
	net := constantNetwork(t)
	samples := repeat(Sample{Input: []float64{1, 1}, Label: []float64{1, 0}}, 5)

	res, err := Train(net, Config{Epochs: 10, LearningRate: 1e-12, BatchSize: 2, Patience: 2}, samples)
	require.NoError(t, err)

	assert.True(t, res.Stopped)
	assert.Equal(t, 3, res.StoppedAt)
	require.Len(t, res.Epochs, 4)
	assert.Equal(t, 5, res.Best)
	for i, e := range res.Epochs {
		assert.Equal(t, i, e.Epoch)
		assert.Equal(t, 5, e.Correct)
		assert.Equal(t, 100.0, e.Accuracy)
		assert.Equal(t, i, e.Patience)
		assert.Equal(t, i == 3, e.Stop)
	}
}

func TestTrainZeroPatience(t *testing.T) {
	net := constantNetwork(t)
	samples := repeat(Sample{Input: []float64{1, 1}, Label: []float64{1, 0}}, 3)

	res, err := Train(net, Config{Epochs: 10, LearningRate: 1e-12, BatchSize: 1, Patience: 0}, samples)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Len(t, res.Epochs, 2)
}

func TestTrainNeverCorrectCountsAsNoImprovement(t *testing.T) {
	net := constantNetwork(t)
	samples := repeat(Sample{Input: []float64{1, 1}, Label: []float64{0, 1}}, 4)

	res, err := Train(net, Config{Epochs: 10, LearningRate: 1e-12, BatchSize: 4, Patience: 2}, samples)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	require.Len(t, res.Epochs, 3)
	assert.Equal(t, 0, res.Best)
	assert.Equal(t, 3, res.Last().Patience)
	assert.Zero(t, res.Last().Accuracy)
}

func TestTrainRunsAllEpochsWithinPatience(t *testing.T) {
	net := constantNetwork(t)
	samples := repeat(Sample{Input: []float64{1, 1}, Label: []float64{1, 0}}, 2)

	res, err := Train(net, Config{Epochs: 3, LearningRate: 1e-12, BatchSize: 8, Patience: 5}, samples)
	require.NoError(t, err)
	assert.False(t, res.Stopped)
	assert.Len(t, res.Epochs, 3)
	assert.Positive(t, res.Timing.TotalTime)
	assert.Positive(t, res.Timing.ForwardPassTime+res.Timing.BackwardPassTime+res.Timing.UpdateTime)
}

func TestTrainEmptyDataset(t *testing.T) {
	net := constantNetwork(t)
	res, err := Train(net, Config{Epochs: 5, LearningRate: 0.1, BatchSize: 1, Patience: 1}, nil)
	require.NoError(t, err)
	assert.True(t, res.Stopped)
	assert.Len(t, res.Epochs, 2)
	assert.Zero(t, res.Last().Accuracy)
}

func TestTrainObserverAndLogger(t *testing.T) {
	net := constantNetwork(t)
	samples := repeat(Sample{Input: []float64{1, 1}, Label: []float64{1, 0}}, 3)

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)
	rec := &recorder{}

	res, err := Train(net, Config{Epochs: 5, LearningRate: 1e-12, BatchSize: 2, Patience: 1}, samples,
		WithLogger(logger), WithObserver(rec), WithObserver(nil))
	require.NoError(t, err)

	assert.Equal(t, res.Epochs, rec.epochs)
	require.Len(t, rec.samples, 3*len(res.Epochs))
	last := rec.samples[len(rec.samples)-1]
	assert.Equal(t, len(res.Epochs)-1, last.Epoch)
	assert.Equal(t, 2, last.Index)
	assert.True(t, last.Correct())
	assert.Nil(t, last.Outputs)

	out := buf.String()
	assert.Contains(t, out, "accuracy after epoch")
	assert.Contains(t, out, "incrementing patience")
	assert.Contains(t, out, "early stopping")
	assert.NotContains(t, out, "trained sample")
}
