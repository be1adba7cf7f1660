// Package train runs the epoch loop over a network: per-sample
// backpropagation grouped into mini-batches, accuracy tracking and early
// stopping.
package train

import (
	"errors"
	"fmt"
	"time"

	"mlp/nn"
	"mlp/utils"
)

// ErrNoNetwork is returned when Train or Evaluate is given a nil network.
var ErrNoNetwork = errors.New("nil network")

// Result is the outcome of a training run.
type Result struct {
	Epochs []EpochRecord
	// Stopped is true when the patience threshold ended the run.
	Stopped   bool
	StoppedAt int
	Best      int
	Timing    utils.TimingStats
}

// Last returns the final epoch record, or a zero record if no epoch ran.
func (r Result) Last() EpochRecord {
	if len(r.Epochs) == 0 {
		return EpochRecord{}
	}
	return r.Epochs[len(r.Epochs)-1]
}

// Train trains net in place on samples. Each sample runs a forward pass
// and a full weight update; batches only group the iteration. After the
// update the predicted label is read from the output activations, which the
// update leaves as the forward pass computed them, and counted against the
// true label.
//
// Training halts once the correct count has failed to beat the best seen
// for more than cfg.Patience consecutive epochs. The weights are those of
// the last epoch run.
func Train(net *nn.Network, cfg Config, samples []Sample, opts ...Option) (Result, error) {
	if net == nil {
		return Result{}, ErrNoNetwork
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if err := checkSamples(net, samples); err != nil {
		return Result{}, err
	}
	o := newOptions(opts)
	log := o.logger

	log.Info().
		Str("network", net.Shape().String()).
		Str("kernel", net.Kernel().Name()).
		Int("samples", len(samples)).
		Int("epochs", cfg.Epochs).
		Float64("learning_rate", cfg.LearningRate).
		Int("batch_size", cfg.BatchSize).
		Int("patience", cfg.Patience).
		Msg("started training")

	var res Result
	start := time.Now()
	batches := createBatches(samples, cfg.BatchSize)
	best, patience := 0, 0

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		epochStart := time.Now()
		correct := 0
		index := 0
		loss := 0.0
		for _, batch := range batches {
			for _, s := range batch {
				rec, l, err := trainOne(net, s, cfg.LearningRate, &res.Timing)
				if err != nil {
					return res, fmt.Errorf("epoch %d sample %d: %w", epoch, index, err)
				}
				loss += l
				if rec.Correct() {
					correct++
				}
				rec.Epoch, rec.Index = epoch, index
				log.Debug().
					Int("epoch", epoch).
					Int("sample", index).
					Int("predicted", rec.Predicted).
					Int("true", rec.True).
					Msg("trained sample")
				o.sample(rec)
				index++
			}
		}

		if correct > best {
			best = correct
			patience = 0
		} else {
			patience++
			log.Info().Int("epoch", epoch).Int("patience", patience).Int("best", best).Msg("no improvement, incrementing patience")
		}

		rec := EpochRecord{
			Epoch:    epoch,
			Correct:  correct,
			Total:    len(samples),
			Accuracy: accuracy(correct, len(samples)),
			Loss:     meanLoss(loss, len(samples)),
			Patience: patience,
			Best:     best,
			Elapsed:  time.Since(epochStart),
			Stop:     patience > cfg.Patience,
		}
		res.Epochs = append(res.Epochs, rec)
		log.Info().
			Int("epoch", epoch).
			Int("correct", correct).
			Int("total", rec.Total).
			Float64("accuracy", rec.Accuracy).
			Float64("loss", rec.Loss).
			Dur("elapsed", rec.Elapsed).
			Msg("accuracy after epoch")
		o.epoch(rec)

		if rec.Stop {
			res.Stopped = true
			res.StoppedAt = epoch
			log.Warn().Int("epoch", epoch).Int("best", best).Msg("early stopping")
			break
		}
	}

	res.Best = best
	res.Timing.TotalTime = time.Since(start)
	log.Info().Dur("elapsed", res.Timing.TotalTime).Int("epochs_run", len(res.Epochs)).Msg("finished training")
	return res, nil
}

// trainOne returns the prediction made after the update and the loss
// measured before it.
func trainOne(net *nn.Network, s Sample, rate float64, stats *utils.TimingStats) (SampleRecord, float64, error) {
	t0 := time.Now()
	if err := net.Forward(s.Input); err != nil {
		return SampleRecord{}, 0, err
	}
	loss, err := net.Loss(s.Label)
	if err != nil {
		return SampleRecord{}, 0, err
	}
	t1 := time.Now()
	if err := net.CalculateErrors(s.Label); err != nil {
		return SampleRecord{}, 0, err
	}
	t2 := time.Now()
	net.UpdateWeights(rate)
	t3 := time.Now()

	stats.ForwardPassTime += t1.Sub(t0)
	stats.BackwardPassTime += t2.Sub(t1)
	stats.UpdateTime += t3.Sub(t2)

	return SampleRecord{
		Predicted: net.PredictedLabel(),
		True:      TrueLabel(s.Label),
	}, loss, nil
}

func meanLoss(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
