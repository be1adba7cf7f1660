// Package metrics exports training progress as Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"mlp/train"
)

const namespace = "mlp"

// Observer records train.Observer callbacks into Prometheus collectors.
type Observer struct {
	Epochs        prometheus.Counter
	EarlyStops    prometheus.Counter
	Accuracy      prometheus.Gauge
	Correct       prometheus.Gauge
	Loss          prometheus.Gauge
	Patience      prometheus.Gauge
	EpochDuration prometheus.Histogram
	Samples       *prometheus.CounterVec
}

var _ train.Observer = (*Observer)(nil)

// NewObserver creates the collectors, labelled with runID, and registers
// them on reg.
func NewObserver(reg prometheus.Registerer, runID string) (*Observer, error) {
	labels := prometheus.Labels{"run": runID}
	o := &Observer{
		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "epochs_total",
			Help:        "Completed training epochs.",
			ConstLabels: labels,
		}),
		EarlyStops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "early_stops_total",
			Help:        "Training runs halted by the patience threshold.",
			ConstLabels: labels,
		}),
		Accuracy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "epoch_accuracy_percent",
			Help:        "Training accuracy of the last completed epoch.",
			ConstLabels: labels,
		}),
		Correct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "epoch_correct",
			Help:        "Correct predictions in the last completed epoch.",
			ConstLabels: labels,
		}),
		Loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "epoch_loss",
			Help:        "Mean half squared error of the last completed epoch.",
			ConstLabels: labels,
		}),
		Patience: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "patience",
			Help:        "Consecutive epochs without improvement.",
			ConstLabels: labels,
		}),
		EpochDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "epoch_duration_seconds",
			Help:        "Wall time per training epoch.",
			ConstLabels: labels,
			Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "samples_total",
			Help:        "Samples processed, by phase and outcome.",
			ConstLabels: labels,
		}, []string{"phase", "outcome"}),
	}

	for _, c := range []prometheus.Collector{
		o.Epochs, o.EarlyStops, o.Accuracy, o.Correct, o.Loss, o.Patience, o.EpochDuration, o.Samples,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// OnEpoch implements train.Observer.
func (o *Observer) OnEpoch(r train.EpochRecord) {
	o.Epochs.Inc()
	o.Accuracy.Set(r.Accuracy)
	o.Correct.Set(float64(r.Correct))
	o.Loss.Set(r.Loss)
	o.Patience.Set(float64(r.Patience))
	o.EpochDuration.Observe(r.Elapsed.Seconds())
	if r.Stop {
		o.EarlyStops.Inc()
	}
}

// OnSample implements train.Observer.
func (o *Observer) OnSample(r train.SampleRecord) {
	phase := "train"
	if r.Epoch == train.EvaluationEpoch {
		phase = "evaluate"
	}
	outcome := "wrong"
	if r.Correct() {
		outcome = "correct"
	}
	o.Samples.WithLabelValues(phase, outcome).Inc()
}
