package train

import (
	"time"

	"github.com/rs/zerolog"
)

// EvaluationEpoch is the Epoch value of records produced by Evaluate.
const EvaluationEpoch = -1

// EpochRecord summarises one completed training epoch.
type EpochRecord struct {
	Epoch    int
	Correct  int
	Total    int
	Accuracy float64
	// Loss is the mean half squared error, measured before each update.
	Loss float64
	// Patience is the number of consecutive non-improving epochs so far.
	Patience int
	Best     int
	Elapsed  time.Duration
	// Stop is set on the epoch that triggered early stopping.
	Stop bool
}

// SampleRecord is the outcome of one sample. During training the
// prediction is taken after that sample's weight update.
type SampleRecord struct {
	Epoch     int
	Index     int
	Predicted int
	True      int
	// Outputs is a copy of the output activations, set by Evaluate only.
	Outputs []float64
}

// Correct reports whether the prediction matched the true label.
func (r SampleRecord) Correct() bool {
	return r.Predicted == r.True
}

// Observer receives training and evaluation progress.
type Observer interface {
	OnEpoch(EpochRecord)
	OnSample(SampleRecord)
}

// Option configures Train and Evaluate.
type Option func(*options)

type options struct {
	logger    zerolog.Logger
	observers []Observer
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver adds an observer; it may be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func newOptions(opts []Option) *options {
	o := &options{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *options) epoch(r EpochRecord) {
	for _, obs := range o.observers {
		obs.OnEpoch(r)
	}
}

func (o *options) sample(r SampleRecord) {
	for _, obs := range o.observers {
		obs.OnSample(r)
	}
}
