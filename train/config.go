package train

import (
	"errors"
	"fmt"
)

// ErrConfig is returned when training parameters are out of range.
var ErrConfig = errors.New("invalid training config")

// Config holds the training parameters.
type Config struct {
	Epochs       int
	LearningRate float64
	BatchSize    int
	// Patience is the number of consecutive non-improving epochs tolerated
	// before training halts.
	Patience int
}

// DefaultConfig returns 4 epochs at rate 0.001 in batches of 32 with a
// patience of 5.
func DefaultConfig() Config {
	return Config{
		Epochs:       4,
		LearningRate: 0.001,
		BatchSize:    32,
		Patience:     5,
	}
}

// Validate checks that every parameter is in range.
func (c Config) Validate() error {
	if c.Epochs <= 0 {
		return fmt.Errorf("%w: epochs must be positive, got %d", ErrConfig, c.Epochs)
	}
	if !(c.LearningRate > 0) {
		return fmt.Errorf("%w: learning rate must be positive, got %g", ErrConfig, c.LearningRate)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrConfig, c.BatchSize)
	}
	if c.Patience < 0 {
		return fmt.Errorf("%w: patience must not be negative, got %d", ErrConfig, c.Patience)
	}
	return nil
}
