package nn

import "errors"

var (
	// ErrShape reports a layer or network whose dimensions are invalid.
	ErrShape = errors.New("shape mismatch")
	// ErrInputShape reports an input or label vector whose width does not
	// match the network it is fed to.
	ErrInputShape = errors.New("input shape mismatch")
	// ErrAllocation reports a layer too large to allocate.
	ErrAllocation = errors.New("allocation failed")
)
