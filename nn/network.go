// Package nn implements a fully-connected feedforward network with sigmoid
// activations trained by backpropagation.
//
// The network has no bias units. A bias is expressed by appending a
// constant 1.0 channel to every input vector, whose weights are then learned
// like any other.
package nn

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"

	"mlp/kernel"
)

// Network is an input layer, zero or more hidden layers and an output layer.
// Each layer's input width equals the neuron count of its predecessor.
type Network struct {
	input       *Layer
	hidden      []*Layer
	hiddenSizes []int
	output      *Layer
	kernel      kernel.InnerProduct
}

// Shape is the neuron count of each layer group.
type Shape struct {
	Input  int
	Hidden []int
	Output int
}

func (s Shape) String() string {
	parts := make([]string, 0, len(s.Hidden)+2)
	parts = append(parts, strconv.Itoa(s.Input))
	for _, h := range s.Hidden {
		parts = append(parts, strconv.Itoa(h))
	}
	parts = append(parts, strconv.Itoa(s.Output))
	return strings.Join(parts, "-")
}

type options struct {
	kernel kernel.InnerProduct
	src    rand.Source
}

// Option configures New.
type Option func(*options)

// WithKernel selects the inner product strategy used by forward and
// backward propagation.
func WithKernel(k kernel.InnerProduct) Option {
	return func(o *options) { o.kernel = k }
}

// WithSource sets the random source the initial weights are drawn from.
func WithSource(src rand.Source) Option {
	return func(o *options) { o.src = src }
}

// WithSeed seeds a fresh random source for the initial weights.
func WithSeed(seed uint64) Option {
	return WithSource(rand.NewSource(seed))
}

// New builds a network with inputSize inputs, one hidden layer per entry of
// hiddenSizes and outputSize outputs. hiddenSizes may be empty, in which case
// the output layer reads the input layer directly. The slice is copied.
//
// Without options the sequential kernel and a source seeded with 0 are used.
func New(inputSize int, hiddenSizes []int, outputSize int, opts ...Option) (*Network, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.kernel == nil {
		o.kernel = kernel.Default()
	}
	if o.src == nil {
		o.src = rand.NewSource(0)
	}

	if inputSize <= 0 {
		return nil, fmt.Errorf("%w: input size must be positive, got %d", ErrShape, inputSize)
	}
	if outputSize <= 0 {
		return nil, fmt.Errorf("%w: output size must be positive, got %d", ErrShape, outputSize)
	}
	for i, h := range hiddenSizes {
		if h <= 0 {
			return nil, fmt.Errorf("%w: hidden layer %d size must be positive, got %d", ErrShape, i, h)
		}
	}

	net := &Network{
		hiddenSizes: append([]int(nil), hiddenSizes...),
		hidden:      make([]*Layer, len(hiddenSizes)),
		kernel:      o.kernel,
	}

	var err error
	net.input, err = NewLayer(inputSize, 0, o.src)
	if err != nil {
		return nil, fmt.Errorf("input layer: %w", err)
	}

	width := inputSize
	for i, size := range net.hiddenSizes {
		net.hidden[i], err = NewLayer(size, width, o.src)
		if err != nil {
			net.Release()
			return nil, fmt.Errorf("hidden layer %d: %w", i, err)
		}
		width = size
	}

	net.output, err = NewLayer(outputSize, width, o.src)
	if err != nil {
		net.Release()
		return nil, fmt.Errorf("output layer: %w", err)
	}

	if err := net.validate(); err != nil {
		net.Release()
		return nil, err
	}
	return net, nil
}

// validate checks that every layer is wired to its predecessor's width.
func (n *Network) validate() error {
	if len(n.hidden) != len(n.hiddenSizes) {
		return fmt.Errorf("%w: %d hidden layers for %d hidden sizes", ErrShape, len(n.hidden), len(n.hiddenSizes))
	}
	layers := n.chain()
	for i := 1; i < len(layers); i++ {
		if got, want := layers[i].InputWidth(), layers[i-1].Size(); got != want {
			return fmt.Errorf("%w: layer %d has input width %d, predecessor has %d neurons", ErrShape, i, got, want)
		}
	}
	for i, h := range n.hidden {
		if h.Size() != n.hiddenSizes[i] {
			return fmt.Errorf("%w: hidden layer %d has %d neurons, want %d", ErrShape, i, h.Size(), n.hiddenSizes[i])
		}
	}
	return nil
}

// chain returns input, hidden and output layers in forward order.
func (n *Network) chain() []*Layer {
	layers := make([]*Layer, 0, len(n.hidden)+2)
	layers = append(layers, n.input)
	layers = append(layers, n.hidden...)
	return append(layers, n.output)
}

// Input returns the input layer.
func (n *Network) Input() *Layer { return n.input }

// Hidden returns the hidden layers in forward order.
func (n *Network) Hidden() []*Layer { return n.hidden }

// HiddenSizes returns a copy of the hidden layer sizes.
func (n *Network) HiddenSizes() []int { return append([]int(nil), n.hiddenSizes...) }

// Output returns the output layer.
func (n *Network) Output() *Layer { return n.output }

// Outputs returns the output layer activations of the last forward pass.
func (n *Network) Outputs() []float64 { return n.output.outputs }

// Kernel returns the inner product strategy in use.
func (n *Network) Kernel() kernel.InnerProduct { return n.kernel }

// Shape returns the neuron count of every layer group.
func (n *Network) Shape() Shape {
	return Shape{
		Input:  n.input.Size(),
		Hidden: n.HiddenSizes(),
		Output: n.output.Size(),
	}
}

func (n *Network) String() string {
	return fmt.Sprintf("Network(%s, kernel=%s)", n.Shape(), n.kernel.Name())
}

// Release drops every layer. The network must not be used afterwards.
// It is a no-op on a nil network.
func (n *Network) Release() {
	if n == nil {
		return
	}
	n.input.Release()
	for _, h := range n.hidden {
		h.Release()
	}
	n.output.Release()
	n.input, n.hidden, n.output = nil, nil, nil
}
