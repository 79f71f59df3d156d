package deepnet

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/sharnoff/deepnet/activations"
)

// ****************************************
// Output modes
// ****************************************

// OutputMode determines how the values of a layer are presented when it is the output layer:
// either directly, or normalized into probabilities. The implementations are Direct, Sigmoid and
// Softmax.
type OutputMode interface {
	// Output returns the values as presented to the caller. The argument is not modified.
	Output(values []float64) []float64

	// Probabilities returns whether Output gives normalized probabilities
	Probabilities() bool

	TypeString() string

	outputMode()
}

// Direct presents the values of the layer unchanged
type Direct struct{}

// Sigmoid presents each value of the layer passed through the logistic function, as independent
// probabilities.
type Sigmoid struct{}

// Softmax presents the values of the layer as the probabilities of mutually exclusive classes.
type Softmax struct{}

func (Direct) Output(values []float64) []float64 {
	return append([]float64(nil), values...)
}

func (Sigmoid) Output(values []float64) []float64 {
	ps := make([]float64, len(values))
	for i, v := range values {
		ps[i] = 1 / (1 + math.Exp(-v))
	}

	return ps
}

func (Softmax) Output(values []float64) []float64 {
	ps := make([]float64, len(values))
	if len(values) == 0 {
		return ps
	}

	// shifting by the max keeps exp from overflowing; the result is the same
	max := floats.Max(values)
	for i, v := range values {
		ps[i] = math.Exp(v - max)
	}

	floats.Scale(1/floats.Sum(ps), ps)
	return ps
}

func (Direct) Probabilities() bool  { return false }
func (Sigmoid) Probabilities() bool { return true }
func (Softmax) Probabilities() bool { return true }

func (Direct) TypeString() string  { return "direct" }
func (Sigmoid) TypeString() string { return "sigmoid" }
func (Softmax) TypeString() string { return "softmax" }

func (Direct) outputMode()  {}
func (Sigmoid) outputMode() {}
func (Softmax) outputMode() {}

// ParseOutputMode returns the OutputMode with the given TypeString. The empty string gives Direct.
func ParseOutputMode(name string) (OutputMode, error) {
	switch name {
	case "", Direct{}.TypeString():
		return Direct{}, nil
	case Sigmoid{}.TypeString():
		return Sigmoid{}, nil
	case Softmax{}.TypeString():
		return Softmax{}, nil
	}

	return nil, errors.Errorf("unknown output mode %q", name)
}

// ****************************************
// Layer
// ****************************************

// Layer describes a single fully connected layer: its size, activation function, and output mode.
// Layers are immutable once created.
type Layer struct {
	nodes int
	fn    activations.Func
	mode  OutputMode
}

// NewLayer returns a Layer with the given number of nodes, using the activation function with the
// given ID from the registry. A nil mode is Direct.
func NewLayer(reg activations.Registry, nodes int, id activations.ID, mode OutputMode) (*Layer, error) {
	if nodes < 1 {
		return nil, errors.Errorf("layer must have at least one node (got %d)", nodes)
	}

	fn, ok := reg.Get(id)
	if !ok {
		return nil, errors.Errorf("activation function %v is not registered", id)
	}

	if mode == nil {
		mode = Direct{}
	}

	return &Layer{nodes: nodes, fn: fn, mode: mode}, nil
}

// Nodes returns the number of nodes in the layer
func (l *Layer) Nodes() int {
	return l.nodes
}

// Activation returns the activation function of the layer
func (l *Layer) Activation() activations.Func {
	return l.fn
}

// Mode returns the output mode of the layer
func (l *Layer) Mode() OutputMode {
	return l.mode
}

// NumWeights returns the number of weights feeding into the layer from a previous layer with
// prevNodes nodes.
func (l *Layer) NumWeights(prevNodes int) int {
	return prevNodes * l.nodes
}
