package deepnet

import (
	"github.com/pkg/errors"
)

// Range is a contiguous section of the weight (or gradient) array.
type Range struct {
	Offset int
	Len    int
}

// End returns the index one past the last element of the Range
func (r Range) End() int {
	return r.Offset + r.Len
}

// In returns the section of s covered by the Range. It returns a SizeMismatchError if s is too
// short.
func (r Range) In(s []float64) ([]float64, error) {
	if r.Offset < 0 || r.Len < 0 {
		return nil, errors.Errorf("invalid range [%d, %d)", r.Offset, r.End())
	} else if r.End() > len(s) {
		return nil, SizeMismatchError{"weight range end", r.End(), len(s)}
	}

	return s[r.Offset:r.End():r.End()], nil
}

// weightRanges returns the Range of the weights feeding into each layer
func weightRanges(inputSize int, layers []*Layer) []Range {
	rs := make([]Range, len(layers))
	offset, prev := 0, inputSize
	for i, l := range layers {
		n := l.NumWeights(prev)
		rs[i] = Range{offset, n}
		offset += n
		prev = l.Nodes()
	}

	return rs
}

// LayerData is the working state of a single layer for a single pattern. It is created for one
// evaluation of a batch and discarded afterwards.
//
// The values, deltas and value gradients are owned by the LayerData. The weights and gradients are
// not: the LayerData only holds the Range of the shared arrays that feed into it.
type LayerData struct {
	layer *Layer // nil for the input layer

	values []float64
	// the derivative of the error with respect to each value
	deltas []float64
	// the derivative of the activation function at each node, only recorded while training
	valueGradients []float64

	weights  Range
	prevSize int

	// true for nodes that are kept
	drop []bool
}

// NewInputData returns the LayerData of an input layer. input is used directly, not copied, and is
// never modified. drop may be nil.
func NewInputData(input []float64, drop []bool) (*LayerData, error) {
	if drop != nil && len(drop) != len(input) {
		return nil, SizeMismatchError{"input drop mask", len(input), len(drop)}
	}

	return &LayerData{values: input, drop: drop}, nil
}

// NewLayerData returns the LayerData for a layer whose weights are at r, following a layer with
// prevSize nodes. If training is true, the deltas and value gradients are allocated as well.
// drop may be nil.
func NewLayerData(l *Layer, prevSize int, r Range, drop []bool, training bool) (*LayerData, error) {
	if l == nil {
		return nil, NilArgError{"layer"}
	} else if r.Len != l.NumWeights(prevSize) {
		return nil, SizeMismatchError{"layer weight range", l.NumWeights(prevSize), r.Len}
	} else if drop != nil && len(drop) != l.Nodes() {
		return nil, SizeMismatchError{"layer drop mask", l.Nodes(), len(drop)}
	}

	d := &LayerData{
		layer:    l,
		values:   make([]float64, l.Nodes()),
		weights:  r,
		prevSize: prevSize,
		drop:     drop,
	}

	if training {
		d.deltas = make([]float64, l.Nodes())
		d.valueGradients = make([]float64, l.Nodes())
	}

	return d, nil
}

// Size returns the number of nodes
func (d *LayerData) Size() int {
	return len(d.values)
}

func (d *LayerData) Values() []float64 {
	return d.values
}

func (d *LayerData) Deltas() []float64 {
	return d.deltas
}

func (d *LayerData) ValueGradients() []float64 {
	return d.valueGradients
}

// Weights returns the Range of the weights feeding into the layer
func (d *LayerData) Weights() Range {
	return d.weights
}

// Output returns the values of the layer as given by its output mode. The input layer always
// gives its values directly.
func (d *LayerData) Output() []float64 {
	if d.layer == nil {
		return Direct{}.Output(d.values)
	}

	return d.layer.Mode().Output(d.values)
}

// Dropped returns whether the node at index has been dropped
func (d *LayerData) Dropped(index int) bool {
	return d.drop != nil && !d.drop[index]
}

// masked returns the values with dropped nodes set to zero. If nothing is dropped, the values
// themselves are returned.
func (d *LayerData) masked() []float64 {
	if d.drop == nil {
		return d.values
	}

	m := make([]float64, len(d.values))
	for i, v := range d.values {
		if d.drop[i] {
			m[i] = v
		}
	}

	return m
}
