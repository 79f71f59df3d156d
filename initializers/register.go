// Package initializers sets the starting weights of a network.
//
// Weights are filled layer by layer, in topology order, using the node count of the preceding
// layer (the input size for the first layer) as the fan-in.
package initializers

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
)

// Strategy names a weight initialization scheme.
type Strategy int8

const (
	// Xavier draws from N(0, √(2/fanIn))
	Xavier Strategy = iota
	// XavierUniform draws from U(-√(2/fanIn), √(2/fanIn))
	XavierUniform
	// Test draws from N(0, 0.1)
	Test
	// LayerSize draws from N(0, √(weights in the layer))
	LayerSize
)

var strategyNames = map[Strategy]string{
	Xavier:        "xavier",
	XavierUniform: "xavier-uniform",
	Test:          "test",
	LayerSize:     "layer-size",
}

func (s Strategy) TypeString() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}

	return "unknown"
}

func (s Strategy) String() string {
	return s.TypeString()
}

// Parse returns the Strategy with the given name
func Parse(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if n == name {
			return s, nil
		}
	}

	return 0, errors.Errorf("unknown initialization strategy %q", name)
}

// Fill sets weights according to the strategy, for a network with the given input size and
// layer node counts. len(weights) must equal the total number of weights of those layers.
//
// Unknown strategies leave the weights untouched.
func Fill(s Strategy, inputSize int, layerSizes []int, weights []float64, src rand.Source) error {
	total, prev := 0, inputSize
	for _, n := range layerSizes {
		total += prev * n
		prev = n
	}

	if total != len(weights) {
		return errors.Errorf("%d weights given for layers needing %d", len(weights), total)
	}

	var gen func(fanIn, numWeights int) sampler
	switch s {
	case Xavier:
		gen = func(fanIn, _ int) sampler { return normal(xavierScale(fanIn), src) }
	case XavierUniform:
		gen = func(fanIn, _ int) sampler { return uniform(xavierScale(fanIn), src) }
	case Test:
		gen = func(_, _ int) sampler { return normal(testSD, src) }
	case LayerSize:
		gen = func(_, numWeights int) sampler { return normal(layerSizeScale(numWeights), src) }
	default:
		return nil
	}

	offset, fanIn := 0, inputSize
	for _, n := range layerSizes {
		num := fanIn * n
		g := gen(fanIn, num)
		for i := offset; i < offset+num; i++ {
			weights[i] = g.Rand()
		}

		offset += num
		fanIn = n
	}

	return nil
}
