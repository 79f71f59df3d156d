package deepnet

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DropMask records which nodes are kept (true) and which are dropped (false) during a training
// cycle. Row 0 is the input layer, and row i+1 is layer i.
//
// A DropMask is created by the training loop between cycles and only read during them.
type DropMask [][]bool

// Row returns the mask of a single layer, or nil if the DropMask has no such row.
func (m DropMask) Row(i int) []bool {
	if i < 0 || i >= len(m) {
		return nil
	}
	return m[i]
}

// fraction returns the drop fraction for row i, where a missing entry is 0
func fraction(fractions []float64, i int) float64 {
	if i < len(fractions) {
		return fractions[i]
	}
	return 0
}

// NewDropMask draws a new DropMask for a network with the given input size and layers. Each node
// of row i is independently dropped with probability fractions[i]; rows with no fraction given
// keep every node.
func NewDropMask(src rand.Source, inputSize int, layers []*Layer, fractions []float64) DropMask {
	sizes := append([]int{inputSize}, layerSizes(layers)...)

	m := make(DropMask, len(sizes))
	for i, n := range sizes {
		keep := distuv.Bernoulli{P: 1 - fraction(fractions, i), Src: src}

		m[i] = make([]bool, n)
		for j := range m[i] {
			m[i][j] = keep.Rand() == 1
		}
	}

	return m
}

// UsesDropOut returns whether any of the fractions would drop nodes
func UsesDropOut(fractions []float64) bool {
	for _, f := range fractions {
		if f != 0 {
			return true
		}
	}
	return false
}

// DropOutWeightFactor scales the weights feeding each layer by the probability that both ends of
// the connection are kept: (1 - fractions[L]) * (1 - fractions[L-1]), where L = 0 is the input
// layer. If inverse is true, the weights are instead divided by that probability.
//
// Scaling with inverse true and then false (or the reverse) restores the original weights.
func DropOutWeightFactor(weights []float64, inputSize int, layers []*Layer, fractions []float64, inverse bool) error {
	if n := numWeights(inputSize, layers); len(weights) != n {
		return SizeMismatchError{"weights", n, len(weights)}
	}

	for i, r := range weightRanges(inputSize, layers) {
		p := (1 - fraction(fractions, i+1)) * (1 - fraction(fractions, i))
		if p <= 0 {
			return errors.Errorf("drop fractions for layer %d leave no connections", i)
		}

		if inverse {
			p = 1 / p
		}

		ws, _ := r.In(weights)
		floats.Scale(p, ws)
	}

	return nil
}

// DropOutWeightFactor is the package-level DropOutWeightFactor, applied to the layers of the
// Network.
func (net *Network) DropOutWeightFactor(weights, fractions []float64, inverse bool) error {
	return DropOutWeightFactor(weights, net.inputSize, net.layers, fractions, inverse)
}
