// Package costfuncs provides the error functions that a network can be trained against.
//
// Every function takes the values of the output layer, the truth values of the pattern, and the
// weight of the pattern. If deltas is non-nil, it is filled with the derivative of the error with
// respect to each output value; if it is nil, only the error is calculated.
package costfuncs

import (
	"github.com/pkg/errors"
)

// Func is the shared signature of all error functions. The returned error is already scaled by
// the pattern weight.
type Func func(out, truth, deltas []float64, patternWeight float64) float64

// Kind selects the error function used by a network. It is fixed for the whole network.
type Kind int8

const (
	SumOfSquares Kind = iota
	CrossEntropy
	// SoftmaxCrossEntropy is cross-entropy for mutually exclusive classes
	SoftmaxCrossEntropy
)

var kindNames = map[Kind]string{
	SumOfSquares:        "sum-of-squares",
	CrossEntropy:        "cross-entropy",
	SoftmaxCrossEntropy: "softmax-cross-entropy",
}

// TypeString returns the name of the error function
func (k Kind) TypeString() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "unknown"
}

func (k Kind) String() string {
	return k.TypeString()
}

// NeedsProbabilities returns whether the error function operates on normalized probabilities
// rather than the raw output values, in which case the output layer must not be in direct mode.
func (k Kind) NeedsProbabilities() bool {
	return k == CrossEntropy || k == SoftmaxCrossEntropy
}

// Func returns the function for the Kind. Unknown kinds give nil.
func (k Kind) Func() Func {
	switch k {
	case SumOfSquares:
		return SumSquared
	case CrossEntropy:
		return BinaryCrossEntropy
	case SoftmaxCrossEntropy:
		return MutualCrossEntropy
	}

	return nil
}

// Parse returns the Kind with the given TypeString.
func Parse(name string) (Kind, error) {
	for k, s := range kindNames {
		if s == name {
			return k, nil
		}
	}

	return 0, errors.Errorf("unknown error function %q", name)
}
