package penalties

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Penalize returns the regularization term for a single weight, which is subtracted from that
// weight's gradient. factor must already be scaled by 1 / (number of weights).
//
// L1 gives sign(w) * factor (0 at w == 0) and L2 gives w * factor. None gives 0.
func Penalize(w, factor float64, kind Kind) float64 {
	switch kind {
	case L1:
		if w == 0 {
			return 0
		}
		return math.Copysign(factor, w)
	case L2:
		return factor * w
	}

	return 0
}

// WeightDecay adds the regularization term for the given weights to err.
//
// L1 adds 0.5 * Σ|w| * factor / n and L2 adds 0.5 * Σw² * factor / n, where n is len(weights).
// If the regularizer is not active, or there are no weights, err is returned unchanged.
func WeightDecay(err float64, weights []float64, factor float64, kind Kind) float64 {
	if !kind.Active(factor) || len(weights) == 0 {
		return err
	}

	var sum float64
	switch kind {
	case L1:
		sum = floats.Norm(weights, 1)
	case L2:
		sum = floats.Dot(weights, weights)
	}

	return err + 0.5*sum*factor/float64(len(weights))
}
