package costfuncs

import (
	"math"
)

// Binarize maps a truth value onto the two targets used by BinaryCrossEntropy. Truth values are
// thresholded at 0.5; soft labels are not preserved.
func Binarize(truth float64) float64 {
	if truth < 0.5 {
		return 0.1
	}
	return 0.9
}

// BinaryCrossEntropy is the two-term cross-entropy of each output probability independently.
//
// If a probability is exactly 0 or 1 and disagrees with the binarized truth, the error for that
// output is 1 instead of an infinite log.
func BinaryCrossEntropy(probs, truth, deltas []float64, patternWeight float64) float64 {
	var sum float64
	for i, p := range probs {
		t := Binarize(truth[i])
		if deltas != nil {
			deltas[i] = (p - t) * patternWeight
		}

		var e float64
		switch {
		case p == 0:
			if t >= 0.5 {
				e = 1
			}
		case p == 1:
			if t < 0.5 {
				e = 1
			}
		default:
			e = -(t*math.Log(p) + (1-t)*math.Log(1-p))
		}

		sum += e * patternWeight
	}

	return sum
}

// MutualCrossEntropy is the cross-entropy for mutually exclusive classes, expecting softmax
// probabilities: -Σ truth * log(prob) * patternWeight
//
// Classes with a truth of zero contribute nothing. A probability of exactly zero for a true class
// contributes a unit error for that class.
func MutualCrossEntropy(probs, truth, deltas []float64, patternWeight float64) float64 {
	var sum float64
	for i, p := range probs {
		if deltas != nil {
			deltas[i] = (p - truth[i]) * patternWeight
		}

		if truth[i] == 0 {
			continue
		} else if p == 0 {
			sum -= truth[i]
			continue
		}

		sum += truth[i] * math.Log(p)
	}

	return -sum * patternWeight
}
