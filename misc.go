package deepnet

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CorrectRound returns whether every output rounds (at 0.5) to its target. It assumes
// len(outs) == len(targets), and that the targets are 0 or 1.
func CorrectRound(outs, targets []float64) bool {
	for i := range outs {
		r := 0.0
		if outs[i] >= 0.5 {
			r = 1
		}

		if r != math.Round(targets[i]) {
			return false
		}
	}

	return true
}

// CorrectHighest just returns whether or not the largest value in each is at the same index
func CorrectHighest(outs, targets []float64) bool {
	if len(outs) == 0 || len(targets) == 0 {
		return false
	}

	return floats.MaxIdx(outs) == floats.MaxIdx(targets)
}

// Accuracy returns the fraction of samples whose output isCorrect judges correct, weighted by the
// absolute weight of each sample.
func Accuracy(samples []Sample, isCorrect func(outs, targets []float64) bool) float64 {
	var correct, total float64
	for _, s := range samples {
		w := math.Abs(s.Weight)
		total += w
		if isCorrect(s.Output, s.Truth) {
			correct += w
		}
	}

	if total == 0 {
		return 0
	}

	return correct / total
}
