package costfuncs

// SumSquared is the sum-of-squares error: 0.5 * Σ(out - truth)² * patternWeight
func SumSquared(out, truth, deltas []float64, patternWeight float64) float64 {
	var sum float64
	for i := range out {
		e := out[i] - truth[i]
		if deltas != nil {
			deltas[i] = e * patternWeight
		}

		sum += e * e * patternWeight
	}

	return 0.5 * sum
}
