package deepnet

// Pattern is a single example to train or test on.
//
// Patterns are never modified by the network.
type Pattern struct {
	Input  []float64
	Output []float64

	// Weight scales the error (and gradients) of the Pattern. A Pattern with weight 0 has no
	// effect on training.
	Weight float64
}

// NewPattern returns a Pattern with a weight of 1
func NewPattern(input, output []float64) Pattern {
	return Pattern{Input: input, Output: output, Weight: 1}
}

// Batch is a contiguous group of Patterns that are evaluated together for a single gradient.
//
// Batches returned by Partition are sub-slices of the original patterns, and so must not outlive
// them.
type Batch []Pattern

// Partition splits patterns into batches of batchSize, in order. If the number of patterns is not
// a multiple of batchSize, the remainder is added to the last batch. If there are fewer patterns
// than batchSize, they all go into a single batch.
//
// batchSize < 1 is treated as 1. There are no batches for no patterns.
func Partition(patterns []Pattern, batchSize int) []Batch {
	if len(patterns) == 0 {
		return nil
	}

	if batchSize < 1 {
		batchSize = 1
	}

	numBatches := len(patterns) / batchSize
	if numBatches == 0 {
		numBatches = 1
	}

	batches := make([]Batch, numBatches)
	for b := range batches {
		start, end := b*batchSize, (b+1)*batchSize
		if b == numBatches-1 {
			end = len(patterns)
		}

		batches[b] = Batch(patterns[start:end:end])
	}

	return batches
}
