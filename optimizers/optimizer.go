// Package optimizers provides the minimizers that move the weights of a network towards lower
// error.
//
// A minimizer is handed a Fitness function that closes over everything needed to evaluate the
// network (the batch, the settings, the drop mask) and only sees the weights and gradients.
package optimizers

// Fitness evaluates the error for the given weights, writing the gradients into gradients.
//
// The gradients are the direction of steepest descent: adding a small positive multiple of them
// to the weights reduces the error. gradients has the same length as weights and is zeroed by the
// Fitness before it is filled.
type Fitness func(weights, gradients []float64) (float64, error)

// Minimizer is implemented by the optimization algorithms.
type Minimizer interface {
	// Minimize runs the algorithm for its configured number of steps, mutating weights in place.
	// It returns the error of the last evaluation.
	Minimize(fit Fitness, weights []float64) (float64, error)

	// Clone returns an independent copy of the Minimizer, including any accumulated state, whose
	// randomness is seeded with the given value.
	Clone(seed uint64) Minimizer

	TypeString() string
}
