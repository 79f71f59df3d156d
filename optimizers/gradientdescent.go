package optimizers

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

type gradientDescent float64

// GradientDescent returns plain gradient descent with a fixed learning rate: one evaluation and
// one step per call to Minimize, with no momentum or randomness.
func GradientDescent(learningRate float64) *gradientDescent {
	g := gradientDescent(learningRate)
	return &g
}

func (g *gradientDescent) TypeString() string {
	return "gradient-descent"
}

func (g *gradientDescent) Minimize(fit Fitness, weights []float64) (float64, error) {
	if fit == nil {
		return 0, errors.Errorf("GradientDescent: fitness function is nil")
	}

	gradients := make([]float64, len(weights))
	e, err := fit(weights, gradients)
	if err != nil {
		return 0, errors.Wrapf(err, "GradientDescent: failed to evaluate fitness")
	}

	floats.AddScaled(weights, float64(*g), gradients)
	return e, nil
}

func (g *gradientDescent) Clone(seed uint64) Minimizer {
	c := *g
	return &c
}
