package activations

import (
	"math"
)

func identity() Func {
	return Func{
		ID:    Identity,
		Name:  "identity",
		Apply: func(x float64) float64 { return x },
		Deriv: func(x float64) float64 { return 1 },
	}
}

func zero() Func {
	return Func{
		ID:    Zero,
		Name:  "zero",
		Apply: func(x float64) float64 { return 0 },
		Deriv: func(x float64) float64 { return 0 },
	}
}

// ****************************************
// Gaussians
// ****************************************

// GaussScale is the factor the input is multiplied by before the gaussian is applied
const GaussScale float64 = 6

func gaussian(x float64) float64 {
	sx := GaussScale * x
	return math.Exp(-sx * sx)
}

// d/dx exp(-(s*x)^2)
func gaussianDeriv(x float64) float64 {
	return -2 * GaussScale * GaussScale * x * gaussian(x)
}

func gauss() Func {
	return Func{
		ID:    Gauss,
		Name:  "gauss",
		Apply: gaussian,
		Deriv: gaussianDeriv,
	}
}

func gaussComplement() Func {
	return Func{
		ID:    GaussComplement,
		Name:  "gauss-complement",
		Apply: func(x float64) float64 { return 1 - gaussian(x) },
		Deriv: func(x float64) float64 { return -gaussianDeriv(x) },
	}
}
