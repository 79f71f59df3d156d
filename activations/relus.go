// relus.go contains the rectifier-style activation functions:
// * ReLU
// * Symmetric ReLU
// * Softplus (because it's similar)
package activations

import (
	"math"
)

// ****************************************
// ReLU
// ****************************************

func relu() Func {
	return Func{
		ID:    ReLU,
		Name:  "relu",
		Apply: func(x float64) float64 { return math.Max(x, 0) },
		Deriv: func(x float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	}
}

// ****************************************
// Symmetric ReLU
// ****************************************

// SymmReLUMargin is the half-width of the dead zone around zero for the symmetric ReLU
const SymmReLUMargin float64 = 0.3

func symmReLU() Func {
	return Func{
		ID:   SymmReLU,
		Name: "symm-relu",
		Apply: func(x float64) float64 {
			switch {
			case x > SymmReLUMargin:
				return x - SymmReLUMargin
			case x < -SymmReLUMargin:
				return x + SymmReLUMargin
			default:
				return 0
			}
		},
		Deriv: func(x float64) float64 {
			if math.Abs(x) > SymmReLUMargin {
				return 1
			}
			return 0
		},
	}
}

// ****************************************
// Softplus
// ****************************************

func softPlus() Func {
	return Func{
		ID:   SoftPlus,
		Name: "softplus",
		Apply: func(x float64) float64 {
			// log(1 + e^x) == x to within float precision past this point
			if x > 35 {
				return x
			}
			return math.Log1p(math.Exp(x))
		},
		Deriv: logistic,
	}
}
