// logistics.go contains the activation functions with bounded, s-shaped outputs:
// * Sigmoid
// * Tanh
// * TanhShift
// * SoftSign
package activations

import (
	"math"
)

// ****************************************
// Sigmoid
// ****************************************

// inputs outside of this range are clamped before calculating the sigmoid
const sigmoidClamp float64 = 100

func logistic(x float64) float64 {
	x = math.Max(-sigmoidClamp, math.Min(sigmoidClamp, x))
	return 1 / (1 + math.Exp(-x))
}

func sigmoid() Func {
	return Func{
		ID:    Sigmoid,
		Name:  "sigmoid",
		Apply: logistic,
		Deriv: func(x float64) float64 {
			s := logistic(x)
			return s * (1 - s)
		},
	}
}

// ****************************************
// Tanh
// ****************************************

func tanh() Func {
	return Func{
		ID:    Tanh,
		Name:  "tanh",
		Apply: math.Tanh,
		Deriv: func(x float64) float64 {
			t := math.Tanh(x)
			return 1 - t*t
		},
	}
}

// ****************************************
// Tanh (shifted)
// ****************************************

// TanhShiftOffset is the amount the input to TanhShift is offset by
const TanhShiftOffset float64 = 0.3

func tanhShift() Func {
	return Func{
		ID:    TanhShift,
		Name:  "tanh-shift",
		Apply: func(x float64) float64 { return math.Tanh(x - TanhShiftOffset) },
		Deriv: func(x float64) float64 {
			t := math.Tanh(x - TanhShiftOffset)
			return 1 - t*t
		},
	}
}

// ****************************************
// SoftSign
// ****************************************

func softSign() Func {
	return Func{
		ID:    SoftSign,
		Name:  "softsign",
		Apply: func(x float64) float64 { return x / (1 + math.Abs(x)) },
		Deriv: func(x float64) float64 {
			d := 1 + math.Abs(x)
			return 1 / (d * d)
		},
	}
}
