package deepnet

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/sharnoff/deepnet/penalties"
)

// weightMatrix returns the section of s used by curr as a (prev nodes × curr nodes) matrix,
// sharing the underlying array.
func weightMatrix(prev, curr *LayerData, s []float64) (*mat.Dense, error) {
	if curr.layer == nil {
		return nil, errors.Errorf("cannot propagate into an input layer")
	} else if prev.Size() != curr.prevSize {
		return nil, SizeMismatchError{"previous layer size", curr.prevSize, prev.Size()}
	}

	ws, err := curr.weights.In(s)
	if err != nil {
		return nil, err
	}

	return mat.NewDense(prev.Size(), curr.Size(), ws), nil
}

func forward(prev, curr *LayerData, weights []float64, training bool) error {
	w, err := weightMatrix(prev, curr, weights)
	if err != nil {
		return err
	}

	in := mat.NewVecDense(prev.Size(), prev.masked())
	out := mat.NewVecDense(curr.Size(), curr.values)
	out.MulVec(w.T(), in)

	fn := curr.layer.Activation()
	for i, sum := range curr.values {
		curr.values[i] = fn.Apply(sum)
		if training {
			curr.valueGradients[i] = fn.Deriv(sum)
		}
	}

	return nil
}

// Forward calculates the values of curr from the values of prev, skipping any nodes of prev that
// have been dropped.
func Forward(prev, curr *LayerData, weights []float64) error {
	return forward(prev, curr, weights, false)
}

// ForwardTraining is Forward, but additionally records the derivative of the activation function
// at each node of curr, for use by Backward and Update. curr must have been created for training.
func ForwardTraining(prev, curr *LayerData, weights []float64) error {
	if curr.valueGradients == nil {
		return errors.Errorf("layer data was not created for training")
	}

	return forward(prev, curr, weights, true)
}

// localDeltas returns the derivative of the error with respect to the weighted sums of curr
func localDeltas(curr *LayerData) *mat.VecDense {
	ds := make([]float64, curr.Size())
	for i := range ds {
		ds[i] = curr.deltas[i] * curr.valueGradients[i]
	}

	return mat.NewVecDense(len(ds), ds)
}

// Backward sets the deltas of prev by propagating the deltas of curr back through the weights.
// Nodes of prev that have been dropped receive a delta of zero.
func Backward(prev, curr *LayerData, weights []float64) error {
	if prev.deltas == nil || curr.deltas == nil {
		return errors.Errorf("layer data was not created for training")
	}

	w, err := weightMatrix(prev, curr, weights)
	if err != nil {
		return err
	}

	out := mat.NewVecDense(prev.Size(), prev.deltas)
	out.MulVec(w, localDeltas(curr))

	for i := range prev.deltas {
		if prev.Dropped(i) {
			prev.deltas[i] = 0
		}
	}

	return nil
}

// Update accumulates the contribution of a single pattern into the gradients feeding curr: for each
// weight from source s to target t, -delta_t * value_s * f'_t, minus the regularization term.
//
// factor is the weight decay factor, and must already be divided by the total number of weights.
func Update(prev, curr *LayerData, weights, gradients []float64, factor float64, kind penalties.Kind) error {
	if curr.deltas == nil {
		return errors.Errorf("layer data was not created for training")
	} else if len(gradients) != len(weights) {
		return SizeMismatchError{"gradients", len(weights), len(gradients)}
	}

	g, err := weightMatrix(prev, curr, gradients)
	if err != nil {
		return err
	}

	src := mat.NewVecDense(prev.Size(), prev.masked())
	g.RankOne(g, -1, src, localDeltas(curr))

	if !kind.Active(factor) {
		return nil
	}

	gs, _ := curr.weights.In(gradients)
	ws, err := curr.weights.In(weights)
	if err != nil {
		return err
	}

	for i, w := range ws {
		gs[i] -= penalties.Penalize(w, factor, kind)
	}

	return nil
}
