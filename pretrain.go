package deepnet

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/initializers"
	"github.com/sharnoff/deepnet/optimizers"
)

// resetter is implemented by Reporters that keep state between training sessions
type resetter interface {
	Reset()
}

// Reset clears the convergence state, so that the Convergence can be used for another training
// session.
func (c *Convergence) Reset() {
	*c = Convergence{
		Steps:     c.Steps,
		MaxCycles: c.MaxCycles,
		OnSample:  c.OnSample,
		OnPoint:   c.OnPoint,
		OnCycle:   c.OnCycle,
	}
}

// PreTrain initializes the weights of each layer in turn by training it as the hidden layer of an
// autoencoder.
//
// For each layer, a temporary network is built with that layer (in direct mode) as its hidden
// layer and a linear output layer the size of the layer's input, and trained with Train to
// reproduce its input. Both layers of the autoencoder start from the layer's current weights. The
// trained hidden weights are copied back, and the patterns are passed through the hidden layer to
// become the inputs for the next layer.
//
// The drop fractions of the autoencoder for layer i are those of its input and of layer i itself;
// the output of the autoencoder is never dropped. If the Reporter of the Settings has a Reset
// method, it is called before each layer. s is not modified.
//
// The linear output layers are built from the identity function of reg. Each autoencoder is
// trained with its own clone of min, so min itself is left as it was.
func (net *Network) PreTrain(ctx context.Context, reg activations.Registry, weights []float64, train, test []Pattern, min optimizers.Minimizer, s *Settings) error {
	if err := net.Validate(); err != nil {
		return errors.Wrapf(err, "Can't pretrain invalid network")
	} else if err := s.Validate(); err != nil {
		return errors.Wrapf(err, "Can't pretrain with invalid settings")
	} else if min == nil {
		return NilArgError{"minimizer"}
	} else if n := net.NumWeights(); len(weights) != n {
		return SizeMismatchError{"weights", n, len(weights)}
	}

	linear, ok := reg.Get(activations.Identity)
	if !ok {
		return errors.Errorf("registry has no %s activation for the autoencoder output", activations.Identity)
	}

	log := s.logger()
	rep := s.reporter()

	preTrain := autoencode(train)
	preTest := autoencode(test)

	inputSize, offset := net.inputSize, 0
	for k, layer := range net.layers {
		numW := layer.NumWeights(inputSize)

		hidden := &Layer{nodes: layer.Nodes(), fn: layer.Activation(), mode: Direct{}}
		output := &Layer{nodes: inputSize, fn: linear, mode: Direct{}}

		pre := New(inputSize, inputSize).AddLayer(hidden).AddLayer(output).SetErrorFunction(costfuncs.SumOfSquares)

		preWeights := pre.InitializeWeights(initializers.XavierUniform, rand.NewSource(s.Seed+uint64(k)))
		copy(preWeights[:numW], weights[offset:offset+numW])
		// the output layer has the same number of weights
		copy(preWeights[numW:], weights[offset:offset+numW])

		ps := *s
		ps.Seed = s.Seed + uint64(k)
		ps.Reporter = rep
		if s.DropFractions != nil {
			ps.DropFractions = []float64{fraction(s.DropFractions, k), fraction(s.DropFractions, k+1)}
		}

		if r, ok := rep.(resetter); ok {
			r.Reset()
		}

		log.Info("pretraining layer", slog.Int("layer", k), slog.Int("inputs", inputSize), slog.Int("nodes", layer.Nodes()))

		e, err := pre.Train(ctx, preWeights, preTrain, preTest, min.Clone(ps.Seed), &ps)
		if err != nil {
			return errors.Wrapf(err, "Failed to pretrain layer %d", k)
		}

		log.Info("pretrained layer", slog.Int("layer", k), slog.Float64("testError", e))

		copy(weights[offset:offset+numW], preWeights[:numW])

		// the hidden layer alone is the encoder
		pre.RemoveLayer().SetOutputSize(layer.Nodes())
		encoder := preWeights[:numW]

		if preTrain, err = encode(pre, encoder, preTrain); err != nil {
			return errors.Wrapf(err, "Failed to encode training patterns after layer %d", k)
		} else if preTest, err = encode(pre, encoder, preTest); err != nil {
			return errors.Wrapf(err, "Failed to encode test patterns after layer %d", k)
		}

		inputSize = layer.Nodes()
		offset += numW
	}

	return nil
}

// autoencode returns patterns whose output is their input
func autoencode(ps []Pattern) []Pattern {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = Pattern{Input: p.Input, Output: p.Input, Weight: p.Weight}
	}
	return out
}

// encode passes each pattern through net, returning autoencoder patterns of the results
func encode(net *Network, weights []float64, ps []Pattern) ([]Pattern, error) {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		v, err := net.Compute(p.Input, weights)
		if err != nil {
			return nil, errors.Wrapf(err, "pattern %d", i)
		}

		out[i] = Pattern{Input: v, Output: v, Weight: p.Weight}
	}
	return out, nil
}
