package deepnet

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/optimizers"
)

func pretrainPatterns(n int, seed uint64) []Pattern {
	rng := rand.New(rand.NewSource(seed))

	ps := make([]Pattern, n)
	for i := range ps {
		a, b := rng.Float64(), rng.Float64()
		ps[i] = NewPattern([]float64{a, b, a + b, a - b}, []float64{a * b})
	}
	return ps
}

func pretrainNet(t *testing.T) *Network {
	return network(t, 4, costfuncs.SumOfSquares,
		layer(t, 3, activations.Tanh, nil),
		layer(t, 2, activations.Tanh, nil),
		layer(t, 1, activations.Identity, Sigmoid{}),
	)
}

func TestPreTrainUpdatesEveryLayer(t *testing.T) {
	net := pretrainNet(t)
	orig := randomWeights(net, 51)
	ws := append([]float64(nil), orig...)

	cycles := 0
	s := DefaultSettings()
	s.BatchSize = 4
	s.DropFractions = []float64{0.1, 0.2}
	s.Reporter = &Convergence{
		Steps:     2,
		MaxCycles: 5,
		OnCycle:   func(float64, string) { cycles++ },
	}

	min := optimizers.NewSteepest(0.05, 0.3, 2)
	err := net.PreTrain(context.Background(), testRegistry, ws, pretrainPatterns(20, 1), pretrainPatterns(8, 2), min, s)
	require.NoError(t, err)

	// every layer trains a clone
	require.Nil(t, min.Momentum())
	require.Equal(t, 0.05, min.Alpha)

	require.Len(t, ws, net.NumWeights())
	for _, r := range weightRanges(net.InputSize(), net.Layers()) {
		require.NotEqual(t, orig[r.Offset:r.End()], ws[r.Offset:r.End()], "range %v", r)
	}

	// the caller's settings are untouched
	require.Equal(t, []float64{0.1, 0.2}, s.DropFractions)
	require.Greater(t, cycles, 0)

	// the network still works with the pretrained weights
	_, err = net.Compute([]float64{0.1, 0.2, 0.3, -0.1}, ws)
	require.NoError(t, err)
}

func TestPreTrainStopsOnCancel(t *testing.T) {
	net := pretrainNet(t)
	ws := randomWeights(net, 52)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := net.PreTrain(ctx, testRegistry, ws, pretrainPatterns(4, 1), nil, optimizers.NewSteepest(0.05, 0, 1), DefaultSettings())
	require.Error(t, err)
	require.Equal(t, context.Canceled, errors.Cause(err))
}

func TestPreTrainDoesNotModifySettings(t *testing.T) {
	net := pretrainNet(t)
	ws := randomWeights(net, 53)

	s := DefaultSettings()
	s.BatchSize = 5
	s.DropFractions = []float64{0.1}
	before := *s

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the default reporter is created before the first cycle, but never stored
	err := net.PreTrain(ctx, testRegistry, ws, pretrainPatterns(10, 3), nil, optimizers.NewSteepest(0.05, 0, 1), s)
	require.Equal(t, context.Canceled, errors.Cause(err))
	require.Nil(t, s.Reporter)
	require.Equal(t, before, *s)
}

func TestPreTrainNeedsIdentity(t *testing.T) {
	net := pretrainNet(t)
	ws := randomWeights(net, 54)

	err := net.PreTrain(context.Background(), activations.Registry{}, ws, pretrainPatterns(4, 1), nil, optimizers.NewSteepest(0.05, 0, 1), DefaultSettings())
	require.Error(t, err)

	err = net.PreTrain(context.Background(), testRegistry, ws, pretrainPatterns(4, 1), nil, nil, DefaultSettings())
	require.IsType(t, NilArgError{}, err)
}

func TestEncode(t *testing.T) {
	net := network(t, 2, costfuncs.SumOfSquares, layer(t, 1, activations.Identity, nil))

	ps, err := encode(net, []float64{1, 1}, []Pattern{{Input: []float64{2, 3}, Output: []float64{9}, Weight: 0.5}})
	require.NoError(t, err)
	require.Equal(t, []Pattern{{Input: []float64{5}, Output: []float64{5}, Weight: 0.5}}, ps)

	ae := autoencode([]Pattern{NewPattern([]float64{1, 2}, []float64{7})})
	require.Equal(t, ae[0].Input, ae[0].Output)
}
