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

// linearPatterns gives n patterns of y = 0.5*x0 - 0.3*x1
func linearPatterns(n int, seed uint64) []Pattern {
	rng := rand.New(rand.NewSource(seed))

	ps := make([]Pattern, n)
	for i := range ps {
		x0, x1 := 2*rng.Float64()-1, 2*rng.Float64()-1
		ps[i] = NewPattern([]float64{x0, x1}, []float64{0.5*x0 - 0.3*x1})
	}
	return ps
}

func linearNet(t *testing.T) *Network {
	return network(t, 2, costfuncs.SumOfSquares, layer(t, 1, activations.Identity, nil))
}

// recorder converges on the given call to HasConverged
type recorder struct {
	convergeOn int

	checks  int
	samples []Sample
	points  map[string][]int
	cycles  []string
}

func (r *recorder) HasConverged(testError float64) bool {
	r.checks++
	return r.checks >= r.convergeOn
}

func (r *recorder) Progress() float64 {
	return 100 * float64(r.checks) / float64(r.convergeOn)
}

func (r *recorder) TestSample(s Sample) {
	r.samples = append(r.samples, s)
}

func (r *recorder) AddPoint(series string, cycle int, value float64) {
	if r.points == nil {
		r.points = make(map[string][]int)
	}
	r.points[series] = append(r.points[series], cycle)
}

func (r *recorder) Cycle(progress float64, status string) {
	r.cycles = append(r.cycles, status)
}

func TestTrainLinearConverges(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		net := linearNet(t)
		ws := make([]float64, net.NumWeights())

		cycles := 0
		s := DefaultSettings()
		s.BatchSize = 4
		s.Multithreading = parallel
		s.Workers = 3
		s.Seed = 5
		s.Reporter = &Convergence{
			Steps:     3,
			MaxCycles: 2000,
			OnCycle:   func(float64, string) { cycles++ },
		}

		min := optimizers.NewSteepest(0.2, 0.5, 1).Seed(1)
		testErr, err := net.Train(context.Background(), ws, linearPatterns(40, 1), linearPatterns(20, 2), min, s)
		require.NoError(t, err)

		require.Less(t, testErr, 1e-4, "parallel=%v", parallel)
		require.Less(t, cycles, 2000)
		require.InDeltaSlice(t, []float64{0.5, -0.3}, ws, 1e-2)
	}
}

func TestSerialAndParallelCyclesAgree(t *testing.T) {
	net := network(t, 2, costfuncs.SumOfSquares,
		layer(t, 3, activations.Tanh, nil),
		layer(t, 1, activations.Identity, nil),
	)
	ws := randomWeights(net, 31)
	batches := Partition(linearPatterns(37, 3), 4)

	serial := DefaultSettings()
	parallel := DefaultSettings()
	parallel.Multithreading = true
	parallel.Workers = 4

	for _, min := range []optimizers.Minimizer{optimizers.GradientDescent(0.1), optimizers.NewSteepest(0.05, 0.5, 3)} {
		serialWeights := append([]float64(nil), ws...)
		parallelWeights := append([]float64(nil), ws...)

		a, err := net.runBatches(serialWeights, batches, min.Clone(1), serial, nil)
		require.NoError(t, err)
		b, err := net.runBatches(parallelWeights, batches, min.Clone(1), parallel, nil)
		require.NoError(t, err)

		require.NotEqual(t, ws, serialWeights, "%s did not move the weights", min.TypeString())
		require.InDelta(t, a, b, 1e-10, min.TypeString())
		require.InDeltaSlice(t, serialWeights, parallelWeights, 1e-10, min.TypeString())
	}
}

func TestTrainReportingCadence(t *testing.T) {
	net := linearNet(t)
	ws := make([]float64, net.NumWeights())
	test := linearPatterns(6, 4)

	rep := &recorder{convergeOn: 3}
	s := DefaultSettings()
	s.BatchSize = 5
	s.TestRepetitions = 2
	s.Reporter = rep

	_, err := net.Train(context.Background(), ws, linearPatterns(20, 3), test, optimizers.NewSteepest(0.1, 0, 1), s)
	require.NoError(t, err)

	// tests on cycles 1, 3 and 5; converged on the third
	require.Equal(t, 3, rep.checks)
	require.Equal(t, []int{1, 2, 3, 4, 5}, rep.points[TrainErrors])
	require.Equal(t, []int{1, 2, 3, 4, 5}, rep.points[TestErrors])
	// once per unconverged cycle, and once at the end
	require.Len(t, rep.cycles, 5)
	require.Len(t, rep.samples, 3*len(test))

	for i, smp := range rep.samples[:len(test)] {
		require.Equal(t, test[i].Output, smp.Truth)
		require.Len(t, smp.Output, 1)
	}
}

func TestTrainLeavesWeightsScaledForTesting(t *testing.T) {
	net := network(t, 2, costfuncs.SumOfSquares,
		layer(t, 6, activations.Tanh, nil),
		layer(t, 1, activations.Identity, nil),
	)
	ws := randomWeights(net, 41)
	train, test := linearPatterns(30, 5), linearPatterns(10, 6)

	s := DefaultSettings()
	s.BatchSize = 5
	s.DropFractions = []float64{0.1, 0.3}
	s.DropRepetitions = 2
	s.Reporter = &Convergence{Steps: 2, MaxCycles: 10}

	testErr, err := net.Train(context.Background(), ws, train, test, optimizers.NewSteepest(0.05, 0.3, 1), s)
	require.NoError(t, err)

	again, _, err := net.Test(ws, test, s)
	require.NoError(t, err)
	require.InDelta(t, testErr, again, 1e-12)
}

func TestTrainDoesNotReorderPatterns(t *testing.T) {
	net := linearNet(t)
	train := linearPatterns(10, 7)
	orig := append([]Pattern(nil), train...)

	s := DefaultSettings()
	s.BatchSize = 2
	s.Reporter = &recorder{convergeOn: 2}

	_, err := net.Train(context.Background(), make([]float64, 2), train, nil, optimizers.NewSteepest(0.1, 0, 1), s)
	require.NoError(t, err)
	require.Equal(t, orig, train)
}

func TestTrainStopsOnCancel(t *testing.T) {
	net := linearNet(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ws := []float64{0.1, 0.2}
	_, err := net.Train(ctx, ws, linearPatterns(4, 1), nil, optimizers.NewSteepest(0.1, 0, 1), DefaultSettings())
	require.Error(t, err)
	require.Equal(t, context.Canceled, errors.Cause(err))
	require.Equal(t, []float64{0.1, 0.2}, ws)
}

func TestTrainDoesNotStoreDefaultReporter(t *testing.T) {
	net := linearNet(t)
	ws := make([]float64, net.NumWeights())
	s := DefaultSettings()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := net.Train(ctx, ws, linearPatterns(8, 1), nil, optimizers.GradientDescent(0.1), s)
	require.Equal(t, context.Canceled, errors.Cause(err))
	require.Nil(t, s.Reporter)
}

func TestTrainRejectsBadInput(t *testing.T) {
	net := linearNet(t)
	min := optimizers.NewSteepest(0.1, 0, 1)

	s := DefaultSettings()
	s.BatchSize = 0
	_, err := net.Train(context.Background(), make([]float64, 2), nil, nil, min, s)
	require.Equal(t, ErrBadBatchSize, errors.Cause(err))

	_, err = net.Train(context.Background(), make([]float64, 3), nil, nil, min, DefaultSettings())
	require.IsType(t, SizeMismatchError{}, err)

	_, err = net.Train(context.Background(), make([]float64, 2), nil, nil, nil, DefaultSettings())
	require.IsType(t, NilArgError{}, err)

	_, err = New(2, 1).Train(context.Background(), nil, nil, nil, min, DefaultSettings())
	require.Equal(t, ErrNoLayers, errors.Cause(err))
}

func TestConvergence(t *testing.T) {
	c := &Convergence{Steps: 2}

	require.False(t, c.HasConverged(1))
	require.False(t, c.HasConverged(0.5))
	require.False(t, c.HasConverged(0.4999999)) // not enough of an improvement
	require.Equal(t, 1, c.Count())
	require.Equal(t, 0.5, c.MinError())
	require.True(t, c.HasConverged(0.6))
	require.Equal(t, 100.0, c.Progress())

	c.Reset()
	require.Equal(t, 0, c.Count())
	require.Equal(t, 2, c.Steps)
	require.True(t, c.HasConverged(0))
}

func TestConvergenceMaxCycles(t *testing.T) {
	c := &Convergence{Steps: 100, MaxCycles: 3}

	for i := 0; i < 2; i++ {
		require.False(t, c.HasConverged(1/float64(i+1)))
		c.Cycle(0, "")
	}
	require.True(t, c.HasConverged(0.01))
}
