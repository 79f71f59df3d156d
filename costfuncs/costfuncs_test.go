package costfuncs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumSquared(t *testing.T) {
	out := []float64{1, 2, 3}
	truth := []float64{1, 0, 4}
	deltas := make([]float64, 3)

	e := SumSquared(out, truth, deltas, 2)
	require.InDelta(t, 0.5*(0+4+1)*2, e, 1e-12)
	require.Equal(t, []float64{0, 4, -2}, deltas)
}

func TestEvaluationOnlyLeavesNoDeltas(t *testing.T) {
	for _, k := range []Kind{SumOfSquares, CrossEntropy, SoftmaxCrossEntropy} {
		f := k.Func()
		require.NotNil(t, f, k.String())

		withDeltas := f([]float64{0.3, 0.7}, []float64{0, 1}, make([]float64, 2), 1)
		without := f([]float64{0.3, 0.7}, []float64{0, 1}, nil, 1)
		require.Equal(t, withDeltas, without, k.String())
	}
}

func TestBinaryCrossEntropyBinarizes(t *testing.T) {
	deltas := make([]float64, 4)
	BinaryCrossEntropy([]float64{0.5, 0.5, 0.5, 0.5}, []float64{0, 0.49, 0.5, 1}, deltas, 1)

	require.InDeltaSlice(t, []float64{0.4, 0.4, -0.4, -0.4}, deltas, 1e-12)
}

func TestBinaryCrossEntropyUnitPenalty(t *testing.T) {
	cases := []struct {
		p, truth float64
		want     float64
	}{
		{0, 1, 1},
		{1, 0, 1},
		{0, 0, 0},
		{1, 1, 0},
	}

	for _, c := range cases {
		e := BinaryCrossEntropy([]float64{c.p}, []float64{c.truth}, make([]float64, 1), 3)
		require.False(t, math.IsNaN(e) || math.IsInf(e, 0))
		require.Equal(t, c.want*3, e, "p=%v truth=%v", c.p, c.truth)
	}

	// the regular log form otherwise
	t1 := 0.9
	want := -(t1*math.Log(0.8) + (1-t1)*math.Log(0.2))
	require.InDelta(t, want, BinaryCrossEntropy([]float64{0.8}, []float64{1}, nil, 1), 1e-12)
}

func TestMutualCrossEntropy(t *testing.T) {
	probs := []float64{0.2, 0.7, 0.1}
	truth := []float64{0, 1, 0}
	deltas := make([]float64, 3)

	e := MutualCrossEntropy(probs, truth, deltas, 0.5)
	require.InDelta(t, -math.Log(0.7)*0.5, e, 1e-12)
	require.InDeltaSlice(t, []float64{0.1, -0.15, 0.05}, deltas, 1e-12)

	// zero probability for the true class is finite
	e = MutualCrossEntropy([]float64{0, 1}, []float64{1, 0}, nil, 1)
	require.Equal(t, 1.0, e)
}

func TestParse(t *testing.T) {
	for _, k := range []Kind{SumOfSquares, CrossEntropy, SoftmaxCrossEntropy} {
		got, err := Parse(k.TypeString())
		require.NoError(t, err)
		require.Equal(t, k, got)
	}

	_, err := Parse("huber")
	require.Error(t, err)
	require.False(t, SumOfSquares.NeedsProbabilities())
	require.True(t, CrossEntropy.NeedsProbabilities())
}
