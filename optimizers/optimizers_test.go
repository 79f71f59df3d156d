package optimizers

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSteepestLookaheadAndMomentum(t *testing.T) {
	s := NewSteepest(0, 0.5, 2).Seed(1)

	weights := []float64{1, 2}
	var seen [][]float64

	calls := 0
	fit := func(ws, gs []float64) (float64, error) {
		seen = append(seen, append([]float64(nil), ws...))
		for i := range gs {
			gs[i] = 0
		}
		calls++
		return float64(calls), nil
	}

	// with α = 0 the step is just the decayed momentum
	s.prev = []float64{0.4, -0.2}

	e, err := s.Minimize(fit, weights)
	require.NoError(t, err)
	require.Equal(t, 2.0, e)
	require.Equal(t, 2, calls)

	// first lookahead: prev = 0.5*[0.4,-0.2] = [0.2,-0.1]
	require.InDeltaSlice(t, []float64{1.2, 1.9}, seen[0], 1e-12)
	// after the first step weights are [1.2, 1.9]; prev is decayed again to [0.1,-0.05]
	require.InDeltaSlice(t, []float64{1.3, 1.85}, seen[1], 1e-12)
	require.InDeltaSlice(t, []float64{1.3, 1.85}, weights, 1e-12)
	require.InDeltaSlice(t, []float64{0.1, -0.05}, s.Momentum(), 1e-12)
}

func TestSteepestMovesDownhill(t *testing.T) {
	// E = 0.5 * (w - 3)^2
	fit := func(ws, gs []float64) (float64, error) {
		d := ws[0] - 3
		gs[0] = -d
		return 0.5 * d * d, nil
	}

	s := NewSteepest(0.1, 0.3, 200).Seed(7)
	ws := []float64{0}
	_, err := s.Minimize(fit, ws)
	require.NoError(t, err)
	require.InDelta(t, 3, ws[0], 0.05)
}

func TestSteepestDivergence(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := NewSteepest(0.5, 0.9, 1).Seed(3).SetLogger(logger)
	s.prev = []float64{0.1, 0.1}

	fit := func(ws, gs []float64) (float64, error) {
		gs[0], gs[1] = 1e6, 1e6
		return 1, nil
	}

	ws := []float64{4, -8}
	_, err := s.Minimize(fit, ws)
	require.NoError(t, err)

	require.Equal(t, 0.25, s.Alpha)
	require.Equal(t, []float64{0, 0}, s.Momentum())
	// the weights shrink and keep their direction
	require.Less(t, ws[0], 4.0)
	require.Greater(t, ws[0], 0.0)
	require.InDelta(t, -2, ws[1]/ws[0], 1e-9)
	require.Contains(t, buf.String(), "learning rate reduced")
}

func TestSteepestRejectsBadConfig(t *testing.T) {
	fit := func(ws, gs []float64) (float64, error) { return 0, nil }

	_, err := NewSteepest(0.1, 0, 0).Minimize(fit, []float64{1})
	require.Error(t, err)

	_, err = NewSteepest(0.1, 0, 1).Minimize(nil, []float64{1})
	require.Error(t, err)
}

func TestClone(t *testing.T) {
	s := NewSteepest(0.4, 0.5, 1)
	s.prev = []float64{1, 1}

	a := s.Clone(1).(*Steepest)
	require.Equal(t, s.prev, a.prev)
	require.Equal(t, s.Alpha, a.Alpha)

	a.prev[0] = 3
	a.Alpha = 0.1
	require.Equal(t, 1.0, s.prev[0], "clones must not share momentum")
	require.Equal(t, 0.4, s.Alpha)

	g := GradientDescent(1)
	require.Equal(t, g, g.Clone(5))
}

func TestGradientDescent(t *testing.T) {
	fit := func(ws, gs []float64) (float64, error) {
		gs[0], gs[1] = 1, -2
		return 5, nil
	}

	ws := []float64{0, 0}
	e, err := GradientDescent(0.5).Minimize(fit, ws)
	require.NoError(t, err)
	require.Equal(t, 5.0, e)
	require.Equal(t, []float64{0.5, -1}, ws)
}
