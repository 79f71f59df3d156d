package optimizers

import (
	"log/slog"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DivergenceLimit is the largest magnitude of a single step before the step is treated as
// divergent.
const DivergenceLimit float64 = 1

// Steepest is gradient descent with Nesterov-style momentum and a randomized learning rate.
//
// Each repetition evaluates the fitness at the lookahead point weights + Beta*prev, where prev is
// the previous step. The step is then α'*gradients + Beta*prev, with α' drawn from N(Alpha, Alpha/2).
// If any component of the step is larger than DivergenceLimit in magnitude, Alpha is halved, the
// weights are divided by the largest component, and the momentum is cleared; the weights are not
// otherwise moved in that repetition.
type Steepest struct {
	Alpha       float64
	Beta        float64
	Repetitions int

	logger *slog.Logger
	prev   []float64
	rng    *rand.Rand
}

// NewSteepest returns a Steepest with the given learning rate, momentum and number of repetitions
// per call to Minimize.
func NewSteepest(alpha, beta float64, repetitions int) *Steepest {
	return &Steepest{
		Alpha:       alpha,
		Beta:        beta,
		Repetitions: repetitions,
	}
}

// Seed sets the source of the learning rate jitter, returning the Steepest.
func (s *Steepest) Seed(seed uint64) *Steepest {
	s.rng = rand.New(rand.NewSource(seed))
	return s
}

// SetLogger sets where learning rate reductions are reported, returning the Steepest.
func (s *Steepest) SetLogger(l *slog.Logger) *Steepest {
	s.logger = l
	return s
}

func (s *Steepest) TypeString() string {
	return "steepest"
}

// Momentum returns the current momentum buffer. It is nil before the first step.
func (s *Steepest) Momentum() []float64 {
	return s.prev
}

func (s *Steepest) Minimize(fit Fitness, weights []float64) (float64, error) {
	if fit == nil {
		return 0, errors.Errorf("Steepest: fitness function is nil")
	} else if s.Repetitions < 1 {
		return 0, errors.Errorf("Steepest: repetitions must be ≥ 1 (got %d)", s.Repetitions)
	}

	if s.rng == nil {
		s.Seed(1)
	}

	n := len(weights)
	if len(s.prev) != n {
		s.prev = make([]float64, n)
	}

	local := make([]float64, n)
	gradients := make([]float64, n)

	var e float64
	for rep := 0; rep < s.Repetitions; rep++ {
		// lookahead
		floats.Scale(s.Beta, s.prev)
		floats.AddTo(local, weights, s.prev)

		var err error
		if e, err = fit(local, gradients); err != nil {
			return 0, errors.Wrapf(err, "Steepest: failed to evaluate fitness on repetition %d", rep)
		}

		alpha := distuv.Normal{Mu: s.Alpha, Sigma: s.Alpha / 2, Src: s.rng}.Rand()

		var maxGrad float64
		for i, g := range gradients {
			g = g*alpha + s.prev[i]
			gradients[i] = g
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}

		if maxGrad > DivergenceLimit {
			s.Alpha /= 2
			if s.logger != nil {
				s.logger.Warn("learning rate reduced", slog.Float64("alpha", s.Alpha), slog.Float64("maxGrad", maxGrad))
			}

			floats.Scale(1/maxGrad, weights)
			for i := range s.prev {
				s.prev[i] = 0
			}
			continue
		}

		floats.Add(weights, gradients)
		copy(s.prev, gradients)
	}

	return e, nil
}

func (s *Steepest) Clone(seed uint64) Minimizer {
	c := &Steepest{
		Alpha:       s.Alpha,
		Beta:        s.Beta,
		Repetitions: s.Repetitions,
		logger:      s.logger,
	}

	if s.prev != nil {
		c.prev = append([]float64(nil), s.prev...)
	}

	return c.Seed(seed)
}
