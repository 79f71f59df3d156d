package deepnet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/sharnoff/deepnet/optimizers"
	"github.com/sharnoff/deepnet/utils"
)

// initial value of the errors, before they have been measured
const unmeasured float64 = 1e20

// Train trains the weights on the training patterns with the minimizer, until the Reporter of the
// Settings signals convergence or ctx is cancelled. It returns the last test error.
//
// Each cycle shuffles the training patterns, splits them into batches, and runs the minimizer once
// per batch. Every s.TestRepetitions cycles the test patterns are evaluated and the Reporter is
// asked whether training has converged. If there are no test patterns, the training error is used
// in place of the test error.
//
// If dropout is enabled, the weights are divided by the keep probabilities while training with a
// drop mask and multiplied back before testing, so the weights given back are always scaled for use
// without dropout. The caller's training patterns are not reordered.
//
// Cancellation is only checked between cycles. If ctx is cancelled, the weights are left as they
// were after the last complete cycle and the context's error is returned.
func (net *Network) Train(ctx context.Context, weights []float64, train, test []Pattern, min optimizers.Minimizer, s *Settings) (float64, error) {
	if err := net.Validate(); err != nil {
		return 0, errors.Wrapf(err, "Can't train invalid network")
	} else if err := s.Validate(); err != nil {
		return 0, errors.Wrapf(err, "Can't train with invalid settings")
	} else if min == nil {
		return 0, NilArgError{"minimizer"}
	} else if n := net.NumWeights(); len(weights) != n {
		return 0, SizeMismatchError{"weights", n, len(weights)}
	}

	rng := rand.New(rand.NewSource(s.Seed))
	rep := s.reporter()
	log := s.logger()

	// shuffled in place every cycle
	patterns := append([]Pattern(nil), train...)

	dropping := UsesDropOut(s.DropFractions)
	var drop DropMask
	scaled := false

	rescale := func(inverse bool) error {
		if err := net.DropOutWeightFactor(weights, s.DropFractions, inverse); err != nil {
			return errors.Wrapf(err, "Failed to rescale weights for dropout")
		}
		scaled = inverse
		return nil
	}

	trainError, testError := unmeasured, unmeasured

	cycle := 0
	for {
		if err := ctx.Err(); err != nil {
			if scaled {
				if e := rescale(false); e != nil {
					return testError, e
				}
			}
			return testError, errors.Wrapf(err, "Training stopped after %d cycles", cycle)
		}

		cycle++

		if dropping {
			if (cycle-1)%s.dropRepetitions() == 0 {
				drop = NewDropMask(rng, net.inputSize, net.layers, s.DropFractions)
			}

			if !scaled {
				if err := rescale(true); err != nil {
					return testError, err
				}
			}
		}

		var err error
		if trainError, err = net.trainCycle(rng, weights, patterns, min, s, drop); err != nil {
			return testError, errors.Wrapf(err, "Training cycle %d failed", cycle)
		}

		converged := false
		if (cycle-1)%s.testRepetitions() == 0 {
			if scaled {
				if err := rescale(false); err != nil {
					return testError, err
				}
			}

			if len(test) == 0 {
				testError = trainError
			} else if testError, err = net.testCycle(weights, test, s, rep); err != nil {
				return testError, errors.Wrapf(err, "Test after cycle %d failed", cycle)
			}

			converged = rep.HasConverged(testError)
		}

		rep.AddPoint(TrainErrors, cycle, trainError)
		rep.AddPoint(TestErrors, cycle, testError)
		log.Debug("training cycle finished", slog.Int("cycle", cycle),
			slog.Float64("trainError", trainError), slog.Float64("testError", testError))

		if converged {
			break
		}

		rep.Cycle(rep.Progress(), status(trainError, testError, cycle))
	}

	if scaled {
		if err := rescale(false); err != nil {
			return testError, err
		}
	}

	log.Info("training converged", slog.Int("cycles", cycle), slog.Float64("testError", testError))
	rep.Cycle(rep.Progress(), status(trainError, testError, cycle))
	return testError, nil
}

func status(trainError, testError float64, cycle int) string {
	return fmt.Sprintf("error (train/test/cycle): %.4g/%.4g/%d", trainError, testError, cycle)
}

// fitness returns the function that the minimizer evaluates for a single batch
func (net *Network) fitness(s *Settings, b Batch, drop DropMask) optimizers.Fitness {
	pass := PassThrough{Settings: s, Batch: b, Drop: drop}
	return func(weights, gradients []float64) (float64, error) {
		return net.ForwardBackward(net.layers, pass, weights, gradients, 0, nil)
	}
}

// trainCycle shuffles the patterns in place, splits them into batches and runs them through the
// minimizer. It returns the mean error of the batches.
func (net *Network) trainCycle(rng *rand.Rand, weights []float64, patterns []Pattern, min optimizers.Minimizer, s *Settings, drop DropMask) (float64, error) {
	rng.Shuffle(len(patterns), func(i, j int) {
		patterns[i], patterns[j] = patterns[j], patterns[i]
	})

	return net.runBatches(weights, Partition(patterns, s.BatchSize), min, s, drop)
}

// runBatches runs the minimizer over every batch in order, returning the sum of the errors divided
// by the number of batches. Multithreading happens within each evaluation of a batch, so the weights
// only change between evaluations and the result does not depend on the number of workers.
func (net *Network) runBatches(weights []float64, batches []Batch, min optimizers.Minimizer, s *Settings, drop DropMask) (float64, error) {
	numBatches := float64(len(batches))
	if numBatches == 0 {
		numBatches = 1
	}

	var sum float64
	for i, b := range batches {
		e, err := min.Minimize(net.fitness(s, b, drop), weights)
		if err != nil {
			return 0, errors.Wrapf(err, "Batch %d failed", i)
		}
		sum += e
	}

	return sum / numBatches, nil
}

// Test evaluates each of the patterns individually, without dropout, and returns the mean of their
// errors along with the result for each pattern, in order.
func (net *Network) Test(weights []float64, patterns []Pattern, s *Settings) (float64, []Sample, error) {
	if s == nil {
		s = DefaultSettings()
	}

	type result struct {
		samples []Sample
		err     error
	}

	eval := func(_, start, end int) result {
		samples := make([]Sample, 0, end-start)
		for i := start; i < end; i++ {
			p := patterns[i]

			var out [][]float64
			pass := PassThrough{Settings: s, Batch: Batch{p}}
			e, err := net.ForwardBackward(net.layers, pass, weights, nil, 0, &out)
			if err != nil {
				return result{err: errors.Wrapf(err, "Test pattern %d failed", i)}
			}

			samples = append(samples, Sample{Error: e, Output: out[0], Truth: p.Output, Weight: p.Weight})
		}

		return result{samples: samples}
	}

	var parts []result
	if w := s.workers(); w > 1 && len(patterns) > 1 {
		parts = utils.Fork(len(patterns), w, eval)
	} else {
		parts = []result{eval(0, 0, len(patterns))}
	}

	samples := make([]Sample, 0, len(patterns))
	for _, r := range parts {
		if r.err != nil {
			return 0, nil, r.err
		}
		samples = append(samples, r.samples...)
	}

	var sum float64
	for _, smp := range samples {
		sum += smp.Error
	}

	n := float64(len(samples))
	if n == 0 {
		n = 1
	}

	return sum / n, samples, nil
}

// testCycle runs Test and sends every sample to the Reporter
func (net *Network) testCycle(weights []float64, patterns []Pattern, s *Settings, rep Reporter) (float64, error) {
	e, samples, err := net.Test(weights, patterns, s)
	if err != nil {
		return 0, err
	}

	for _, smp := range samples {
		rep.TestSample(smp)
	}

	return e, nil
}
