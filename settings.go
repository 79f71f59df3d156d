package deepnet

import (
	"io"
	"log/slog"
	"math"
	"runtime"

	"github.com/pkg/errors"

	"github.com/sharnoff/deepnet/penalties"
)

// Settings are the parameters of a training session.
type Settings struct {
	// BatchSize is the number of patterns per gradient step. It must be at least 1.
	BatchSize int

	// DropFractions gives the fraction of nodes dropped in each layer, starting with the input
	// layer. Layers without an entry are never dropped. nil disables dropout.
	DropFractions []float64
	// DropRepetitions is the number of cycles each drop mask is used for. Values < 1 are treated
	// as 1.
	DropRepetitions int

	// TestRepetitions is the number of cycles between evaluations of the test patterns. Values < 1
	// are treated as 1.
	TestRepetitions int

	// Multithreading enables parallel training and testing, with Workers goroutines. Workers ≤ 0
	// uses runtime.NumCPU().
	Multithreading bool
	Workers        int

	WeightDecay    float64
	Regularization penalties.Kind

	// Seed is the seed for the shuffling of patterns and the drop masks
	Seed uint64

	// Logger defaults to discarding everything
	Logger *slog.Logger

	// Reporter receives the progress of training, and decides when it has converged. If nil, a
	// Convergence with DefaultConvergenceSteps is used.
	Reporter Reporter
}

// DefaultSettings returns Settings with a batch size of 30, testing every cycle, and no dropout or
// weight decay.
func DefaultSettings() *Settings {
	return &Settings{
		BatchSize:       30,
		DropRepetitions: 1,
		TestRepetitions: 1,
	}
}

// Validate checks that the Settings can be used for training
func (s *Settings) Validate() error {
	if s == nil {
		return NilArgError{"settings"}
	} else if s.BatchSize < 1 {
		return errors.Wrapf(ErrBadBatchSize, "got %d", s.BatchSize)
	} else if s.WeightDecay < 0 || math.IsNaN(s.WeightDecay) {
		return errors.Errorf("weight decay must be ≥ 0 (got %v)", s.WeightDecay)
	}

	for i, f := range s.DropFractions {
		if f < 0 || f >= 1 || math.IsNaN(f) {
			return errors.Errorf("drop fraction %d must be in [0, 1) (got %v)", i, f)
		}
	}

	return nil
}

func (s *Settings) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

func (s *Settings) workers() int {
	if !s.Multithreading {
		return 1
	} else if s.Workers <= 0 {
		return runtime.NumCPU()
	}
	return s.Workers
}

func (s *Settings) dropRepetitions() int {
	if s.DropRepetitions < 1 {
		return 1
	}
	return s.DropRepetitions
}

func (s *Settings) testRepetitions() int {
	if s.TestRepetitions < 1 {
		return 1
	}
	return s.TestRepetitions
}

// reporter returns the Reporter of the Settings, or a new default Convergence if there is none
func (s *Settings) reporter() Reporter {
	if s.Reporter == nil {
		return &Convergence{Steps: DefaultConvergenceSteps}
	}
	return s.Reporter
}

// ****************************************
// Reporting
// ****************************************

// Sample is the result of evaluating a single test pattern
type Sample struct {
	Error  float64
	Output []float64
	Truth  []float64
	Weight float64
}

// Names of the series given to Reporter.AddPoint
const (
	TrainErrors = "trainErrors"
	TestErrors  = "testErrors"
)

// Reporter is how the progress of training is sent back, and how it is decided that training has
// converged.
//
// The methods of a Reporter are only called from the goroutine running Train.
type Reporter interface {
	// HasConverged is called with the test error after each evaluation of the test patterns.
	// Training stops once it returns true.
	HasConverged(testError float64) bool

	// Progress returns the progress towards convergence, as a percentage
	Progress() float64

	// TestSample is called for every test pattern each time they are evaluated, in order
	TestSample(Sample)

	// AddPoint is called at the end of every cycle for the series TrainErrors and TestErrors
	AddPoint(series string, cycle int, value float64)

	// Cycle is called at the end of every cycle that did not converge, and once more when
	// training finishes.
	Cycle(progress float64, status string)
}

// DefaultConvergenceSteps is the number of test evaluations without improvement before a
// Convergence with no Steps set reports convergence.
const DefaultConvergenceSteps int = 15

// Convergence is a Reporter that considers training converged once the test error has not
// improved for Steps consecutive evaluations. An improvement is a test error below 0.999 times the
// lowest seen so far. A test error ≤ 0 is always converged.
//
// If MaxCycles is > 0, training is also stopped at the first test evaluation on or after that
// cycle. The callbacks may be nil.
type Convergence struct {
	Steps     int
	MaxCycles int

	OnSample func(Sample)
	OnPoint  func(series string, cycle int, value float64)
	OnCycle  func(progress float64, status string)

	count    int
	maxCount int
	minError float64
	cycles   int
	started  bool
}

func (c *Convergence) steps() int {
	if c.Steps < 1 {
		return DefaultConvergenceSteps
	}
	return c.Steps
}

func (c *Convergence) HasConverged(testError float64) bool {
	if !c.started {
		c.minError = 1e10
		c.started = true
	}

	if testError < c.minError*0.999 {
		c.count = 0
		c.minError = testError
	} else {
		c.count++
		if c.count > c.maxCount {
			c.maxCount = c.count
		}
	}

	return c.count >= c.steps() || testError <= 0 || (c.MaxCycles > 0 && c.cycles+1 >= c.MaxCycles)
}

// Count returns the number of evaluations since the test error last improved
func (c *Convergence) Count() int {
	return c.count
}

// MinError returns the lowest test error seen
func (c *Convergence) MinError() float64 {
	return c.minError
}

func (c *Convergence) Progress() float64 {
	return 100 * float64(c.maxCount) / float64(c.steps())
}

func (c *Convergence) TestSample(s Sample) {
	if c.OnSample != nil {
		c.OnSample(s)
	}
}

func (c *Convergence) AddPoint(series string, cycle int, value float64) {
	if c.OnPoint != nil {
		c.OnPoint(series, cycle, value)
	}
}

func (c *Convergence) Cycle(progress float64, status string) {
	c.cycles++
	if c.OnCycle != nil {
		c.OnCycle(progress, status)
	}
}
