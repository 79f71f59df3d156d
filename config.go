package deepnet

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/initializers"
	"github.com/sharnoff/deepnet/optimizers"
	"github.com/sharnoff/deepnet/penalties"
)

// Config is the YAML description of a network and how to train it. The output size is taken from
// the last layer.
type Config struct {
	Input         int           `yaml:"input"`
	Layers        []LayerConfig `yaml:"layers"`
	ErrorFunction string        `yaml:"errorFunction"`
	Init          string        `yaml:"init"`

	Minimizer MinimizerConfig `yaml:"minimizer"`
	Training  TrainingConfig  `yaml:"training"`
}

type LayerConfig struct {
	Nodes      int    `yaml:"nodes"`
	Activation string `yaml:"activation"`
	// Output is the output mode: "direct" (default), "sigmoid" or "softmax"
	Output string `yaml:"output"`
}

// MinimizerConfig gives the parameters of optimizers.Steepest
type MinimizerConfig struct {
	Alpha       float64 `yaml:"alpha"`
	Beta        float64 `yaml:"beta"`
	Repetitions int     `yaml:"repetitions"`
}

type TrainingConfig struct {
	BatchSize       int       `yaml:"batchSize"`
	DropFractions   []float64 `yaml:"dropFractions"`
	DropRepetitions int       `yaml:"dropRepetitions"`
	TestRepetitions int       `yaml:"testRepetitions"`
	Multithreading  bool      `yaml:"multithreading"`
	Workers         int       `yaml:"workers"`
	WeightDecay     float64   `yaml:"weightDecay"`
	Regularization  string    `yaml:"regularization"`
	Seed            uint64    `yaml:"seed"`
	PreTrain        bool      `yaml:"preTrain"`

	ConvergenceSteps int `yaml:"convergenceSteps"`
	MaxCycles        int `yaml:"maxCycles"`
}

// DefaultConfig returns the values used for anything that a loaded Config leaves out
func DefaultConfig() Config {
	s := DefaultSettings()
	return Config{
		ErrorFunction: costfuncs.SumOfSquares.TypeString(),
		Init:          initializers.XavierUniform.TypeString(),
		Minimizer: MinimizerConfig{
			Alpha:       1e-2,
			Beta:        0.5,
			Repetitions: 10,
		},
		Training: TrainingConfig{
			BatchSize:        s.BatchSize,
			DropRepetitions:  s.DropRepetitions,
			TestRepetitions:  s.TestRepetitions,
			ConvergenceSteps: DefaultConvergenceSteps,
		},
	}
}

// LoadConfig reads a YAML Config, filling in anything not given from DefaultConfig. Unknown fields
// are an error.
func LoadConfig(r io.Reader) (*Config, error) {
	c := DefaultConfig()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode config")
	}

	return &c, nil
}

// InitStrategy returns the weight initialization strategy named by the Config
func (c *Config) InitStrategy() (initializers.Strategy, error) {
	return initializers.Parse(c.Init)
}

// Build constructs the Network, Settings and minimizer described by the Config, using reg to look
// up the activation functions. The Network is validated before it is returned.
func (c *Config) Build(reg activations.Registry) (*Network, *Settings, *optimizers.Steepest, error) {
	if len(c.Layers) == 0 {
		return nil, nil, nil, errors.WithStack(ErrNoLayers)
	}

	errFunc, err := costfuncs.Parse(c.ErrorFunction)
	if err != nil {
		return nil, nil, nil, err
	}

	net := New(c.Input, c.Layers[len(c.Layers)-1].Nodes).SetErrorFunction(errFunc)
	for i, lc := range c.Layers {
		fn, ok := reg.Lookup(lc.Activation)
		if !ok {
			return nil, nil, nil, errors.Errorf("layer %d: unknown activation function %q", i, lc.Activation)
		}

		mode, err := ParseOutputMode(lc.Output)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "layer %d", i)
		}

		l, err := NewLayer(reg, lc.Nodes, fn.ID, mode)
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "layer %d", i)
		}

		net.AddLayer(l)
	}

	if err := net.Validate(); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "Config describes an invalid network")
	}

	t := c.Training
	regKind, err := penalties.Parse(t.Regularization)
	if err != nil {
		return nil, nil, nil, err
	}

	s := &Settings{
		BatchSize:       t.BatchSize,
		DropFractions:   t.DropFractions,
		DropRepetitions: t.DropRepetitions,
		TestRepetitions: t.TestRepetitions,
		Multithreading:  t.Multithreading,
		Workers:         t.Workers,
		WeightDecay:     t.WeightDecay,
		Regularization:  regKind,
		Seed:            t.Seed,
		Reporter:        &Convergence{Steps: t.ConvergenceSteps, MaxCycles: t.MaxCycles},
	}

	if err := s.Validate(); err != nil {
		return nil, nil, nil, errors.Wrapf(err, "Config describes invalid settings")
	}

	m := c.Minimizer
	if m.Repetitions < 1 {
		return nil, nil, nil, errors.Errorf("minimizer repetitions must be ≥ 1 (got %d)", m.Repetitions)
	}

	return net, s, optimizers.NewSteepest(m.Alpha, m.Beta, m.Repetitions).Seed(t.Seed), nil
}

// ReadPatterns reads patterns from CSV: each record is the inputs, then the outputs, then
// optionally the weight of the pattern (default 1). Lines starting with '#' are ignored.
func ReadPatterns(r io.Reader, inputs, outputs int) ([]Pattern, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var ps []Pattern
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Wrapf(err, "Failed to read patterns")
		}

		if len(rec) != inputs+outputs && len(rec) != inputs+outputs+1 {
			return nil, errors.Errorf("record %d has %d fields, expected %d or %d", line, len(rec), inputs+outputs, inputs+outputs+1)
		}

		vs := make([]float64, len(rec))
		for i, f := range rec {
			if vs[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, errors.Wrapf(err, "record %d, field %d", line, i)
			}
		}

		p := NewPattern(vs[:inputs:inputs], vs[inputs:inputs+outputs:inputs+outputs])
		if len(vs) > inputs+outputs {
			p.Weight = vs[inputs+outputs]
		}

		ps = append(ps, p)
	}

	return ps, nil
}
