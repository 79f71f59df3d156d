// deepnet trains a network described by a YAML config on patterns read from CSV files.
//
// Usage:
//
//	deepnet -config net.yaml -train train.csv [-test test.csv] [-v]
//
// Each CSV record holds the inputs of a pattern, then its outputs, then optionally its weight. The
// trained weights are written to stdout, one per line.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	dn "github.com/sharnoff/deepnet"
	"github.com/sharnoff/deepnet/activations"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML network config")
	trainPath := flag.String("train", "", "path to the CSV training patterns")
	testPath := flag.String("test", "", "path to the CSV test patterns (default: none)")
	verbose := flag.Bool("v", false, "log every cycle")
	flag.Parse()

	if *configPath == "" || *trainPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, logger, *configPath, *trainPath, *testPath, os.Stdout); err != nil {
		logger.Error("failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, trainPath, testPath string, out io.Writer) error {
	f, err := os.Open(configPath)
	if err != nil {
		return errors.Wrapf(err, "Couldn't open config")
	}
	c, err := dn.LoadConfig(f)
	f.Close()
	if err != nil {
		return err
	}

	reg := activations.New()

	net, s, min, err := c.Build(reg)
	if err != nil {
		return err
	}
	s.Logger = logger
	min.SetLogger(logger)

	train, err := readPatterns(trainPath, net)
	if err != nil {
		return err
	}

	var test []dn.Pattern
	if testPath != "" {
		if test, err = readPatterns(testPath, net); err != nil {
			return err
		}
	}

	strat, err := c.InitStrategy()
	if err != nil {
		return err
	}
	weights := net.InitializeWeights(strat, rand.NewSource(s.Seed))

	if c.Training.PreTrain {
		if err := net.PreTrain(ctx, reg, weights, train, test, min, s); err != nil {
			return err
		}
		if r, ok := s.Reporter.(*dn.Convergence); ok {
			r.Reset()
		}
	}

	e, err := net.Train(ctx, weights, train, test, min, s)
	if err != nil {
		return err
	}
	logger.Info("done", slog.Float64("error", e))

	if len(test) != 0 {
		_, samples, err := net.Test(weights, test, s)
		if err != nil {
			return err
		}

		isCorrect := dn.CorrectRound
		if net.OutputSize() > 1 {
			isCorrect = dn.CorrectHighest
		}
		logger.Info("tested", slog.Float64("accuracy", dn.Accuracy(samples, isCorrect)))
	}

	for _, w := range weights {
		if _, err := fmt.Fprintln(out, w); err != nil {
			return errors.Wrapf(err, "Couldn't write weights")
		}
	}
	return nil
}

func readPatterns(path string, net *dn.Network) ([]dn.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't open patterns")
	}
	defer f.Close()

	ps, err := dn.ReadPatterns(f, net.InputSize(), net.OutputSize())
	return ps, errors.Wrapf(err, "%s", path)
}
