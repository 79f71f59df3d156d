package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/exp/rand"

	dn "github.com/sharnoff/deepnet"
	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/initializers"
	"github.com/sharnoff/deepnet/optimizers"
)

const (
	statusFrequency int = 50

	// main hyperparameters
	learningRate float64 = 0.1
	momentum     float64 = 0.5
	repetitions  int     = 5
	hiddenSize   int     = 3
	maxCycles    int     = 3000
	seed         uint64  = 1
)

func dataset() []dn.Pattern {
	return []dn.Pattern{
		dn.NewPattern([]float64{-1, -1}, []float64{0}),
		dn.NewPattern([]float64{-1, 1}, []float64{1}),
		dn.NewPattern([]float64{1, -1}, []float64{1}),
		dn.NewPattern([]float64{1, 1}, []float64{0}),
	}
}

func initNet() *dn.Network {
	reg := activations.New()

	fmt.Println("Setting up network...")
	hidden, err := dn.NewLayer(reg, hiddenSize, activations.Tanh, nil)
	if err != nil {
		panic(err.Error())
	}

	output, err := dn.NewLayer(reg, 1, activations.Identity, dn.Sigmoid{})
	if err != nil {
		panic(err.Error())
	}

	net := dn.New(2, 1).AddLayer(hidden).AddLayer(output).SetErrorFunction(costfuncs.CrossEntropy)
	if err := net.Validate(); err != nil {
		panic(err.Error())
	}
	fmt.Println("Done!")

	return net
}

func train(net *dn.Network, weights []float64, data []dn.Pattern) {
	s := dn.DefaultSettings()
	s.BatchSize = len(data)
	s.Seed = seed
	s.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	s.Reporter = &dn.Convergence{
		Steps:     100,
		MaxCycles: maxCycles,
		OnPoint: func(series string, cycle int, value float64) {
			if series == dn.TestErrors && cycle%statusFrequency == 0 {
				fmt.Printf("%d, %v\n", cycle, value)
			}
		},
	}

	min := optimizers.NewSteepest(learningRate, momentum, repetitions).Seed(seed)

	fmt.Println("Starting training...")
	fmt.Println("Cycle, Test Cost")
	if _, err := net.Train(context.Background(), weights, data, data, min, s); err != nil {
		panic(err.Error())
	}
	fmt.Println("Done training!")
}

func test(net *dn.Network, weights []float64, data []dn.Pattern) {
	fmt.Println("Testing...")
	cost, samples, err := net.Test(weights, data, dn.DefaultSettings())
	if err != nil {
		panic(err.Error())
	}

	for _, s := range samples {
		fmt.Printf("%v -> %.3f\n", s.Truth, s.Output)
	}
	fmt.Printf("cost: %v, correct: %v%%\n", cost, 100*dn.Accuracy(samples, dn.CorrectRound))
}

func main() {
	data := dataset()

	net := initNet()
	weights := net.InitializeWeights(initializers.XavierUniform, rand.NewSource(seed))

	train(net, weights, data)
	test(net, weights, data)
}
