package main

import (
	"fmt"

	"github.com/pkg/errors"

	dn "github.com/sharnoff/deepnet"
	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/optimizers"
)

func data() []dn.Pattern {
	return []dn.Pattern{
		dn.NewPattern([]float64{-1, -1}, []float64{0}),
		dn.NewPattern([]float64{-1, 1}, []float64{0}),
		dn.NewPattern([]float64{1, -1}, []float64{0}),
		dn.NewPattern([]float64{1, 1}, []float64{1}),
	}
}

func main() {
	fmt.Print("Setting up network...")
	l, err := dn.NewLayer(activations.New(), 1, activations.Sigmoid, nil)
	if err != nil {
		panic(err.Error())
	}
	net := dn.New(2, 1).AddLayer(l)
	fmt.Println("Done!")

	trainData := data()
	weights := make([]float64, net.NumWeights())

	learningRate, maxEons := 2.0, 30
	min := optimizers.GradientDescent(learningRate)

	// one batch holds every pattern, so each eon is a single step
	pass := dn.PassThrough{Settings: dn.DefaultSettings(), Batch: trainData}

	fmt.Printf("starting training for %d eons\n", maxEons)
	for eon := 1; eon <= maxEons; eon++ {
		e, err := min.Minimize(func(ws, gs []float64) (float64, error) {
			return net.ForwardBackward(net.Layers(), pass, ws, gs, 0, nil)
		}, weights)
		if err != nil {
			fmt.Printf("%s\n", errors.Wrapf(err, "error in training during eon %d", eon))
			return
		}
		fmt.Printf("%d, %v\n", eon, e)
	}
	fmt.Println("Done training... performing final tests")

	for i, d := range trainData {
		outs, err := net.Compute(d.Input, weights)
		if err != nil {
			fmt.Printf("%s\n", errors.Wrapf(err, "at test %d", i))
			return
		}
		fmt.Printf("%v → %v\n", d.Output, outs)
	}
}
