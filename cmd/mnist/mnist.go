// requires resources/mnist_train.csv, resources/minst_test.csv to be in local path with format:
// <class>, img[0], img[1], img[2], ... img[783],
// <class>, img[0], img[1], img[2], ... img[783],
// ...
// where <class> is 0 -> 9 and img[n] is an integer in the range [0, 255]
//
// the constants below should be changed accordingly if anything other than the usual MNIST files are used

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	dn "github.com/sharnoff/deepnet"
	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/initializers"
	"github.com/sharnoff/deepnet/optimizers"
)

const (
	imgSize    int     = 784 // 28x28
	numClasses int     = 10  // 0 -> 9
	maxInput   float64 = 255

	trainFile string = "resources/mnist_train.csv"
	testFile  string = "resources/mnist_test.csv"
)

const (
	learningRate float64 = 0.01
	momentum     float64 = 0.5
	repetitions  int     = 4
	batchSize    int     = 10
	hiddenSize   int     = 100
	maxCycles    int     = 200
	testEvery    int     = 5
	dropFraction float64 = 0.2
)

func image(str string) (dn.Pattern, error) {
	s := strings.Split(str, ",")

	if len(s) != (imgSize + 1) {
		return dn.Pattern{}, errors.Errorf("Can't get image, not enough values from line (had %d, should be %d)", len(s), imgSize+1)
	}

	class, err := strconv.Atoi(strings.TrimSpace(s[0]))
	if err != nil {
		return dn.Pattern{}, errors.Wrapf(err, "Couldn't parse value of classifier (given: %s)", s[0])
	} else if class < 0 || class >= numClasses {
		return dn.Pattern{}, errors.Errorf("Classifier is out of bounds (%d >= %d)", class, numClasses)
	}

	ins := make([]float64, imgSize)
	for i := range ins {
		v, err := strconv.Atoi(strings.TrimSpace(s[i+1]))
		if err != nil {
			return dn.Pattern{}, errors.Wrapf(err, "Couldn't parse value %d of line (given: %s)", i, s[i+1])
		}

		ins[i] = float64(v) / maxInput
	}

	// one-hot encoding
	outs := make([]float64, numClasses)
	outs[class] = 1

	return dn.NewPattern(ins, outs), nil
}

func data(fileName string) ([]dn.Pattern, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't open file %s", fileName)
	}

	defer f.Close()

	var ps []dn.Pattern

	sc := bufio.NewScanner(f)
	for i := 0; sc.Scan(); i++ {
		p, err := image(sc.Text())
		if err != nil {
			return nil, errors.Wrapf(err, "Couldn't get image on line %d for file %s", i, fileName)
		}

		ps = append(ps, p)
	}

	if err = sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "Scanning file %s encountered an error", fileName)
	}

	return ps, nil
}

func initNet() *dn.Network {
	fmt.Println("Creating...")
	reg := activations.New()

	hidden, err := dn.NewLayer(reg, hiddenSize, activations.Tanh, nil)
	if err != nil {
		panic(err.Error())
	}

	out, err := dn.NewLayer(reg, numClasses, activations.Identity, dn.Softmax{})
	if err != nil {
		panic(err.Error())
	}

	net := dn.New(imgSize, numClasses).AddLayer(hidden).AddLayer(out).SetErrorFunction(costfuncs.SoftmaxCrossEntropy)
	if err := net.Validate(); err != nil {
		panic(err.Error())
	}

	fmt.Println("Done!")
	return net
}

func train(ctx context.Context, net *dn.Network, weights []float64, trainData, testData []dn.Pattern) {
	s := dn.DefaultSettings()
	s.BatchSize = batchSize
	s.TestRepetitions = testEvery
	s.DropFractions = []float64{dropFraction, dropFraction}
	s.Multithreading = true
	s.Logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	s.Reporter = &dn.Convergence{
		MaxCycles: maxCycles,
		OnCycle: func(progress float64, status string) {
			fmt.Printf("%5.1f%%  %s\n", progress, status)
		},
	}

	min := optimizers.NewSteepest(learningRate, momentum, repetitions).SetLogger(s.Logger)

	fmt.Println("Starting training...")
	startTime := time.Now()

	if _, err := net.Train(ctx, weights, trainData, testData, min, s); errors.Cause(err) == context.Canceled {
		fmt.Println("Interrupted, testing with the current weights")
	} else if err != nil {
		panic(err.Error())
	}

	since := time.Since(startTime)
	fmt.Printf("Done training! It took %v seconds (%v minutes)\n", since.Seconds(), since.Minutes())
}

func test(net *dn.Network, weights []float64, testData []dn.Pattern) {
	fmt.Println("Testing...")
	startTime := time.Now()

	s := dn.DefaultSettings()
	s.Multithreading = true

	cost, samples, err := net.Test(weights, testData, s)
	if err != nil {
		panic(err.Error())
	}

	fmt.Printf("cost: %v, correct: %.2f%%\n", cost, 100*dn.Accuracy(samples, dn.CorrectHighest))
	fmt.Println("Done testing! It took", time.Since(startTime).Seconds(), "seconds")
}

func main() {
	trainData, err := data(trainFile)
	if err != nil {
		panic(err.Error())
	}

	testData, err := data(testFile)
	if err != nil {
		panic(err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	net := initNet()
	weights := net.InitializeWeights(initializers.Xavier, rand.NewSource(uint64(time.Now().UnixNano())))

	train(ctx, net, weights, trainData, testData)
	test(net, weights, testData)
}
