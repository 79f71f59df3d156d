package deepnet

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/initializers"
	"github.com/sharnoff/deepnet/penalties"
	"github.com/sharnoff/deepnet/utils"
)

// Network is the topology of a feed-forward network: the size of its input, its layers in order,
// and the error function it is trained against. It holds no weights.
//
// The methods that modify the Network return it, so that they can be chained.
type Network struct {
	inputSize  int
	outputSize int
	layers     []*Layer
	errFunc    costfuncs.Kind
}

// New returns an empty Network with the given input and output sizes, using the sum-of-squares
// error function.
func New(inputSize, outputSize int) *Network {
	return &Network{
		inputSize:  inputSize,
		outputSize: outputSize,
		errFunc:    costfuncs.SumOfSquares,
	}
}

// AddLayer appends a layer to the end of the Network
func (net *Network) AddLayer(l *Layer) *Network {
	net.layers = append(net.layers, l)
	return net
}

// RemoveLayer removes the last layer of the Network, if there is one.
func (net *Network) RemoveLayer() *Network {
	if len(net.layers) != 0 {
		net.layers = net.layers[:len(net.layers)-1:len(net.layers)-1]
	}
	return net
}

func (net *Network) SetInputSize(n int) *Network {
	net.inputSize = n
	return net
}

func (net *Network) SetOutputSize(n int) *Network {
	net.outputSize = n
	return net
}

func (net *Network) SetErrorFunction(k costfuncs.Kind) *Network {
	net.errFunc = k
	return net
}

// Layers returns a copy of the list of layers
func (net *Network) Layers() []*Layer {
	return append([]*Layer(nil), net.layers...)
}

func (net *Network) InputSize() int {
	return net.inputSize
}

func (net *Network) OutputSize() int {
	return net.outputSize
}

func (net *Network) ErrorFunction() costfuncs.Kind {
	return net.errFunc
}

// LayerSizes returns the number of nodes in each layer, not including the input
func (net *Network) LayerSizes() []int {
	return layerSizes(net.layers)
}

func layerSizes(layers []*Layer) []int {
	ns := make([]int, len(layers))
	for i, l := range layers {
		ns[i] = l.Nodes()
	}
	return ns
}

// NumWeights returns the total number of weights in the Network, which is the required length of
// any weight or gradient array used with it.
func (net *Network) NumWeights() int {
	return numWeights(net.inputSize, net.layers)
}

func numWeights(inputSize int, layers []*Layer) int {
	n, prev := 0, inputSize
	for _, l := range layers {
		n += l.NumWeights(prev)
		prev = l.Nodes()
	}
	return n
}

// Validate checks that the Network is ready to be used. It returns ErrNoLayers if there are no
// layers and a SizeMismatchError if the output size does not match the last layer. Settings that
// can never work (no inputs, an unknown error function, or one that requires probabilities the
// output layer does not give) are ErrNotConfigured, wrapped with the details.
func (net *Network) Validate() error {
	if net.inputSize < 1 {
		return errors.Wrapf(ErrNotConfigured, "input size must be at least 1 (got %d)", net.inputSize)
	} else if len(net.layers) == 0 {
		return ErrNoLayers
	}

	for i, l := range net.layers {
		if l == nil {
			return NilArgError{"layer " + strconv.Itoa(i)}
		}
	}

	last := net.layers[len(net.layers)-1]
	if last.Nodes() != net.outputSize {
		return SizeMismatchError{"output layer", net.outputSize, last.Nodes()}
	}

	if net.errFunc.Func() == nil {
		return errors.Wrapf(ErrNotConfigured, "unknown error function %d", net.errFunc)
	} else if net.errFunc.NeedsProbabilities() && !last.Mode().Probabilities() {
		return errors.Wrapf(ErrNotConfigured, "error function %s requires an output mode giving probabilities (got %s)",
			net.errFunc, last.Mode().TypeString())
	}

	return nil
}

// InitializeWeights returns a new weight array for the Network, filled according to the strategy.
// For unknown strategies, the weights are left at zero.
func (net *Network) InitializeWeights(s initializers.Strategy, src rand.Source) []float64 {
	ws := make([]float64, net.NumWeights())

	// the length always matches, so Fill cannot fail
	_ = initializers.Fill(s, net.inputSize, net.LayerSizes(), ws, src)
	return ws
}

// Compute returns the output of the Network for a single input, presented according to the output
// mode of the last layer. Compute is deterministic and does not use dropout.
func (net *Network) Compute(input, weights []float64) ([]float64, error) {
	if len(net.layers) == 0 {
		return nil, errors.WithStack(ErrNoLayers)
	} else if len(input) != net.inputSize {
		return nil, SizeMismatchError{"input", net.inputSize, len(input)}
	} else if n := net.NumWeights(); len(weights) != n {
		return nil, SizeMismatchError{"weights", n, len(weights)}
	}

	rows, err := buildRows(net.inputSize, net.layers, input, nil, -1)
	if err != nil {
		return nil, err
	}

	for i := 1; i < len(rows); i++ {
		if err := Forward(rows[i-1], rows[i], weights); err != nil {
			return nil, errors.Wrapf(err, "Failed to compute layer %d", i-1)
		}
	}

	return rows[len(rows)-1].Output(), nil
}

// buildRows creates the LayerData for a single pattern: the input followed by every layer. Layers
// with index ≥ trainFrom are created for training; trainFrom < 0 disables training.
func buildRows(inputSize int, layers []*Layer, input []float64, drop DropMask, trainFrom int) ([]*LayerData, error) {
	rows := make([]*LayerData, len(layers)+1)

	var err error
	if rows[0], err = NewInputData(input, drop.Row(0)); err != nil {
		return nil, err
	}

	ranges := weightRanges(inputSize, layers)
	prev := inputSize
	for i, l := range layers {
		training := trainFrom >= 0 && i >= trainFrom
		if rows[i+1], err = NewLayerData(l, prev, ranges[i], drop.Row(i+1), training); err != nil {
			return nil, errors.Wrapf(err, "Failed to create data for layer %d", i)
		}

		prev = l.Nodes()
	}

	return rows, nil
}

// PassThrough is the context of a single evaluation of a batch.
type PassThrough struct {
	// Settings gives the weight decay. It may be nil, in which case there is none.
	Settings *Settings
	Batch    Batch
	// Drop may be nil if dropout is not being used
	Drop DropMask
}

// ForwardBackward evaluates the batch with the given layers (typically net.Layers()) and returns
// the weighted mean error of its patterns, plus the weight decay.
//
// If gradients is not nil, the gradients are also calculated: they are zeroed, filled with the
// negative derivative of the error with respect to each weight (summed over the patterns), and
// finally divided by the size of the batch. Only the weights of layers with index ≥
// trainFromLayer receive gradients; the earlier layers are treated as fixed.
//
// If out is not nil, the output of the last layer for each pattern is appended to it.
//
// The error of each pattern is scaled by its weight, and the total divided by the sum of the
// absolute pattern weights (or by 1, if that sum is zero).
//
// If the Settings of the pass allow more than one worker, the patterns of the batch are split
// into contiguous ranges that are evaluated concurrently, each into its own gradient buffer. The
// buffers are summed in order once every worker has finished. weights is only read.
func (net *Network) ForwardBackward(layers []*Layer, pass PassThrough, weights, gradients []float64, trainFromLayer int, out *[][]float64) (float64, error) {
	if len(layers) == 0 {
		return 0, errors.WithStack(ErrNoLayers)
	}

	n := numWeights(net.inputSize, layers)
	if len(weights) != n {
		return 0, SizeMismatchError{"weights", n, len(weights)}
	} else if gradients != nil && len(gradients) != n {
		return 0, SizeMismatchError{"gradients", n, len(gradients)}
	} else if last := layers[len(layers)-1]; last.Nodes() != net.outputSize {
		return 0, SizeMismatchError{"output layer", net.outputSize, last.Nodes()}
	}

	if net.errFunc.Func() == nil {
		return 0, errors.Errorf("unknown error function %d", net.errFunc)
	}

	training := gradients != nil && trainFromLayer < len(layers)
	if gradients != nil {
		for i := range gradients {
			gradients[i] = 0
		}
	}

	trainFrom := -1
	if training {
		if trainFromLayer < 0 {
			trainFromLayer = 0
		}
		trainFrom = trainFromLayer
	}

	var decay float64
	var kind penalties.Kind
	workers := 1
	if pass.Settings != nil {
		decay, kind = pass.Settings.WeightDecay, pass.Settings.Regularization
		workers = pass.Settings.workers()
	}

	var sum batchSum
	if workers <= 1 || len(pass.Batch) <= 1 {
		var g []float64
		if training {
			g = gradients
		}

		sum = net.accumulate(layers, pass, 0, len(pass.Batch), weights, g, trainFrom, out != nil)
		if sum.err != nil {
			return 0, sum.err
		}
	} else {
		parts := utils.Fork(len(pass.Batch), workers, func(_, start, end int) batchSum {
			var g []float64
			if training {
				g = make([]float64, n)
			}
			return net.accumulate(layers, pass, start, end, weights, g, trainFrom, out != nil)
		})

		for _, p := range parts {
			if p.err != nil {
				return 0, p.err
			}

			sum.errSum += p.errSum
			sum.weightSum += p.weightSum
			sum.outputs = append(sum.outputs, p.outputs...)
			if training {
				floats.Add(gradients, p.gradients)
			}
		}
	}

	if out != nil {
		*out = append(*out, sum.outputs...)
	}

	if gradients != nil {
		batchSize := float64(len(pass.Batch))
		if batchSize == 0 {
			batchSize = 1
		}
		floats.Scale(1/batchSize, gradients)
	}

	if sum.weightSum == 0 {
		sum.weightSum = 1
	}

	return penalties.WeightDecay(sum.errSum/sum.weightSum, weights, decay, kind), nil
}

// batchSum is the unnormalized result of evaluating part of a batch
type batchSum struct {
	errSum    float64
	weightSum float64
	outputs   [][]float64
	// nil unless training
	gradients []float64
	err       error
}

// accumulate evaluates the patterns pass.Batch[start:end], adding the raw gradients of each into
// gradients if it is not nil. The layers with index ≥ trainFrom are trained; trainFrom < 0 means
// that none are.
func (net *Network) accumulate(layers []*Layer, pass PassThrough, start, end int, weights, gradients []float64, trainFrom int, keepOutputs bool) batchSum {
	training := gradients != nil && trainFrom >= 0
	errFunc := net.errFunc.Func()

	var decay float64
	var kind penalties.Kind
	if pass.Settings != nil {
		decay, kind = pass.Settings.WeightDecay, pass.Settings.Regularization
	}

	sum := batchSum{gradients: gradients}
	if keepOutputs {
		sum.outputs = make([][]float64, 0, end-start)
	}

	// ----- forward -----
	patternRows := make([][]*LayerData, end-start)
	for p := start; p < end; p++ {
		pattern := pass.Batch[p]
		if len(pattern.Input) != net.inputSize {
			sum.err = SizeMismatchError{"pattern input", net.inputSize, len(pattern.Input)}
			return sum
		} else if len(pattern.Output) != net.outputSize {
			sum.err = SizeMismatchError{"pattern output", net.outputSize, len(pattern.Output)}
			return sum
		}

		rows, err := buildRows(net.inputSize, layers, pattern.Input, pass.Drop, trainFrom)
		if err != nil {
			sum.err = err
			return sum
		}

		for i := 1; i < len(rows); i++ {
			if training && i-1 >= trainFrom {
				err = ForwardTraining(rows[i-1], rows[i], weights)
			} else {
				err = Forward(rows[i-1], rows[i], weights)
			}

			if err != nil {
				sum.err = errors.Wrapf(err, "Failed to propagate pattern %d forward into layer %d", p, i-1)
				return sum
			}
		}

		patternRows[p-start] = rows
	}

	// ----- outputs and error -----
	for i, rows := range patternRows {
		pattern := pass.Batch[start+i]
		last := rows[len(layers)]

		var probs []float64
		if net.errFunc.NeedsProbabilities() || keepOutputs {
			probs = last.Output()
		}

		if keepOutputs {
			sum.outputs = append(sum.outputs, probs)
		}

		values := last.Values()
		if net.errFunc.NeedsProbabilities() {
			values = probs
		}

		var deltas []float64
		if training {
			deltas = last.Deltas()
		}

		sum.errSum += errFunc(values, pattern.Output, deltas, pattern.Weight)
		sum.weightSum += math.Abs(pattern.Weight)
	}

	if !training {
		return sum
	}

	// ----- backpropagation -----
	factor := decay / float64(len(weights))
	for idx := len(layers); idx > trainFrom; idx-- {
		for _, rows := range patternRows {
			prev, curr := rows[idx-1], rows[idx]
			if idx-1 > trainFrom {
				if err := Backward(prev, curr, weights); err != nil {
					sum.err = errors.Wrapf(err, "Failed to backpropagate from layer %d", idx-1)
					return sum
				}
			}

			if err := Update(prev, curr, weights, gradients, factor, kind); err != nil {
				sum.err = errors.Wrapf(err, "Failed to update gradients of layer %d", idx-1)
				return sum
			}
		}
	}

	return sum
}
