// Package deepnet provides a dense feed-forward neural network and the machinery to train it:
// mini-batch forward/backward propagation, steepest descent with momentum, L1/L2 weight decay,
// dropout, weight initialization, and layer-wise autoencoder pretraining.
//
// Creating Networks
//
// A Network is only a topology: an input size, an ordered list of Layers, and an error function.
// The weights are kept outside of it, in a single []float64, so that the same Network can be
// evaluated with many sets of weights (which the minimizers rely on for their lookahead).
//
//		reg := activations.New()
//		hidden, _ := deepnet.NewLayer(reg, 8, activations.Tanh, nil)
//		out, _ := deepnet.NewLayer(reg, 1, activations.Identity, deepnet.Sigmoid{})
//
//		net := deepnet.New(2, 1).AddLayer(hidden).AddLayer(out).SetErrorFunction(costfuncs.CrossEntropy)
//		if err := net.Validate(); err != nil {
//			return err
//		}
//
// The activation functions are looked up in an activations.Registry, which is built once and
// passed explicitly to every Layer.
//
// Weights
//
// The weights of all layers are stored back to back, in topology order. Within a layer, the weight
// from source node s to target node t is at offset + s*nodes + t. The length of the array is given
// by (*Network).NumWeights, and it can be filled by (*Network).InitializeWeights.
//
// Training
//
// Training is done with Train, which runs cycles over the training patterns until the Reporter in
// the Settings signals convergence or the context is cancelled:
//
//		s := deepnet.DefaultSettings()
//		s.Reporter = &deepnet.Convergence{Steps: 20}
//
//		testErr, err := net.Train(ctx, weights, trainPatterns, testPatterns, optimizers.NewSteepest(1e-2, 0.5, 10), s)
//
// Networks may also be pretrained, layer by layer, with PreTrain.
//
// Configuration
//
// A Network, its Settings and a minimizer can all be described in YAML and built with LoadConfig
// and (*Config).Build. See cmd/deepnet for an example.
package deepnet
