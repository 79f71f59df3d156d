package deepnet

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/sharnoff/deepnet/activations"
	"github.com/sharnoff/deepnet/costfuncs"
	"github.com/sharnoff/deepnet/initializers"
)

var testRegistry = activations.New()

func layer(t *testing.T, nodes int, id activations.ID, mode OutputMode) *Layer {
	t.Helper()

	l, err := NewLayer(testRegistry, nodes, id, mode)
	require.NoError(t, err)
	return l
}

// network builds a validated network with the given input size and layers
func network(t *testing.T, inputSize int, errFunc costfuncs.Kind, layers ...*Layer) *Network {
	t.Helper()

	net := New(inputSize, layers[len(layers)-1].Nodes()).SetErrorFunction(errFunc)
	for _, l := range layers {
		net.AddLayer(l)
	}

	require.NoError(t, net.Validate())
	return net
}

func randomWeights(net *Network, seed uint64) []float64 {
	return net.InitializeWeights(initializers.XavierUniform, rand.NewSource(seed))
}
