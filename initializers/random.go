package initializers

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// the standard deviation of the Test strategy
const testSD float64 = 0.1

type sampler interface {
	Rand() float64
}

func normal(sd float64, src rand.Source) sampler {
	return distuv.Normal{Mu: 0, Sigma: sd, Src: src}
}

// uniform gives values in [-bound, bound)
func uniform(bound float64, src rand.Source) sampler {
	return distuv.Uniform{Min: -bound, Max: bound, Src: src}
}

func xavierScale(fanIn int) float64 {
	return math.Sqrt(2 / float64(fanIn))
}

func layerSizeScale(numWeights int) float64 {
	return math.Sqrt(float64(numWeights))
}
