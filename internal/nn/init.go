package nn

import (
	"math"
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
// A nil rng draws from the package-level source.
func Xavier(fanIn, fanOut int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	bound := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	return tensor.Uniform(shape, -bound, bound, rng)
}

// He (Kaiming) normal initialization, suited to leaky ReLU networks.
//
// Values are drawn from N(0, 2/fan_in).
func He(fanIn int, shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	t := tensor.Randn(shape, rng)
	std := float32(math.Sqrt(2.0 / float64(fanIn)))
	data := t.Data()
	for i := range data {
		data[i] *= std
	}
	return t
}
