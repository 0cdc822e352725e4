package nn

import (
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Dropout zeroes a random fraction of activations during training and
// scales the rest by 1/(1-rate). In inference mode it is the identity.
type Dropout struct {
	rate     float32
	training bool
	rng      *rand.Rand
	backend  *autodiff.Backend
}

// NewDropout creates a dropout layer in training mode. A nil rng draws from
// the package-level source.
func NewDropout(rate float32, backend *autodiff.Backend, rng *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("NewDropout: rate must be in [0, 1), got %g", rate))
	}
	return &Dropout{rate: rate, training: true, rng: rng, backend: backend}
}

// Forward applies dropout in training mode.
func (d *Dropout) Forward(input *tensor.Tensor) *tensor.Tensor {
	if !d.training || d.rate == 0 {
		return input
	}
	return d.backend.Dropout(input, d.rate, d.rng)
}

// SetTraining switches between training and inference mode.
func (d *Dropout) SetTraining(training bool) {
	d.training = training
}

// Parameters returns nil.
func (d *Dropout) Parameters() []*Parameter { return nil }

func (d *Dropout) String() string {
	return fmt.Sprintf("Dropout(%g)", d.rate)
}
