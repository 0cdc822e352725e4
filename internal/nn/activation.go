package nn

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/autodiff"
	"github.com/born-ml/born-gan/internal/tensor"
)

// LeakyReLU applies f(x) = x for x > 0 and alpha*x otherwise.
type LeakyReLU struct {
	alpha   float32
	backend *autodiff.Backend
}

// NewLeakyReLU creates a leaky ReLU with the given negative slope.
func NewLeakyReLU(alpha float32, backend *autodiff.Backend) *LeakyReLU {
	return &LeakyReLU{alpha: alpha, backend: backend}
}

// Forward applies the activation.
func (r *LeakyReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return r.backend.LeakyReLU(input, r.alpha)
}

// Parameters returns nil.
func (r *LeakyReLU) Parameters() []*Parameter { return nil }

func (r *LeakyReLU) String() string {
	return fmt.Sprintf("LeakyReLU(%g)", r.alpha)
}

// Sigmoid applies f(x) = 1 / (1 + exp(-x)).
type Sigmoid struct {
	backend *autodiff.Backend
}

// NewSigmoid creates a sigmoid activation module.
func NewSigmoid(backend *autodiff.Backend) *Sigmoid {
	return &Sigmoid{backend: backend}
}

// Forward applies the activation.
func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	return s.backend.Sigmoid(input)
}

// Parameters returns nil.
func (s *Sigmoid) Parameters() []*Parameter { return nil }

func (s *Sigmoid) String() string { return "Sigmoid" }

// Tanh applies the hyperbolic tangent, mapping into (-1, 1).
type Tanh struct {
	backend *autodiff.Backend
}

// NewTanh creates a tanh activation module.
func NewTanh(backend *autodiff.Backend) *Tanh {
	return &Tanh{backend: backend}
}

// Forward applies the activation.
func (t *Tanh) Forward(input *tensor.Tensor) *tensor.Tensor {
	return t.backend.Tanh(input)
}

// Parameters returns nil.
func (t *Tanh) Parameters() []*Parameter { return nil }

func (t *Tanh) String() string { return "Tanh" }
