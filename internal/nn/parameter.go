package nn

import (
	"github.com/born-ml/born-gan/internal/tensor"
)

// Parameter represents a learnable tensor in a neural network.
//
// Parameters carry a trainable flag. Optimizers skip parameters whose flag
// is cleared, which is how one network is held fixed while another is
// updated through it.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	restore := nn.Freeze([]*nn.Parameter{weight})
//	defer restore()
type Parameter struct {
	name      string
	tensor    *tensor.Tensor
	grad      *tensor.Tensor // set after a backward pass
	trainable bool
}

// NewParameter creates a new trainable parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{
		name:      name,
		tensor:    t,
		trainable: true,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before a backward pass.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter) SetGrad(grad *tensor.Tensor) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter) ZeroGrad() {
	p.grad = nil
}

// Trainable reports whether optimizers may update the parameter.
func (p *Parameter) Trainable() bool {
	return p.trainable
}

// SetTrainable sets the trainable flag.
func (p *Parameter) SetTrainable(trainable bool) {
	p.trainable = trainable
}

// Freeze clears the trainable flag on every parameter and returns a
// function that restores the previous flags.
func Freeze(params []*Parameter) (restore func()) {
	previous := make([]bool, len(params))
	for i, p := range params {
		previous[i] = p.trainable
		p.trainable = false
	}
	return func() {
		for i, p := range params {
			p.trainable = previous[i]
		}
	}
}

// TrainableOnly returns the parameters whose trainable flag is set.
func TrainableOnly(params []*Parameter) []*Parameter {
	out := make([]*Parameter, 0, len(params))
	for _, p := range params {
		if p.trainable {
			out = append(out, p)
		}
	}
	return out
}

// AssignGrads copies gradients computed by a backward pass onto the
// parameters. Parameters that did not take part in the computation get a
// nil gradient.
func AssignGrads(params []*Parameter, grads map[*tensor.Tensor]*tensor.Tensor) {
	for _, p := range params {
		p.grad = grads[p.tensor]
	}
}

// CountParameters returns the total number of scalar weights.
func CountParameters(params []*Parameter) int {
	n := 0
	for _, p := range params {
		n += p.tensor.NumElements()
	}
	return n
}
