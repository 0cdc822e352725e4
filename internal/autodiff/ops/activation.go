package ops

import "github.com/born-ml/born-gan/internal/tensor"

// LeakyReLUOp represents output = max(x, alpha*x).
//
// d/dx = 1 if x > 0, else alpha.
type LeakyReLUOp struct {
	input, output *tensor.Tensor
	alpha         float32
}

// NewLeakyReLUOp creates a new LeakyReLUOp.
func NewLeakyReLUOp(input, output *tensor.Tensor, alpha float32) *LeakyReLUOp {
	return &LeakyReLUOp{input: input, output: output, alpha: alpha}
}

// Backward masks the gradient with the derivative at the input.
func (op *LeakyReLUOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.LeakyReLUBackward(op.input, outputGrad, op.alpha)}
}

// Inputs returns [x].
func (op *LeakyReLUOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns the activation.
func (op *LeakyReLUOp) Output() *tensor.Tensor { return op.output }

// TanhOp represents output = tanh(x).
//
// d/dx = 1 - tanh(x)², computed from the stored output.
type TanhOp struct {
	input, output *tensor.Tensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(input, output *tensor.Tensor) *TanhOp {
	return &TanhOp{input: input, output: output}
}

// Backward computes grad * (1 - output²).
func (op *TanhOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	grad := tensor.ZerosLike(outputGrad)
	gd, od, yd := grad.Data(), outputGrad.Data(), op.output.Data()
	for i, y := range yd {
		gd[i] = od[i] * (1 - y*y)
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns [x].
func (op *TanhOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns tanh(x).
func (op *TanhOp) Output() *tensor.Tensor { return op.output }

// SigmoidOp represents the sigmoid activation: σ(x) = 1 / (1 + exp(-x)).
//
// dσ/dx = σ(x) * (1 - σ(x)), computed from the stored output.
type SigmoidOp struct {
	input, output *tensor.Tensor
}

// NewSigmoidOp creates a new sigmoid operation.
func NewSigmoidOp(input, output *tensor.Tensor) *SigmoidOp {
	return &SigmoidOp{input: input, output: output}
}

// Backward computes grad * σ(x) * (1 - σ(x)).
func (op *SigmoidOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	grad := tensor.ZerosLike(outputGrad)
	gd, od, yd := grad.Data(), outputGrad.Data(), op.output.Data()
	for i, y := range yd {
		gd[i] = od[i] * y * (1 - y)
	}
	return []*tensor.Tensor{grad}
}

// Inputs returns [x].
func (op *SigmoidOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns σ(x).
func (op *SigmoidOp) Output() *tensor.Tensor { return op.output }
