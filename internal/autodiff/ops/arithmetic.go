package ops

import "github.com/born-ml/born-gan/internal/tensor"

// AddOp represents element-wise addition: output = a + b.
type AddOp struct {
	a, b, output *tensor.Tensor
}

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.Tensor) *AddOp {
	return &AddOp{a: a, b: b, output: output}
}

// Backward passes the gradient unchanged to both inputs.
func (op *AddOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, outputGrad}
}

// Inputs returns [a, b].
func (op *AddOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.a, op.b} }

// Output returns a + b.
func (op *AddOp) Output() *tensor.Tensor { return op.output }

// SubOp represents element-wise subtraction: output = a - b.
type SubOp struct {
	a, b, output *tensor.Tensor
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.Tensor) *SubOp {
	return &SubOp{a: a, b: b, output: output}
}

// Backward returns [grad, -grad].
func (op *SubOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, backend.MulScalar(outputGrad, -1)}
}

// Inputs returns [a, b].
func (op *SubOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.a, op.b} }

// Output returns a - b.
func (op *SubOp) Output() *tensor.Tensor { return op.output }

// MulOp represents element-wise multiplication: output = a * b.
type MulOp struct {
	a, b, output *tensor.Tensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.Tensor) *MulOp {
	return &MulOp{a: a, b: b, output: output}
}

// Backward returns [grad * b, grad * a].
func (op *MulOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{
		backend.Mul(outputGrad, op.b),
		backend.Mul(outputGrad, op.a),
	}
}

// Inputs returns [a, b].
func (op *MulOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.a, op.b} }

// Output returns a * b.
func (op *MulOp) Output() *tensor.Tensor { return op.output }

// MulScalarOp represents output = x * s for a constant s.
type MulScalarOp struct {
	input, output *tensor.Tensor
	scalar        float32
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(input, output *tensor.Tensor, scalar float32) *MulScalarOp {
	return &MulScalarOp{input: input, output: output, scalar: scalar}
}

// Backward returns [grad * s].
func (op *MulScalarOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.MulScalar(outputGrad, op.scalar)}
}

// Inputs returns [x].
func (op *MulScalarOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns x * s.
func (op *MulScalarOp) Output() *tensor.Tensor { return op.output }

// BiasOp represents output = x + bias broadcast over every dim except 1.
type BiasOp struct {
	input, bias, output *tensor.Tensor
}

// NewBiasOp creates a new BiasOp.
func NewBiasOp(input, bias, output *tensor.Tensor) *BiasOp {
	return &BiasOp{input: input, bias: bias, output: output}
}

// Backward returns [grad, sum of grad per channel].
func (op *BiasOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{outputGrad, backend.SumBias(outputGrad)}
}

// Inputs returns [x, bias].
func (op *BiasOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input, op.bias} }

// Output returns x + bias.
func (op *BiasOp) Output() *tensor.Tensor { return op.output }

// ReshapeOp records a reshape so gradients reach the original tensor.
type ReshapeOp struct {
	input, output *tensor.Tensor
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.Tensor) *ReshapeOp {
	return &ReshapeOp{input: input, output: output}
}

// Backward reshapes the gradient back to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Reshape(outputGrad, op.input.Shape())}
}

// Inputs returns [x].
func (op *ReshapeOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns the reshaped tensor.
func (op *ReshapeOp) Output() *tensor.Tensor { return op.output }
