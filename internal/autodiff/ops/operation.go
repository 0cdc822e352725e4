// Package ops defines the differentiable operations recorded on the
// gradient tape.
//
// Each operation keeps references to its inputs and output from the
// forward pass and computes input gradients from the output gradient:
//   - AddOp, SubOp, MulOp, MulScalarOp: element-wise arithmetic
//   - BiasOp: per-channel bias (d/dbias = sum over batch and space)
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - LeakyReLUOp, TanhOp, SigmoidOp: activations
//   - Conv2DOp, AvgPool2DOp, Upsample2DOp: spatial operations
//   - BatchNormOp, DropoutOp, NoiseOp: layer-specific operations
//   - BCEOp: binary cross-entropy loss
package ops

import "github.com/born-ml/born-gan/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns one entry per input; nil marks an input that receives no
	// gradient (labels, noise, masks).
	Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.Tensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.Tensor
}
