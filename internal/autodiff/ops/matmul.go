package ops

import "github.com/born-ml/born-gan/internal/tensor"

// MatMulOp represents matrix multiplication.
//
// With transposeB unset: output = a @ b
//   - grad_a = grad @ b^T
//   - grad_b = a^T @ grad
//
// With transposeB set: output = a @ b^T (Linear layer, weight stored [out, in])
//   - grad_a = grad @ b
//   - grad_b = grad^T @ a
type MatMulOp struct {
	a, b, output *tensor.Tensor
	transposeB   bool
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.Tensor, transposeB bool) *MatMulOp {
	return &MatMulOp{a: a, b: b, output: output, transposeB: transposeB}
}

// Backward computes gradients for both operands.
func (op *MatMulOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	if op.transposeB {
		return []*tensor.Tensor{
			backend.MatMul(outputGrad, op.b),
			backend.MatMulTransposeA(outputGrad, op.a),
		}
	}
	return []*tensor.Tensor{
		backend.MatMulTransposeB(outputGrad, op.b),
		backend.MatMulTransposeA(op.a, outputGrad),
	}
}

// Inputs returns [a, b].
func (op *MatMulOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.a, op.b} }

// Output returns the product.
func (op *MatMulOp) Output() *tensor.Tensor { return op.output }
