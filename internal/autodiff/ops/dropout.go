package ops

import (
	"math/rand/v2"

	"github.com/born-ml/born-gan/internal/tensor"
)

// DropoutOp represents inverted dropout: output = x * mask, where mask is
// 0 with probability rate and 1/(1-rate) otherwise.
type DropoutOp struct {
	input, mask, output *tensor.Tensor
}

// Dropout samples a mask and computes the forward pass.
// A nil rng uses the package-level source of math/rand/v2.
func Dropout(x *tensor.Tensor, rate float32, rng *rand.Rand) *DropoutOp {
	mask := tensor.ZerosLike(x)
	keep := 1 / (1 - rate)
	md := mask.Data()
	for i := range md {
		var u float32
		if rng == nil {
			u = rand.Float32()
		} else {
			u = rng.Float32()
		}
		if u >= rate {
			md[i] = keep
		}
	}

	output := tensor.ZerosLike(x)
	od, xd := output.Data(), x.Data()
	for i := range od {
		od[i] = xd[i] * md[i]
	}
	return &DropoutOp{input: x, mask: mask, output: output}
}

// Backward returns [grad * mask].
func (op *DropoutOp) Backward(outputGrad *tensor.Tensor, backend tensor.Backend) []*tensor.Tensor {
	return []*tensor.Tensor{backend.Mul(outputGrad, op.mask)}
}

// Inputs returns [x].
func (op *DropoutOp) Inputs() []*tensor.Tensor { return []*tensor.Tensor{op.input} }

// Output returns the masked tensor.
func (op *DropoutOp) Output() *tensor.Tensor { return op.output }

// Mask returns the sampled mask.
func (op *DropoutOp) Mask() *tensor.Tensor { return op.mask }
