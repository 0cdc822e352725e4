package ops

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/tensor"
)

// NoiseOp represents per-channel scaled noise injection:
//
//	output[n, c, y, x] = input[n, c, y, x] + strength[c] * noise[n, 0, y, x]
//
// The noise map is an input without gradient.
type NoiseOp struct {
	input, noise, strength, output *tensor.Tensor
}

// Noise computes the forward pass and returns the op.
func Noise(x, noise, strength *tensor.Tensor) *NoiseOp {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("noise: expected NCHW input, got %v", shape))
	}
	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	if !noise.Shape().Equal(tensor.Shape{n, 1, h, w}) {
		panic(fmt.Sprintf("noise: noise shape %v, want [%dx1x%dx%d]", noise.Shape(), n, h, w))
	}
	if strength.NumElements() != c {
		panic(fmt.Sprintf("noise: strength must have %d elements, got %d", c, strength.NumElements()))
	}

	plane := h * w
	output := tensor.ZerosLike(x)
	od, xd, nd, sd := output.Data(), x.Data(), noise.Data(), strength.Data()
	for b := 0; b < n; b++ {
		np := nd[b*plane : (b+1)*plane]
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * plane
			for i := 0; i < plane; i++ {
				od[base+i] = xd[base+i] + sd[ch]*np[i]
			}
		}
	}
	return &NoiseOp{input: x, noise: noise, strength: strength, output: output}
}

// Backward returns [grad, nil, grad_strength].
func (op *NoiseOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	shape := op.input.Shape()
	n, c, plane := shape[0], shape[1], shape[2]*shape[3]

	gradStrength := tensor.Zeros(tensor.Shape{c})
	gs, gd, nd := gradStrength.Data(), outputGrad.Data(), op.noise.Data()
	for b := 0; b < n; b++ {
		np := nd[b*plane : (b+1)*plane]
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * plane
			for i := 0; i < plane; i++ {
				gs[ch] += gd[base+i] * np[i]
			}
		}
	}
	return []*tensor.Tensor{outputGrad, nil, gradStrength}
}

// Inputs returns [x, noise, strength].
func (op *NoiseOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input, op.noise, op.strength}
}

// Output returns the noisy tensor.
func (op *NoiseOp) Output() *tensor.Tensor { return op.output }
