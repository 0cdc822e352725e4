package ops

import (
	"fmt"
	"math"

	"github.com/born-ml/born-gan/internal/tensor"
)

// BatchNormOp represents per-channel normalisation of x[N, C, ...]:
//
//	output = gamma * (x - mean) / sqrt(var + eps) + beta
//
// In training mode mean and var are the batch statistics and the backward
// pass differentiates through them. In inference mode they are fixed
// running statistics and the op is affine in x.
type BatchNormOp struct {
	input, gamma, beta, output *tensor.Tensor
	normalized                 *tensor.Tensor // (x - mean) * invStd
	invStd                     []float32
	training                   bool
}

// BatchNorm computes the forward pass and returns the op.
//
// In training mode mean and variance are ignored and the batch statistics
// are returned instead (biased variance), for the caller's running
// averages. In inference mode the given statistics are used and returned.
func BatchNorm(x, gamma, beta *tensor.Tensor, mean, variance []float32, eps float32, training bool) (*BatchNormOp, []float32, []float32) {
	shape := x.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("batchnorm: expected [N, C, ...], got %v", shape))
	}
	n, c, inner := shape[0], shape[1], shape.Inner()
	if gamma.NumElements() != c || beta.NumElements() != c {
		panic(fmt.Sprintf("batchnorm: gamma/beta size must be %d", c))
	}
	count := float32(n * inner)
	xd := x.Data()

	if training {
		mean = make([]float32, c)
		variance = make([]float32, c)
		for b := 0; b < n; b++ {
			for ch := 0; ch < c; ch++ {
				base := (b*c + ch) * inner
				for i := 0; i < inner; i++ {
					mean[ch] += xd[base+i]
				}
			}
		}
		for ch := range mean {
			mean[ch] /= count
		}
		for b := 0; b < n; b++ {
			for ch := 0; ch < c; ch++ {
				base := (b*c + ch) * inner
				for i := 0; i < inner; i++ {
					d := xd[base+i] - mean[ch]
					variance[ch] += d * d
				}
			}
		}
		for ch := range variance {
			variance[ch] /= count
		}
	} else if len(mean) != c || len(variance) != c {
		panic(fmt.Sprintf("batchnorm: running statistics must have %d channels", c))
	}

	invStd := make([]float32, c)
	for ch := range invStd {
		invStd[ch] = float32(1 / math.Sqrt(float64(variance[ch]+eps)))
	}

	normalized := tensor.ZerosLike(x)
	output := tensor.ZerosLike(x)
	nd, od := normalized.Data(), output.Data()
	gd, bd := gamma.Data(), beta.Data()
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * inner
			for i := 0; i < inner; i++ {
				xh := (xd[base+i] - mean[ch]) * invStd[ch]
				nd[base+i] = xh
				od[base+i] = gd[ch]*xh + bd[ch]
			}
		}
	}

	op := &BatchNormOp{
		input:      x,
		gamma:      gamma,
		beta:       beta,
		output:     output,
		normalized: normalized,
		invStd:     invStd,
		training:   training,
	}
	return op, mean, variance
}

// Backward computes [grad_x, grad_gamma, grad_beta].
func (op *BatchNormOp) Backward(outputGrad *tensor.Tensor, _ tensor.Backend) []*tensor.Tensor {
	shape := op.input.Shape()
	n, c, inner := shape[0], shape[1], shape.Inner()
	count := float32(n * inner)

	gradGamma := tensor.Zeros(tensor.Shape{c})
	gradBeta := tensor.Zeros(tensor.Shape{c})
	gg, gb := gradGamma.Data(), gradBeta.Data()
	gd, nd := outputGrad.Data(), op.normalized.Data()
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * inner
			for i := 0; i < inner; i++ {
				gg[ch] += gd[base+i] * nd[base+i]
				gb[ch] += gd[base+i]
			}
		}
	}

	gradInput := tensor.ZerosLike(op.input)
	gi := gradInput.Data()
	gamma := op.gamma.Data()
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * inner
			scale := gamma[ch] * op.invStd[ch]
			for i := 0; i < inner; i++ {
				if op.training {
					// dx = gamma*invStd/M * (M*g - sum(g) - xhat*sum(g*xhat))
					gi[base+i] = scale / count * (count*gd[base+i] - gb[ch] - nd[base+i]*gg[ch])
				} else {
					gi[base+i] = scale * gd[base+i]
				}
			}
		}
	}

	return []*tensor.Tensor{gradInput, gradGamma, gradBeta}
}

// Inputs returns [x, gamma, beta].
func (op *BatchNormOp) Inputs() []*tensor.Tensor {
	return []*tensor.Tensor{op.input, op.gamma, op.beta}
}

// Output returns the normalised tensor.
func (op *BatchNormOp) Output() *tensor.Tensor { return op.output }
