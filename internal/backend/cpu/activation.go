package cpu

import (
	"math"

	"github.com/born-ml/born-gan/internal/tensor"
)

// LeakyReLU computes max(x, alpha*x).
func (cpu *Backend) LeakyReLU(x *tensor.Tensor, alpha float32) *tensor.Tensor {
	out := tensor.ZerosLike(x)
	od, xd := out.Data(), x.Data()
	for i, v := range xd {
		if v > 0 {
			od[i] = v
		} else {
			od[i] = alpha * v
		}
	}
	return out
}

// LeakyReLUBackward masks grad with the LeakyReLU derivative at x.
func (cpu *Backend) LeakyReLUBackward(x, grad *tensor.Tensor, alpha float32) *tensor.Tensor {
	checkSameShape("leaky relu backward", x, grad)
	out := tensor.ZerosLike(x)
	od, xd, gd := out.Data(), x.Data(), grad.Data()
	for i, v := range xd {
		if v > 0 {
			od[i] = gd[i]
		} else {
			od[i] = alpha * gd[i]
		}
	}
	return out
}

// Tanh computes the hyperbolic tangent element-wise.
func (cpu *Backend) Tanh(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.ZerosLike(x)
	od, xd := out.Data(), x.Data()
	for i, v := range xd {
		od[i] = float32(math.Tanh(float64(v)))
	}
	return out
}

// Sigmoid computes 1 / (1 + exp(-x)) element-wise.
func (cpu *Backend) Sigmoid(x *tensor.Tensor) *tensor.Tensor {
	out := tensor.ZerosLike(x)
	od, xd := out.Data(), x.Data()
	for i, v := range xd {
		// Split on sign so exp never overflows.
		if v >= 0 {
			od[i] = float32(1 / (1 + math.Exp(-float64(v))))
		} else {
			e := math.Exp(float64(v))
			od[i] = float32(e / (1 + e))
		}
	}
	return out
}
