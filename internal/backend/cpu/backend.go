// Package cpu implements the tensor.Backend kernels in pure Go.
//
// Kernels that touch whole images (convolution, pooling, matmul rows) fan
// out over goroutines with internal/parallel. Every kernel allocates its
// result; inputs are never written.
package cpu

import (
	"fmt"

	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

// Backend implements tensor.Backend on the CPU.
type Backend struct {
	parallel parallel.Config
}

var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend sized for the host.
func New() *Backend {
	return &Backend{parallel: parallel.DefaultConfig()}
}

// NewWithConfig creates a CPU backend with an explicit parallel config.
func NewWithConfig(cfg parallel.Config) *Backend {
	return &Backend{parallel: cfg}
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}

// Add performs element-wise addition.
func (cpu *Backend) Add(a, b *tensor.Tensor) *tensor.Tensor {
	checkSameShape("add", a, b)
	out := tensor.ZerosLike(a)
	od, ad, bd := out.Data(), a.Data(), b.Data()
	for i := range od {
		od[i] = ad[i] + bd[i]
	}
	return out
}

// Sub performs element-wise subtraction.
func (cpu *Backend) Sub(a, b *tensor.Tensor) *tensor.Tensor {
	checkSameShape("sub", a, b)
	out := tensor.ZerosLike(a)
	od, ad, bd := out.Data(), a.Data(), b.Data()
	for i := range od {
		od[i] = ad[i] - bd[i]
	}
	return out
}

// Mul performs element-wise multiplication.
func (cpu *Backend) Mul(a, b *tensor.Tensor) *tensor.Tensor {
	checkSameShape("mul", a, b)
	out := tensor.ZerosLike(a)
	od, ad, bd := out.Data(), a.Data(), b.Data()
	for i := range od {
		od[i] = ad[i] * bd[i]
	}
	return out
}

// MulScalar multiplies every element by s.
func (cpu *Backend) MulScalar(x *tensor.Tensor, s float32) *tensor.Tensor {
	out := tensor.ZerosLike(x)
	od, xd := out.Data(), x.Data()
	for i := range od {
		od[i] = xd[i] * s
	}
	return out
}

// AddBias adds bias[C] to x[N, C, ...].
func (cpu *Backend) AddBias(x, bias *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) < 2 || bias.Rank() != 1 || bias.Dim(0) != shape[1] {
		panic(fmt.Sprintf("add bias: bias %v does not match channels of %v", bias.Shape(), shape))
	}
	n, c, inner := shape[0], shape[1], shape.Inner()

	out := tensor.ZerosLike(x)
	od, xd, bd := out.Data(), x.Data(), bias.Data()
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * inner
			v := bd[ch]
			for i := 0; i < inner; i++ {
				od[base+i] = xd[base+i] + v
			}
		}
	}
	return out
}

// SumBias reduces x[N, C, ...] over every dimension except C.
func (cpu *Backend) SumBias(x *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("sum bias: need at least 2 dims, got %v", shape))
	}
	n, c, inner := shape[0], shape[1], shape.Inner()

	out := tensor.Zeros(tensor.Shape{c})
	od, xd := out.Data(), x.Data()
	for b := 0; b < n; b++ {
		for ch := 0; ch < c; ch++ {
			base := (b*c + ch) * inner
			var s float32
			for i := 0; i < inner; i++ {
				s += xd[base+i]
			}
			od[ch] += s
		}
	}
	return out
}

// Reshape returns a copy of x with a new shape.
func (cpu *Backend) Reshape(x *tensor.Tensor, shape tensor.Shape) *tensor.Tensor {
	return x.Reshape(shape...)
}

func checkSameShape(op string, a, b *tensor.Tensor) {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.Shape(), b.Shape()))
	}
}
