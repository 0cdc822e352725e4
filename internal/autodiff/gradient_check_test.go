package autodiff

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/born-ml/born-gan/internal/backend/cpu"
	"github.com/born-ml/born-gan/internal/parallel"
	"github.com/born-ml/born-gan/internal/tensor"
)

const (
	gradCheckStep = 1e-3
	gradCheckTol  = 2e-2
)

func newTestBackend() *Backend {
	return New(cpu.NewWithConfig(parallel.Sequential()))
}

// awayFromZero nudges values out of the kink of piecewise activations.
func awayFromZero(x *tensor.Tensor) *tensor.Tensor {
	d := x.Data()
	for i, v := range d {
		if v >= 0 {
			d[i] = v + 0.1
		} else {
			d[i] = v - 0.1
		}
	}
	return x
}

func weighted(out, weights *tensor.Tensor) float64 {
	var s float64
	for i, v := range out.Data() {
		s += float64(v) * float64(weights.Data()[i])
	}
	return s
}

// checkGradients compares tape gradients of <R, f()> against central
// finite differences for every element of every input.
func checkGradients(t *testing.T, inputs []*tensor.Tensor, f func(b *Backend) *tensor.Tensor) {
	t.Helper()
	rng := rand.New(rand.NewPCG(42, 42))

	b := newTestBackend()
	b.Tape().StartRecording()
	out := f(b)
	b.Tape().StopRecording()

	weights := tensor.Randn(out.Shape(), rng)
	grads := b.Tape().Backward(out, weights, b.Inner())

	eval := newTestBackend()
	for k, input := range inputs {
		grad, ok := grads[input]
		require.True(t, ok, "input %d received no gradient", k)
		require.True(t, grad.Shape().Equal(input.Shape()), "input %d gradient shape %v", k, grad.Shape())

		data := input.Data()
		for i := range data {
			orig := data[i]
			data[i] = orig + gradCheckStep
			plus := weighted(f(eval), weights)
			data[i] = orig - gradCheckStep
			minus := weighted(f(eval), weights)
			data[i] = orig

			numeric := (plus - minus) / (2 * gradCheckStep)
			analytic := float64(grad.Data()[i])
			tol := gradCheckTol * math.Max(1, math.Abs(numeric))
			require.InDelta(t, numeric, analytic, tol, "input %d element %d", k, i)
		}
	}
}

func TestGradMatMul(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 0))
	a := tensor.Randn(tensor.Shape{3, 4}, rng)
	w := tensor.Randn(tensor.Shape{4, 2}, rng)
	wt := tensor.Randn(tensor.Shape{5, 4}, rng)

	checkGradients(t, []*tensor.Tensor{a, w}, func(b *Backend) *tensor.Tensor {
		return b.MatMul(a, w)
	})
	checkGradients(t, []*tensor.Tensor{a, wt}, func(b *Backend) *tensor.Tensor {
		return b.MatMulTransposeB(a, wt)
	})
}

func TestGradArithmetic(t *testing.T) {
	rng := rand.New(rand.NewPCG(2, 0))
	x := tensor.Randn(tensor.Shape{2, 3, 2}, rng)
	y := tensor.Randn(tensor.Shape{2, 3, 2}, rng)
	bias := tensor.Randn(tensor.Shape{3}, rng)

	checkGradients(t, []*tensor.Tensor{x, y, bias}, func(b *Backend) *tensor.Tensor {
		s := b.Sub(b.Mul(x, y), b.MulScalar(y, 0.5))
		return b.Reshape(b.AddBias(b.Add(s, x), bias), tensor.Shape{6, 2})
	})
}

func TestGradActivations(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 0))
	x := awayFromZero(tensor.Randn(tensor.Shape{4, 3}, rng))

	checkGradients(t, []*tensor.Tensor{x}, func(b *Backend) *tensor.Tensor {
		return b.LeakyReLU(x, 0.2)
	})
	checkGradients(t, []*tensor.Tensor{x}, func(b *Backend) *tensor.Tensor {
		return b.Tanh(x)
	})
	checkGradients(t, []*tensor.Tensor{x}, func(b *Backend) *tensor.Tensor {
		return b.Sigmoid(x)
	})
}

func TestGradConv2D(t *testing.T) {
	rng := rand.New(rand.NewPCG(4, 0))
	x := tensor.Randn(tensor.Shape{2, 2, 4, 4}, rng)
	k := tensor.Randn(tensor.Shape{3, 2, 3, 3}, rng)

	checkGradients(t, []*tensor.Tensor{x, k}, func(b *Backend) *tensor.Tensor {
		return b.Conv2D(x, k, 1)
	})
}

func TestGradPoolingAndUpsampling(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 0))
	x := tensor.Randn(tensor.Shape{1, 2, 4, 4}, rng)

	checkGradients(t, []*tensor.Tensor{x}, func(b *Backend) *tensor.Tensor {
		return b.Upsample2D(b.AvgPool2D(x, 2), 2)
	})
}

func TestGradBatchNorm(t *testing.T) {
	rng := rand.New(rand.NewPCG(6, 0))
	x := tensor.Randn(tensor.Shape{3, 2, 2, 2}, rng)
	gamma := tensor.Uniform(tensor.Shape{2}, 0.5, 1.5, rng)
	beta := tensor.Randn(tensor.Shape{2}, rng)

	checkGradients(t, []*tensor.Tensor{x, gamma, beta}, func(b *Backend) *tensor.Tensor {
		out, _, _ := b.BatchNorm(x, gamma, beta, nil, nil, 1e-5, true)
		return out
	})

	mean := []float32{0.1, -0.2}
	variance := []float32{0.8, 1.3}
	checkGradients(t, []*tensor.Tensor{x, gamma, beta}, func(b *Backend) *tensor.Tensor {
		out, _, _ := b.BatchNorm(x, gamma, beta, mean, variance, 1e-5, false)
		return out
	})
}

func TestGradNoise(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 0))
	x := tensor.Randn(tensor.Shape{2, 3, 2, 2}, rng)
	noise := tensor.Randn(tensor.Shape{2, 1, 2, 2}, rng)
	strength := tensor.Randn(tensor.Shape{3}, rng)

	checkGradients(t, []*tensor.Tensor{x, strength}, func(b *Backend) *tensor.Tensor {
		return b.AddNoise(x, noise, strength)
	})
}

func TestGradBinaryCrossEntropy(t *testing.T) {
	rng := rand.New(rand.NewPCG(8, 0))
	p := tensor.Uniform(tensor.Shape{6, 1}, 0.1, 0.9, rng)
	y, err := tensor.FromSlice([]float32{1, 0, 1, 0, 0, 1}, tensor.Shape{6, 1})
	require.NoError(t, err)

	checkGradients(t, []*tensor.Tensor{p}, func(b *Backend) *tensor.Tensor {
		return b.BinaryCrossEntropy(p, y)
	})
}
